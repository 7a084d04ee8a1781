// Package file saves raw envelopes into a local directory.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

const DefaultDir = "results"

type Sink struct {
	dir    string
	logger ports.Logger
}

var _ ports.ArtifactSink = (*Sink)(nil)

func New(dir string, logger ports.Logger) *Sink {
	if dir == "" {
		dir = DefaultDir
	}
	return &Sink{dir: dir, logger: logger.WithFields(map[string]any{"component": "artifacts"})}
}

func (s *Sink) Dir() string {
	return s.dir
}

// Save writes payload to <dir>/<name>, indented when it is valid JSON.
func (s *Sink) Save(ctx context.Context, name string, payload []byte) error {
	if filepath.Base(name) != name {
		return errors.New(errors.CodeArtifactWriteError, fmt.Sprintf("artifact name %q must not contain a path", name))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeArtifactWriteError, fmt.Sprintf("failed to create artifact directory %s", s.dir))
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, Indent(payload), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeArtifactWriteError, fmt.Sprintf("failed to write artifact %s", path))
	}
	s.logger.Debugf(ctx, "Saved artifact %s", path)
	return nil
}

// Indent pretty-prints a JSON payload with two-space indentation and returns
// anything else unchanged. Tokens are copied verbatim, so numbers and key
// order survive exactly as the backend sent them.
func Indent(payload []byte) []byte {
	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return payload
	}
	return out.Bytes()
}
