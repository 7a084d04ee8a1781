package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	s := New(dir, log.Discard())

	require.NoError(t, s.Save(context.Background(), "ds5-postgres-orgs.json", []byte(`{"orgs":[{"sourcedId":"a"}]}`)))

	data, err := os.ReadFile(filepath.Join(dir, "ds5-postgres-orgs.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"orgs\": [\n    {\n      \"sourcedId\": \"a\"\n    }\n  ]\n}", string(data))
}

func TestSink_SaveNonJSON(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, log.Discard())

	require.NoError(t, s.Save(context.Background(), "raw.json", []byte("not json")))
	data, err := os.ReadFile(filepath.Join(dir, "raw.json"))
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}

func TestSink_RejectsPaths(t *testing.T) {
	s := New(t.TempDir(), log.Discard())

	err := s.Save(context.Background(), "../escape.json", []byte("{}"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeArtifactWriteError, errors.GetCode(err))
}

func TestSink_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(filepath.Join(blocker, "sub"), log.Discard())
	err := s.Save(context.Background(), "a.json", []byte("{}"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeArtifactWriteError, errors.GetCode(err))
}

func TestNew_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultDir, New("", log.Discard()).Dir())
}

func TestIndent_KeepsTokensVerbatim(t *testing.T) {
	raw := []byte(`{"orgs":[{"identifier":9007199254740993,"score":1.10,"name":"Zoë"}],"b":1,"a":2}`)

	want := "{\n" +
		"  \"orgs\": [\n" +
		"    {\n" +
		"      \"identifier\": 9007199254740993,\n" +
		"      \"score\": 1.10,\n" +
		"      \"name\": \"Zoë\"\n" +
		"    }\n" +
		"  ],\n" +
		"  \"b\": 1,\n" +
		"  \"a\": 2\n" +
		"}"
	assert.Equal(t, want, string(Indent(raw)))
}
