package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

const ReporterTypeJSON = "json"

type Config struct {
	// Output defaults to stdout.
	Output io.Writer
}

type Reporter struct {
	writer io.Writer
	logger ports.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{writer: w, logger: logger}, nil
}

type jsonReport struct {
	Mode           domain.Mode      `json:"mode"`
	DatasetVersion string           `json:"dataset_version"`
	LabelA         string           `json:"label_a"`
	LabelB         string           `json:"label_b"`
	Passed         bool             `json:"passed"`
	Summary        domain.Summary   `json:"summary"`
	Results        []jsonResultItem `json:"results"`
}

// jsonResultItem adds the captured error text, which EndpointResult keeps
// as an error value.
type jsonResultItem struct {
	domain.EndpointResult
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (r *Reporter) Report(ctx context.Context, report domain.RunReport) error {
	out := jsonReport{
		Mode:           report.Mode,
		DatasetVersion: report.DatasetVersion,
		LabelA:         report.LabelA,
		LabelB:         report.LabelB,
		Passed:         report.Passed(),
		Summary:        report.Summary,
		Results:        make([]jsonResultItem, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}
		item := jsonResultItem{EndpointResult: res, ErrorMessage: res.ErrorMessage()}
		if res.Err != nil {
			item.ErrorCode = errors.GetCode(res.Err).String()
		}
		out.Results = append(out.Results, item)
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		fmt.Fprintf(r.writer, "{\"error\": \"failed to generate JSON report: %v\"}\n", err)
		return errors.Wrap(err, errors.CodeReportError, "failed to encode JSON report")
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}
