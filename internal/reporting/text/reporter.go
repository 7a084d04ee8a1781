package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/core/service"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
)

const ReporterTypeText = "text"

const maxValueLen = 100

type Config struct {
	NoColor bool `mapstructure:"no_color"`
	// GroupLimit caps how many differences of one kind are listed.
	GroupLimit int       `mapstructure:"group_limit"`
	Output     io.Writer `mapstructure:"-"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger

	red, yellow, green, cyan, magenta func(a ...any) string
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	w := cfg.Output
	if w == nil {
		w = os.Stdout
		if !isTerminal(os.Stdout) {
			color.NoColor = true
		}
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	if cfg.GroupLimit <= 0 {
		cfg.GroupLimit = service.DefaultGroupLimit
	}

	return &Reporter{
		config:  cfg,
		writer:  w,
		logger:  logger,
		red:     color.New(color.FgRed).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		green:   color.New(color.FgGreen).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		magenta: color.New(color.FgMagenta).SprintFunc(),
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, report domain.RunReport) error {
	fmt.Fprintf(r.writer, "OneRoster Parity Report (%s, %s): %s (A) vs %s (B)\n",
		report.Mode, report.DatasetVersion, report.LabelA, report.LabelB)
	fmt.Fprintln(r.writer, strings.Repeat("=", 60))

	if len(report.Results) == 0 {
		fmt.Fprintln(r.writer, "No endpoints compared.")
		return nil
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Status\tEndpoint\tRows (A/B)\tDetails")
	fmt.Fprintln(tw, "------\t--------\t----------\t-------")
	for _, res := range report.Results {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		status, details := r.describe(res)
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", status, res.Endpoint, res.CountA, res.CountB, details)
	}
	if err := tw.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeReportError, "failed to write report table")
	}

	for _, res := range report.Results {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case len(res.SampleDifferences) > 0:
			r.writeRowDifferences(res, report)
		case res.Envelope != nil && len(res.Envelope.Differences) > 0:
			r.writeEnvelopeDifferences(res, report)
		}
	}

	r.writeColumnStructure(report)
	r.writeSummary(report)
	return nil
}

func (r *Reporter) describe(res domain.EndpointResult) (string, string) {
	switch res.Status {
	case domain.StatusSuccess:
		if res.Mode == domain.ModeEnvelopes {
			return r.green("[OK]"), fmt.Sprintf("%d items identical", res.RowsCompared)
		}
		return r.green("[OK]"), fmt.Sprintf("all %d rows identical", res.RowsCompared)
	case domain.StatusEmpty:
		if res.Identical {
			return r.green("[EMPTY]"), "both backends returned no rows"
		}
		return r.yellow("[EMPTY]"), "no rows, but column structure differs"
	case domain.StatusDifferent:
		if res.Envelope != nil {
			return r.red("[DIFF]"), fmt.Sprintf("%d differences, %d items differ", res.DifferenceCount, res.Envelope.DifferentItems)
		}
		return r.red("[DIFF]"), fmt.Sprintf("%d of %d rows differ (%d fields)", res.DifferenceCount, res.RowsCompared, res.FieldDifferenceCount)
	case domain.StatusCountMismatch:
		return r.red("[COUNT]"), fmt.Sprintf("row count mismatch: %d vs %d", res.CountA, res.CountB)
	case domain.StatusStructureMismatch:
		property := ""
		if res.Envelope != nil {
			property = res.Envelope.Property
		}
		return r.red("[STRUCTURE]"), fmt.Sprintf("response property %q missing", property)
	case domain.StatusColumnDetectionFailed:
		return r.magenta("[ERROR]"), "could not determine columns: " + errorText(res.Err)
	case domain.StatusError:
		return r.magenta("[ERROR]"), "comparison failed: " + errorText(res.Err)
	}
	return "[UNKNOWN]", "unknown comparison status"
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	text := err.Error()
	if msg, suggestion, ok := apperrors.GetUserFacingMessage(err); ok {
		text = msg
		if suggestion != "" {
			text += " (" + suggestion + ")"
		}
	}
	return text
}

func (r *Reporter) writeRowDifferences(res domain.EndpointResult, report domain.RunReport) {
	fmt.Fprintf(r.writer, "\n%s %s (%d rows differ, showing first %d):\n",
		r.cyan("Differences in"), res.Endpoint, res.DifferenceCount, len(res.SampleDifferences))

	for _, row := range res.SampleDifferences {
		fmt.Fprintf(r.writer, "  Row %d: %s [%s] %s vs %s [%s] %s\n",
			row.Index+1, report.LabelA, row.KeyA, row.TitleA, report.LabelB, row.KeyB, row.TitleB)
		for _, f := range row.Fields {
			fmt.Fprintf(r.writer, "    %s %s: %s=%s %s=%s\n",
				f.Field, r.yellow("["+f.Kind.String()+"]"),
				report.LabelA, formatValue(f.A), report.LabelB, formatValue(f.B))
			r.writeGroups(f.Details, "      ")
		}
		if row.RowA.Len() > 0 || row.RowB.Len() > 0 {
			fmt.Fprintln(r.writer, "    Complete row data:")
			fmt.Fprintf(r.writer, "      %s: %s\n", report.LabelA, formatRow(row.RowA))
			fmt.Fprintf(r.writer, "      %s: %s\n", report.LabelB, formatRow(row.RowB))
		}
	}
}

func (r *Reporter) writeEnvelopeDifferences(res domain.EndpointResult, report domain.RunReport) {
	env := res.Envelope
	fmt.Fprintf(r.writer, "\n%s %s (%d differences):\n", r.cyan("Differences in"), res.Endpoint, len(env.Differences))
	r.writeGroups(env.Differences, "  ")

	for _, item := range env.ItemDiffs {
		fmt.Fprintf(r.writer, "  Item %d: %d differences\n", item.Index, len(item.Differences))
		r.writeGroups(item.Differences, "    ")
	}
	if env.FirstFailed != nil {
		fmt.Fprintf(r.writer, "  First differing item (#%d):\n    %s: %s\n    %s: %s\n",
			env.FirstFailed.Index,
			report.LabelA, formatValue(env.FirstFailed.A),
			report.LabelB, formatValue(env.FirstFailed.B))
	}
}

// writeGroups lists differences by kind. Counts always cover every
// difference, even those not printed.
func (r *Reporter) writeGroups(diffs []domain.Difference, indent string) {
	for _, g := range service.GroupDifferences(diffs, r.config.GroupLimit) {
		fmt.Fprintf(r.writer, "%s%s (%d):\n", indent, r.yellow(g.Kind.String()), g.Total)
		for _, d := range g.Shown {
			fmt.Fprintf(r.writer, "%s  %s: A=%s B=%s\n", indent, d.Path, formatValue(d.A), formatValue(d.B))
		}
		if hidden := g.Hidden(); hidden > 0 {
			fmt.Fprintf(r.writer, "%s  ... and %d more\n", indent, hidden)
		}
	}
}

func (r *Reporter) writeColumnStructure(report domain.RunReport) {
	if len(report.Summary.ColumnDiffEndpoint) == 0 {
		return
	}
	fmt.Fprintf(r.writer, "\n%s\n", r.cyan("Column structure differences:"))
	for _, res := range report.Results {
		if !res.HasColumnDifferences() {
			continue
		}
		fmt.Fprintf(r.writer, "  %s:\n", res.Endpoint)
		if len(res.ColumnDifferences.MissingInB) > 0 {
			fmt.Fprintf(r.writer, "    missing in %s: %s\n", report.LabelB, strings.Join(res.ColumnDifferences.MissingInB, ", "))
		}
		if len(res.ColumnDifferences.ExtraInB) > 0 {
			fmt.Fprintf(r.writer, "    extra in %s: %s\n", report.LabelB, strings.Join(res.ColumnDifferences.ExtraInB, ", "))
		}
	}
}

func (r *Reporter) writeSummary(report domain.RunReport) {
	s := report.Summary

	if s.BooleanFormatDiffs > 0 {
		fmt.Fprintf(r.writer, "\n%s %d boolean fields are encoded differently between backends. OneRoster requires string \"true\"/\"false\".\n",
			r.yellow("WARNING:"), s.BooleanFormatDiffs)
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintf(tw, "Total Endpoints:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Identical:\t%s\n", r.green(s.Identical))
	fmt.Fprintf(tw, "Different:\t%s\n", r.red(s.Different))
	fmt.Fprintf(tw, "Errors:\t%s\n", r.magenta(s.Errors))
	for _, kind := range service.SortedKinds(s.KindCounts) {
		fmt.Fprintf(tw, "  %s:\t%d\n", kind, s.KindCounts[kind])
	}

	if report.Passed() {
		fmt.Fprintf(tw, "Result:\t%s\n", r.green("PASS - all endpoints identical"))
	} else {
		fmt.Fprintf(tw, "Result:\t%s\n", r.red("FAIL - parity differences found"))
	}
}

// formatValue renders v compactly, cut to maxValueLen runes.
func formatValue(v domain.Value) string {
	str := v.String()
	runes := []rune(str)
	if len(runes) > maxValueLen {
		return string(runes[:maxValueLen-3]) + "..."
	}
	return str
}

// formatRow renders the whole row without truncation.
func formatRow(row domain.Row) string {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(row)
	if err != nil {
		return "<unrenderable>"
	}
	return string(b)
}
