package domain

// ColumnDifference is informational: it never fails an endpoint by itself.
type ColumnDifference struct {
	MissingInB []string `json:"missing_in_b"`
	ExtraInB   []string `json:"extra_in_b"`
}

func (c ColumnDifference) Empty() bool {
	return len(c.MissingInB) == 0 && len(c.ExtraInB) == 0
}

// Difference is one path-addressed structural difference.
type Difference struct {
	Path string   `json:"path"`
	Kind DiffKind `json:"kind"`
	A    Value    `json:"a"`
	B    Value    `json:"b"`
}

// FieldDifference is one differing column of an aligned row pair. Details
// holds the structural explanation for structured values.
type FieldDifference struct {
	Field   string       `json:"field"`
	Kind    DiffKind     `json:"kind"`
	A       Value        `json:"a"`
	B       Value        `json:"b"`
	Details []Difference `json:"details,omitempty"`
}

// RowDifference describes one aligned row pair that did not match.
type RowDifference struct {
	Index  int               `json:"index"`
	KeyA   string            `json:"key_a"`
	KeyB   string            `json:"key_b"`
	TitleA string            `json:"title_a"`
	TitleB string            `json:"title_b"`
	Fields []FieldDifference `json:"fields"`
	RowA   Row               `json:"row_a"`
	RowB   Row               `json:"row_b"`
}

// ItemDifference is an element-level explanation for one envelope item.
type ItemDifference struct {
	Index       int          `json:"index"`
	Differences []Difference `json:"differences"`
}

// EnvelopeDetail carries the envelope-specific part of a result.
type EnvelopeDetail struct {
	Property       string           `json:"property"`
	Differences    []Difference     `json:"differences,omitempty"`
	ItemDiffs      []ItemDifference `json:"item_diffs,omitempty"`
	DifferentItems int              `json:"different_items"`
	FirstFailed    *FailedItem      `json:"first_failed,omitempty"`
}

// FailedItem holds the full redacted payloads of the first differing item.
type FailedItem struct {
	Index int   `json:"index"`
	A     Value `json:"a"`
	B     Value `json:"b"`
}

// EndpointResult is the outcome for one endpoint in one run. It is built once
// and not modified afterwards.
type EndpointResult struct {
	Endpoint             string            `json:"endpoint"`
	Mode                 Mode              `json:"mode"`
	Status               ResultStatus      `json:"status"`
	Identical            bool              `json:"identical"`
	RowsCompared         int               `json:"rows_compared"`
	CountA               int               `json:"count_a"`
	CountB               int               `json:"count_b"`
	DifferenceCount      int               `json:"difference_count"`
	FieldDifferenceCount int               `json:"field_difference_count"`
	KindCounts           map[DiffKind]int  `json:"kind_counts,omitempty"`
	BooleanFormatDiffs   int               `json:"boolean_format_diffs"`
	SampleDifferences    []RowDifference   `json:"sample_differences,omitempty"`
	ColumnDifferences    *ColumnDifference `json:"column_differences,omitempty"`
	Envelope             *EnvelopeDetail   `json:"envelope,omitempty"`
	Err                  error             `json:"-"`
}

// ErrorMessage is the captured failure message, or "".
func (r EndpointResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func (r EndpointResult) HasColumnDifferences() bool {
	return r.ColumnDifferences != nil && !r.ColumnDifferences.Empty()
}

// Summary holds the run-level totals.
type Summary struct {
	Total              int              `json:"total"`
	Identical          int              `json:"identical"`
	Different          int              `json:"different"`
	Errors             int              `json:"errors"`
	KindCounts         map[DiffKind]int `json:"kind_counts"`
	BooleanFormatDiffs int              `json:"boolean_format_diffs"`
	ColumnDiffEndpoint []string         `json:"column_diff_endpoints"`
}

// RunReport is the finalized result of one run.
type RunReport struct {
	Mode           Mode             `json:"mode"`
	DatasetVersion string           `json:"dataset_version"`
	LabelA         string           `json:"label_a"`
	LabelB         string           `json:"label_b"`
	Results        []EndpointResult `json:"results"`
	Summary        Summary          `json:"summary"`
}

// ExitCode is 0 only when every endpoint is identical.
func (r RunReport) ExitCode() int {
	for _, res := range r.Results {
		if !res.Identical {
			return 1
		}
	}
	return 0
}

// Passed mirrors ExitCode as a bool.
func (r RunReport) Passed() bool {
	return r.ExitCode() == 0
}
