package domain

// Side identifies one of the two backends under comparison. Side A is the
// authoritative backend: its column set drives which fields are compared.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) String() string {
	return string(s)
}

// Mode selects which surface of the backends is compared.
type Mode string

const (
	ModeTables    Mode = "tables"
	ModeEnvelopes Mode = "envelopes"
)

func (m Mode) String() string {
	return string(m)
}

// DiffKind classifies a single difference.
type DiffKind string

const (
	// Structural kinds produced by DiffValues
	DiffValue      DiffKind = "value"
	DiffType       DiffKind = "type"
	DiffLength     DiffKind = "length"
	DiffMissingInA DiffKind = "missing_in_A"
	DiffMissingInB DiffKind = "missing_in_B"

	// Field kinds produced by DiffRows
	DiffBooleanFormat  DiffKind = "boolean_format"
	DiffJSONParseError DiffKind = "json_parse_error"
	DiffArrayParseErr  DiffKind = "array_parse_error"
	DiffJSONContent    DiffKind = "json_content"
	DiffArrayContent   DiffKind = "array_content"
)

func (k DiffKind) String() string {
	return string(k)
}

// ResultStatus is the outcome of comparing one endpoint.
type ResultStatus string

const (
	StatusSuccess               ResultStatus = "success"
	StatusDifferent             ResultStatus = "different"
	StatusEmpty                 ResultStatus = "empty"
	StatusCountMismatch         ResultStatus = "count_mismatch"
	StatusColumnDetectionFailed ResultStatus = "column_detection_failed"
	StatusStructureMismatch     ResultStatus = "structure_mismatch"
	StatusError                 ResultStatus = "error"
)

func (s ResultStatus) String() string {
	return string(s)
}

// AlignStatus is the outcome of aligning two row sequences.
type AlignStatus string

const (
	AlignOK            AlignStatus = "aligned"
	AlignEmpty         AlignStatus = "empty"
	AlignCountMismatch AlignStatus = "count_mismatch"
)
