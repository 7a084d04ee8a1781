package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeTimeout          Code = "TIMEOUT_ERROR"

	// Backend access
	CodeConnectionError Code = "CONNECTION_ERROR"
	CodeBackendError    Code = "BACKEND_ERROR"
	CodeBackendAuth     Code = "BACKEND_AUTH_ERROR"

	// Per-endpoint comparison outcomes
	CodeColumnDetectionFailed Code = "COLUMN_DETECTION_FAILED"
	CodeCountMismatch         Code = "COUNT_MISMATCH"
	CodeParseError            Code = "PARSE_ERROR"
	CodeStructureMismatch     Code = "STRUCTURE_MISMATCH"

	CodeArtifactWriteError Code = "ARTIFACT_WRITE_ERROR"
	CodeReportError        Code = "REPORT_ERROR"
)

func (c Code) String() string {
	return string(c)
}
