package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// StandardUnknown is reported when a backend's Ed-Fi data standard cannot be
// detected.
const StandardUnknown = "Unknown"

var standardVersion = regexp.MustCompile(`Standard\.(\d+\.\d+\.\d+)\.`)

// StandardFromScript derives the Ed-Fi data standard from a deployment script
// name such as "EdFi.Ods.Standard.Standard.5.2.0.Scripts...". It returns ""
// when the name carries no standard marker.
func StandardFromScript(script string) string {
	if m := standardVersion.FindStringSubmatch(script); m != nil {
		return "Data Standard " + m[1]
	}
	switch {
	case strings.Contains(script, "Standard.4."):
		return "Data Standard 4.x"
	case strings.Contains(script, "Standard.5."):
		return "Data Standard 5.x"
	}
	return ""
}

// StandardFromTables infers the standard from the guardian table: data
// standard 5 renamed edfi.parent to edfi.contact.
func StandardFromTables(hasContact, hasParent bool) string {
	switch {
	case hasContact:
		return "Data Standard 5.x"
	case hasParent:
		return "Data Standard 4.x"
	}
	return StandardUnknown
}

// DatasetMajor maps a dataset version selector ("ds4", "ds5") to the data
// standard major version it expects.
func DatasetMajor(datasetVersion string) string {
	return strings.TrimPrefix(strings.ToLower(datasetVersion), "ds")
}

// StandardMatches reports whether a detected standard is compatible with the
// dataset version. Unknown standards always match.
func StandardMatches(standard, datasetVersion string) bool {
	if standard == "" || standard == StandardUnknown {
		return true
	}
	return strings.Contains(standard, fmt.Sprintf("Standard %s", DatasetMajor(datasetVersion)))
}
