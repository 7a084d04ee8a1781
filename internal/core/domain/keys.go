package domain

const (
	// Conventional OneRoster field names
	KeyRowKey           = "sourcedId"
	KeyDateLastModified = "dateLastModified"
	KeyHref             = "href"
	KeyType             = "type"
	KeyStatus           = "status"

	// Fields used to build a human readable row title, in order of preference
	KeyUsername = "username"
	KeyTitle    = "title"
	KeyName     = "name"
)

// DefaultExcludedColumns are expected to diverge between backends and carry no
// parity signal: refresh timestamps and backend-only sort/natural keys.
var DefaultExcludedColumns = []string{
	KeyRowKey,
	KeyDateLastModified,
	"sort_role_priority",
	"sort_unique_id",
	"naturalKey_localEducationAgencyId",
	"naturalKey_localEducationAgency",
	"naturalKey_courseCode",
}

// DefaultTitleFields lists the columns consulted for a row's display title.
var DefaultTitleFields = []string{KeyUsername, KeyTitle, KeyName}
