package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardFromScript(t *testing.T) {
	assert.Equal(t, "Data Standard 5.2.0", StandardFromScript("EdFi.Ods.Standard.Standard.5.2.0.Structure.0010-Tables.sql"))
	assert.Equal(t, "Data Standard 4.x", StandardFromScript("EdFi.Standard.4.beta"))
	assert.Equal(t, "", StandardFromScript("0001-Schemas.sql"))
}

func TestStandardFromTables(t *testing.T) {
	assert.Equal(t, "Data Standard 5.x", StandardFromTables(true, true))
	assert.Equal(t, "Data Standard 4.x", StandardFromTables(false, true))
	assert.Equal(t, StandardUnknown, StandardFromTables(false, false))
}

func TestStandardMatches(t *testing.T) {
	assert.True(t, StandardMatches("Data Standard 5.2.0", "ds5"))
	assert.False(t, StandardMatches("Data Standard 4.0.0", "ds5"))
	assert.True(t, StandardMatches(StandardUnknown, "ds4"))
	assert.True(t, StandardMatches("", "ds4"))
}
