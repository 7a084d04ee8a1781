package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber_Canonicalizes(t *testing.T) {
	assert.True(t, Number("1").Equal(Number("1.0")))
	assert.True(t, Number("1e0").Equal(Int(1)))
	assert.True(t, Float(2.5).Equal(Number("2.50")))
	assert.False(t, Number("1").Equal(String("1")))
	assert.Equal(t, "9007199254740993", Number("9007199254740993").Num)
}

func TestValue_EqualDeep(t *testing.T) {
	a := Object(map[string]Value{"k": Array(Int(1), Null())})
	b := Object(map[string]Value{"k": Array(Number("1.0"), Null())})
	assert.True(t, a.Equal(b))
	assert.False(t, Null().Equal(Absent()))
	assert.True(t, Array().Equal(Array([]Value{}...)))
}

func TestValue_String(t *testing.T) {
	v := Object(map[string]Value{"b": Bool(true), "a": Array(String("x"), Int(2))})
	assert.Equal(t, `{"a":["x",2],"b":true}`, v.String())
	assert.Equal(t, "undefined", Absent().String())
	assert.Equal(t, "null", Null().String())
}

func TestValue_KeysAndField(t *testing.T) {
	v := Object(map[string]Value{"z": Int(1), "a": Int(2)})
	assert.Equal(t, []string{"a", "z"}, v.Keys())
	assert.Equal(t, Int(2), v.Field("a"))
	assert.Equal(t, KindAbsent, v.Field("missing").Kind)
	assert.Nil(t, String("x").Keys())
}

func TestRow_KeysAndTitles(t *testing.T) {
	r := NewRow("users", SideA, map[string]any{
		"sourcedId": "0123456789abcdef",
		"username":  "",
		"name":      "Ada",
		"n":         42,
	})
	assert.Equal(t, "01234567", r.ShortKey(KeyRowKey))
	assert.Equal(t, "Ada", r.Title(DefaultTitleFields))
	assert.Equal(t, "42", r.Key("n"))
	assert.Equal(t, "", r.Key("missing"))
	assert.Equal(t, "N/A", r.ShortKey("missing"))
	assert.Equal(t, []string{"n", "name", "sourcedId", "username"}, r.Columns())
}

func TestRunReport_ExitCode(t *testing.T) {
	ok := RunReport{Results: []EndpointResult{{Identical: true}, {Identical: true}}}
	assert.Equal(t, 0, ok.ExitCode())
	assert.True(t, ok.Passed())

	bad := RunReport{Results: []EndpointResult{{Identical: true}, {Identical: false}}}
	assert.Equal(t, 1, bad.ExitCode())
}
