package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameString(t *testing.T) {
	assert.Equal(t, "Jane Doe", Name{First: "Jane", Last: "Doe"}.String())
	assert.Equal(t, "Cher", Name{First: "Cher"}.String())
	assert.Equal(t, "", Name{}.String())
}

func TestNameEqual(t *testing.T) {
	jane := Name{First: "Jane", Last: "Doe"}
	assert.True(t, jane.Equal(Name{First: "Jane", Last: "Doe"}))
	assert.False(t, jane.Equal(Name{First: "Janet", Last: "Doe"}))
	assert.False(t, jane.Equal(Name{First: "Jane"}))
}

func TestNameIsZero(t *testing.T) {
	assert.True(t, Name{}.IsZero())
	assert.False(t, Name{First: "Jane"}.IsZero())
	assert.False(t, Name{Last: "Doe"}.IsZero())
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		full string
		want Name
	}{
		{"Jane Doe", Name{First: "Jane", Last: "Doe"}},
		{"Jane A Doe", Name{First: "Jane", Last: "A Doe"}},
		{"Cher", Name{First: "Cher"}},
		{"  Jane Doe  ", Name{First: "Jane", Last: "Doe"}},
		{"", Name{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitFullName(tt.full), "input %q", tt.full)
	}
}

func TestContactRecordHelpers(t *testing.T) {
	c := &ContactRecord{
		ID:              7,
		PrimaryEmail:    "jane@tophatmonocle.com",
		SecondaryEmails: []string{"personal@gmail.com"},
		FirstName:       "Jane",
		LastName:        "Doe",
	}

	assert.Equal(t, Name{First: "Jane", Last: "Doe"}, c.Name())
	assert.Equal(t, "Jane Doe", c.FullName())
	assert.True(t, c.HasSecondaryEmail("personal@gmail.com"))
	assert.False(t, c.HasSecondaryEmail("jane@tophatmonocle.com"))
}
