package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Gregory House", true},
		{"lisa", true},
		{"MIXED case Name", true},
		{"", false},
		{"R2D2", false},
		{"O'Brien", false},
		{"Anne-Marie", false},
		{"José", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(tt.in), "Name(%q)", tt.in)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"2023-02-28", true},
		{"2024-04-30", true},
		// February is fixed at 28 days, leap year or not.
		{"2024-02-29", false},
		{"2024-02-30", false},
		{"2024-13-01", false},
		{"2024-00-10", false},
		{"2024-04-31", false},
		{"2024-01-00", false},
		{"2024/01/01", false},
		{"24-01-01", false},
		{"2024-1-01", false},
		{"20a4-01-01", false},
		{"2024-01-01 ", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Date(tt.in), "Date(%q)", tt.in)
	}
}

func TestTimeslot(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"8:00-9:00", true},
		{"8:00-10:00", true},
		{"10:00-5:00", true},
		{"09:00-10:00", true},
		{"17:30-18:30", true},
		{"8:00_9:00", false},
		{"8-00:9:00", false},
		{"08:00-9:0", false},
		{"0900-1000", false},
		{"09:00-10:000", false},
		{"09:00 10:00", false},
		{"ab:cd-ef:gh", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Timeslot(tt.in), "Timeslot(%q)", tt.in)
	}
}

func TestStatus(t *testing.T) {
	for _, s := range []string{"PA", "AC", "AV", "WL"} {
		assert.True(t, Status(s), s)
	}
	for _, s := range []string{"pa", "Ac", "XX", "", "AVL"} {
		assert.False(t, Status(s), s)
	}
}

func TestGenderAndAge(t *testing.T) {
	g, ok := Gender("f")
	assert.True(t, ok)
	assert.Equal(t, "F", g)

	g, ok = Gender(" M ")
	assert.True(t, ok)
	assert.Equal(t, "M", g)

	_, ok = Gender("x")
	assert.False(t, ok)

	assert.True(t, Age(0))
	assert.True(t, Age(150))
	assert.False(t, Age(-1))
	assert.False(t, Age(151))
}
