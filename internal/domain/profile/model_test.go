package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileUserKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{name: "apostrophe and inner space", first: "Jo Ann", last: "O'Brien", want: "jo_ann_o'brien"},
		{name: "mixed case", first: "ALEX", last: "McDonald", want: "alex_mcdonald"},
		{name: "multiple spaces collapse", first: "Jo   Ann", last: "Van  Der\tBerg", want: "jo_ann_van_der_berg"},
		{name: "simple", first: "Sam", last: "Lee", want: "sam_lee"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Profile{FirstName: tc.first, LastName: tc.last}.UserKey()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	pos, ok := ParsePosition("")
	assert.True(t, ok)
	assert.Equal(t, PositionSkater, pos)

	pos, ok = ParsePosition(" GOALIE ")
	assert.True(t, ok)
	assert.Equal(t, PositionGoalie, pos)

	_, ok = ParsePosition("defence")
	assert.False(t, ok)
}

func TestProfileNormalize(t *testing.T) {
	t.Parallel()

	p := Profile{FirstName: "  Sam ", LastName: " Lee", Position: ""}.Normalize()
	assert.Equal(t, Profile{FirstName: "Sam", LastName: "Lee", Position: PositionSkater}, p)
	assert.True(t, p.Complete())
	assert.Equal(t, "Sam Lee", p.DisplayName())

	assert.False(t, Profile{FirstName: "Sam", LastName: "   "}.Complete())
}
