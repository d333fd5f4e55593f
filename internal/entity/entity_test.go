package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":           "hello-world",
		"  Żółta łódź 2024 ":    "zołta-łodz-2024",
		"Crème brûlée!!":        "creme-brulee",
		"---":                   "",
		"already-a-slug":        "already-a-slug",
		"Untitled (after Judd)": "untitled-after-judd",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestBaseGeneralSectionID(t *testing.T) {
	w := NewWork(GeneralSection{Title: "Draft"})
	_, ok := w.GeneralSectionID()
	assert.False(t, ok)

	w.GeneralID = IntPtr(42)
	id, ok := w.GeneralSectionID()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, "Draft", w.GeneralSection().Title)
}

func TestParseKinds(t *testing.T) {
	k, err := ParseContentKind("works")
	assert.NoError(t, err)
	assert.Equal(t, KindWorks, k)

	_, err = ParseContentKind("products")
	assert.Error(t, err)

	mk, err := ParseMediaKind("THREE_D")
	assert.NoError(t, err)
	assert.Equal(t, MediaThreeD, mk)

	_, err = ParseMediaKind("AUDIO")
	assert.Error(t, err)
}

func TestValidateContent(t *testing.T) {
	assert.Error(t, ValidateContent(NewWork(GeneralSection{})))
	assert.NoError(t, ValidateContent(NewWork(GeneralSection{Title: "Ok"})))

	w := NewWork(GeneralSection{Title: "Ok"})
	w.Images = []Media{{Kind: "AUDIO"}}
	assert.Error(t, ValidateContent(w))
}

func TestGeneralSectionIdShapes(t *testing.T) {
	cases := map[string]int{
		`{"id":50,"title":"Solo show"}`:            50,
		`{"id":"50","title":"Solo show"}`:          50,
		`{"id":"Group show","title":"Group show"}`: 0,
		`{"id":null,"title":"Solo show"}`:          0,
		`{"title":"Solo show"}`:                    0,
	}
	for in, want := range cases {
		var g GeneralSection
		require.NoError(t, json.Unmarshal([]byte(in), &g), in)
		assert.Equal(t, want, g.ID, in)
		assert.NotEmpty(t, g.Title, in)
	}

	var g GeneralSection
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &g))
}
