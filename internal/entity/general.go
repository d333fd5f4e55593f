package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GeneralSection is the shared part of every content entity. It has its own id,
// distinct from the id of the work, project or post it belongs to.
type GeneralSection struct {
	ID          int       `db:"id" json:"id,omitempty"`
	Title       string    `db:"title" json:"title" valid:"required"`
	Slug        string    `db:"slug" json:"slug,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	Published   bool      `db:"published" json:"published"`
	FIndex      int       `db:"f_index" json:"fIndex,omitzero"`
	Tags        []Tag     `db:"-" json:"tags,omitzero"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt,omitzero"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt,omitzero"`
}

// UnmarshalJSON accepts the id as a number or a string. Related projects typed as
// free text in the work form carry their title in general.id; those ids decode as 0.
func (g *GeneralSection) UnmarshalJSON(data []byte) error {
	type section GeneralSection
	aux := struct {
		ID json.RawMessage `json:"id"`
		*section
	}{section: (*section)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.ID) == 0 || bytes.Equal(aux.ID, []byte("null")) {
		return nil
	}
	if aux.ID[0] != '"' {
		return json.Unmarshal(aux.ID, &g.ID)
	}
	var s string
	if err := json.Unmarshal(aux.ID, &s); err != nil {
		return err
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		id = 0
	}
	g.ID = id
	return nil
}

// GeneralInsert holds the writable columns of a general section.
type GeneralInsert struct {
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	Published   bool   `db:"published"`
	FIndex      int    `db:"f_index"`
}

// Insert returns the writable columns of the section with the slug derived from the title.
func (g *GeneralSection) Insert() GeneralInsert {
	slug := g.Slug
	if slug == "" {
		slug = Slugify(g.Title)
	}
	return GeneralInsert{
		Title:       strings.TrimSpace(g.Title),
		Slug:        slug,
		Description: g.Description,
		Published:   g.Published,
		FIndex:      g.FIndex,
	}
}

// Slugify lowercases s, strips diacritics and joins alphanumeric runs with dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, s)
	if err != nil {
		clean = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(clean) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
