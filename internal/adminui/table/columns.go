package table

import (
	"strconv"

	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type Glyph string

const (
	GlyphCheck Glyph = "check"
	GlyphClear Glyph = "clear"
)

type Column struct {
	AccessorKey string
	Header      string
	Grow        bool
	Hidden      bool
	Editable    bool
}

var columns = []Column{
	{AccessorKey: "general.title", Header: "Title", Grow: true, Editable: true},
	{AccessorKey: "general.fIndex", Header: "fIndex", Hidden: true},
	{AccessorKey: "general.published", Header: "Published"},
}

// Columns returns the column definitions in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Cell is the rendered value of one column of a row. Either Text or Glyph is set.
type Cell struct {
	Text     string
	Glyph    Glyph
	Editable bool
}

func CellOf[T entity.Content](row T, c Column) Cell {
	g := row.GeneralSection()
	switch c.AccessorKey {
	case "general.title":
		return Cell{Text: g.Title, Editable: c.Editable}
	case "general.fIndex":
		return Cell{Text: strconv.Itoa(g.FIndex)}
	case "general.published":
		if g.Published {
			return Cell{Glyph: GlyphCheck}
		}
		return Cell{Glyph: GlyphClear}
	}
	return Cell{}
}

type DisplayMode string

const DisplayRow DisplayMode = "row"

// Options describe the table behaviour the page renders.
type Options struct {
	RowActionsLast    bool
	EnableRowActions  bool
	EnablePagination  bool
	EnableSorting     bool
	EnableFilters     bool
	EnableEditing     bool
	CreateDisplayMode DisplayMode
	PageSize          int
}

func DefaultOptions() Options {
	return Options{
		RowActionsLast:    true,
		EnableRowActions:  true,
		EnablePagination:  true,
		EnableEditing:     true,
		CreateDisplayMode: DisplayRow,
		PageSize:          10,
	}
}

// Page returns the rows of page n (zero based) and the number of pages.
func Page[T any](rows []T, n, size int) ([]T, int) {
	if size <= 0 {
		return rows, 1
	}
	pages := (len(rows) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n < 0 || n >= pages {
		n = 0
	}
	start := n * size
	end := min(start+size, len(rows))
	return rows[start:end], pages
}
