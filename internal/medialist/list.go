package medialist

import (
	"sync"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"golang.org/x/exp/slices"
)

// List is a media list owned by a single form or page. Upload completions may arrive
// in any order; each Apply is atomic and leaves the list duplicate free.
type List struct {
	mu    sync.Mutex
	items []entity.Media
}

// NewList seeds a list. Duplicates already present in initial are kept as they are.
func NewList(initial []entity.Media) *List {
	return &List{items: slices.Clone(initial)}
}

// Apply merges an upload batch into the list and returns the resulting items.
func (l *List) Apply(batch []entity.Media) []entity.Media {
	items, _ := l.ApplyReport(batch)
	return items
}

// ApplyReport is Apply that also reports how many batch records were discarded as
// duplicates.
func (l *List) ApplyReport(batch []entity.Media) ([]entity.Media, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := len(l.items)
	l.items = Merge(l.items, batch)
	return slices.Clone(l.items), before + len(batch) - len(l.items)
}

// Remove drops the record with the given id and reports whether it was present.
func (l *List) Remove(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.items, func(m entity.Media) bool { return m.ID == id })
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// Items returns a copy of the current items.
func (l *List) Items() []entity.Media {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
