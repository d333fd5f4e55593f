// Package medialist reconciles freshly uploaded media into an existing media list.
package medialist

import (
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

// Merge returns batch records whose etag is not present in existing, followed by all of
// existing. Existing records are kept intact and in order, so a re-uploaded asset keeps
// its original position. Within batch the first record with a given etag wins. Records
// without an etag are never treated as duplicates of anything.
func Merge(existing, batch []entity.Media) []entity.Media {
	seen := make(map[string]struct{}, len(existing)+len(batch))
	for _, m := range existing {
		if m.Etag != "" {
			seen[m.Etag] = struct{}{}
		}
	}

	out := make([]entity.Media, 0, len(batch)+len(existing))
	for _, m := range batch {
		if m.Etag != "" {
			if _, dup := seen[m.Etag]; dup {
				continue
			}
			seen[m.Etag] = struct{}{}
		}
		out = append(out, m)
	}
	return append(out, existing...)
}

// Dropped reports how many records of batch Merge would discard against existing.
func Dropped(existing, batch []entity.Media) int {
	return len(existing) + len(batch) - len(Merge(existing, batch))
}
