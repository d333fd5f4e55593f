package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type tagStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Tags() dependency.Tags {
	return &tagStore{
		MYSQLStore: ms,
	}
}

// ListTags returns every known tag, used as autocomplete options.
func (ts *tagStore) ListTags(ctx context.Context) ([]entity.Tag, error) {
	tags, err := QueryListNamed[entity.Tag](ctx, ts.DB(), `SELECT id, title FROM tag ORDER BY title`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list tags: %w", err)
	}
	return tags, nil
}
