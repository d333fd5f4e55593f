package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type preferencesStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Preferences() dependency.Preferences {
	return &preferencesStore{
		MYSQLStore: ms,
	}
}

func (ps *preferencesStore) GetPreferences(ctx context.Context) (*entity.Preferences, error) {
	p, err := QueryNamedOne[entity.Preferences](ctx, ps.DB(), `
	SELECT enable_images, enable_3d, updated_at FROM preferences WHERE id = 1`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't get preferences: %w", err)
	}
	return &p, nil
}

// SetPreferences stores the flags and refreshes the cached copy.
func (ps *preferencesStore) SetPreferences(ctx context.Context, p *entity.Preferences) error {
	err := ExecNamed(ctx, ps.DB(), `
	UPDATE preferences SET enable_images = :enableImages, enable_3d = :enable3D WHERE id = 1`, map[string]any{
		"enableImages": p.EnableImages,
		"enable3D":     p.Enable3D,
	})
	if err != nil {
		return fmt.Errorf("can't set preferences: %w", err)
	}
	stored, err := ps.GetPreferences(ctx)
	if err != nil {
		return err
	}
	ps.cache.SetPreferences(*stored)
	return nil
}
