package memstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	img, err := s.Media().AddMedia(ctx, &entity.Media{Etag: "a", Kind: entity.MediaImage, URL: "https://cdn/a.jpg"})
	require.NoError(t, err)

	p, err := s.Projects().AddProject(ctx, &entity.Project{Base: entity.Base{General: entity.GeneralSection{Title: "Show"}}})
	require.NoError(t, err)

	w, err := s.Works().AddWork(ctx, &entity.Work{
		Base:     entity.Base{General: entity.GeneralSection{Title: "Sculpture One", Tags: []entity.Tag{{Title: "b"}, {Title: "a"}, {Title: "a"}}}},
		Images:   []entity.Media{*img, {ID: 999}},
		Projects: []entity.Project{{Base: entity.Base{ID: p.ID}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "sculpture-one", w.General.Slug)
	assert.Len(t, w.General.Tags, 2)
	assert.Equal(t, "a", w.General.Tags[0].Title)
	require.Len(t, w.Images, 1)
	assert.Equal(t, img.ID, w.Images[0].ID)
	require.Len(t, w.Projects, 1)

	generalId, ok := w.GeneralSectionID()
	require.True(t, ok)
	assert.ErrorIs(t, s.General().DeleteByGeneralId(ctx, entity.KindPosts, generalId), sql.ErrNoRows)
	require.NoError(t, s.General().DeleteByGeneralId(ctx, entity.KindWorks, generalId))

	_, err = s.Works().GetWorkById(ctx, w.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAddMediaDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, err := s.Media().AddMedia(ctx, &entity.Media{Etag: "x", URL: "1"})
	require.NoError(t, err)
	second, err := s.Media().AddMedia(ctx, &entity.Media{Etag: "x", URL: "2"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "1", second.URL)

	_, err = s.Media().AddMedia(ctx, &entity.Media{URL: "3"})
	require.NoError(t, err)
	list, err := s.Media().ListMediaPaged(ctx, 10, 0, entity.Descending)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	total, err := s.Media().CountMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestPreferencesRefreshCache(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.True(t, s.Cache().GetPreferences().EnableImages)
	require.NoError(t, s.Preferences().SetPreferences(ctx, &entity.Preferences{Enable3D: true}))
	assert.True(t, s.Cache().GetPreferences().Enable3D)
	assert.False(t, s.Cache().GetPreferences().EnableImages)
}
