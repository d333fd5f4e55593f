package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	img, err := db.Media().AddMedia(ctx, &entity.Media{Etag: "img", Kind: entity.MediaImage, URL: "https://cdn.test/i.webp"})
	require.NoError(t, err)
	vid, err := db.Media().AddMedia(ctx, &entity.Media{Etag: "vid", Kind: entity.MediaVideo, URL: "https://cdn.test/v.mp4"})
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	project, err := db.Projects().AddProject(ctx, &entity.Project{
		Base:      entity.Base{General: entity.GeneralSection{Title: "Spring Show"}},
		Venue:     "Gallery",
		StartDate: &start,
	})
	require.NoError(t, err)
	require.NotNil(t, project.GeneralID)
	assert.Equal(t, "spring-show", project.General.Slug)

	w := entity.NewWork(entity.GeneralSection{
		Title:     "Untitled Blue",
		Published: true,
		Tags:      []entity.Tag{{Title: "paint"}, {Title: "blue"}, {Title: "paint"}},
	})
	w.Year = 2024
	w.Images = []entity.Media{*img}
	w.Videos = []entity.Media{*vid}
	w.Projects = []entity.Project{*project}

	created, err := db.Works().AddWork(ctx, &w)
	require.NoError(t, err)
	require.NotNil(t, created.GeneralID)
	assert.Equal(t, "Untitled Blue", created.General.Title)
	assert.Equal(t, []entity.Tag{{ID: created.General.Tags[0].ID, Title: "blue"}, {ID: created.General.Tags[1].ID, Title: "paint"}}, created.General.Tags)
	require.Len(t, created.Images, 1)
	require.Len(t, created.Videos, 1)
	assert.Empty(t, created.ThreeD)
	require.Len(t, created.Projects, 1)
	assert.Equal(t, "Spring Show", created.Projects[0].General.Title)

	gotProject, err := db.Projects().GetProjectById(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, gotProject.Works, 1)
	assert.Equal(t, created.ID, gotProject.Works[0].ID)

	created.General.Title = "Untitled Red"
	created.Images = nil
	updated, err := db.Works().UpdateWork(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Red", updated.General.Title)
	assert.Empty(t, updated.Images)
	assert.Equal(t, *created.GeneralID, *updated.GeneralID)

	tags, err := db.Tags().ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// a work's general section cannot be deleted as a post
	assert.ErrorIs(t, db.General().DeleteByGeneralId(ctx, entity.KindPosts, *updated.GeneralID), sql.ErrNoRows)

	require.NoError(t, db.General().DeleteByGeneralId(ctx, entity.KindWorks, *updated.GeneralID))
	_, err = db.Works().GetWorkById(ctx, updated.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	works, err := db.Works().ListWorks(ctx)
	require.NoError(t, err)
	assert.Empty(t, works)
}

func TestPostList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, title := range []string{"Second", "First"} {
		p := entity.NewPost(entity.GeneralSection{Title: title, FIndex: 1 - i})
		p.Content = "body"
		_, err := db.Posts().AddPost(ctx, &p)
		require.NoError(t, err)
	}

	posts, err := db.Posts().ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].General.Title)
	assert.Equal(t, "Second", posts[1].General.Title)
}

func TestPreferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Preferences().SetPreferences(ctx, &entity.Preferences{EnableImages: false, Enable3D: true}))
	p, err := db.Preferences().GetPreferences(ctx)
	require.NoError(t, err)
	assert.False(t, p.EnableImages)
	assert.True(t, p.Enable3D)
	assert.True(t, db.Cache().GetPreferences().Enable3D)
}

func TestTxRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		p := entity.NewPost(entity.GeneralSection{Title: "Never"})
		if _, err := rep.Posts().AddPost(ctx, &p); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	posts, err := db.Posts().ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
