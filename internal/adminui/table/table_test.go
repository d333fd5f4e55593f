package table

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requesterMock struct {
	mock.Mock
}

func (m *requesterMock) CreateData(ctx context.Context, e *entity.Work, resource, token string) (*entity.Work, error) {
	args := m.Called(ctx, e, resource, token)
	if v := args.Get(0); v != nil {
		return v.(*entity.Work), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *requesterMock) DeleteData(ctx context.Context, resource string, generalId int, token string) error {
	return m.Called(ctx, resource, generalId, token).Error(0)
}

func work(id int, generalId *int, title string) entity.Work {
	return entity.Work{Base: entity.Base{ID: id, GeneralID: generalId, General: entity.GeneralSection{Title: title}}}
}

func newTable(t *testing.T, rows []entity.Work, confirm bool) (*Table[entity.Work], *requesterMock, *[]string, *[]string) {
	t.Helper()
	req := &requesterMock{}
	t.Cleanup(func() { req.AssertExpectations(t) })
	var navigated, prompts []string
	tbl := New("/admin/works", session.Session{Token: "tok", Preferences: &entity.Preferences{}}, Deps[entity.Work]{
		Requester: req,
		Loader: func(resource string) []entity.Work {
			assert.Equal(t, "works", resource)
			return rows
		},
		Navigator: NavigatorFunc(func(to string) { navigated = append(navigated, to) }),
		Confirmer: ConfirmerFunc(func(text string) bool {
			prompts = append(prompts, text)
			return confirm
		}),
		New: entity.NewWork,
	})
	return tbl, req, &navigated, &prompts
}

func TestResourceFromPath(t *testing.T) {
	assert.Equal(t, "works", ResourceFromPath("/admin/works"))
	assert.Equal(t, "posts", ResourceFromPath("/admin/posts?page=2"))
	assert.Equal(t, "", ResourceFromPath("/admin/works/"))
	assert.Equal(t, "projects", ResourceFromPath("projects"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed delete goes by general section id", func(t *testing.T) {
		rows := []entity.Work{
			work(1, entity.IntPtr(41), "Other"),
			work(2, entity.IntPtr(42), "Draft"),
			work(3, entity.IntPtr(43), "Final"),
		}
		tbl, req, _, prompts := newTable(t, rows, true)
		req.On("DeleteData", ctx, "works", 42, "tok").Return(nil).Once()

		require.NoError(t, tbl.Delete(ctx, rows[1]))
		assert.Equal(t, []string{`Are you sure you want to delete "Draft"?`}, *prompts)

		got := tbl.Rows()
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].ID)
		assert.Equal(t, 3, got[1].ID)
	})

	t.Run("declined delete sends nothing", func(t *testing.T) {
		rows := []entity.Work{work(2, entity.IntPtr(42), "Draft")}
		tbl, _, _, prompts := newTable(t, rows, false)

		require.NoError(t, tbl.Delete(ctx, rows[0]))
		assert.Len(t, *prompts, 1)
		assert.Len(t, tbl.Rows(), 1)
	})

	t.Run("missing general section id is a silent no-op", func(t *testing.T) {
		rows := []entity.Work{work(2, nil, "Draft")}
		tbl, _, _, _ := newTable(t, rows, true)

		require.NoError(t, tbl.Delete(ctx, rows[0]))
		assert.Len(t, tbl.Rows(), 1)
	})

	t.Run("failed delete leaves rows untouched", func(t *testing.T) {
		rows := []entity.Work{work(2, entity.IntPtr(42), "Draft")}
		tbl, req, _, _ := newTable(t, rows, true)
		boom := errors.New("boom")
		req.On("DeleteData", ctx, "works", 42, "tok").Return(boom).Once()

		assert.ErrorIs(t, tbl.Delete(ctx, rows[0]), boom)
		assert.Len(t, tbl.Rows(), 1)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("created entity goes first", func(t *testing.T) {
		tbl, req, _, _ := newTable(t, []entity.Work{work(1, entity.IntPtr(11), "Old")}, true)
		created := &entity.Work{Base: entity.Base{ID: 7, GeneralID: entity.IntPtr(17), General: entity.GeneralSection{Title: "New", FIndex: 0, CreatedAt: time.Now()}}}
		req.On("CreateData", ctx, mock.MatchedBy(func(e *entity.Work) bool {
			return e.ID == 0 && e.GeneralID == nil && e.General.Title == "New" && !e.General.Published && e.Images == nil
		}), "works", "tok").Return(created, nil).Once()

		tbl.StartCreate()
		values, ok := tbl.Creating()
		require.True(t, ok)
		assert.Equal(t, CreateValues{}, values)

		require.NoError(t, tbl.SaveCreate(ctx, CreateValues{Title: "New", Published: false}))
		rows := tbl.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, 7, rows[0].ID)
		assert.Equal(t, 1, rows[1].ID)
		_, ok = tbl.Creating()
		assert.False(t, ok)
	})

	t.Run("failed create keeps the create row open", func(t *testing.T) {
		tbl, req, _, _ := newTable(t, nil, true)
		req.On("CreateData", ctx, mock.Anything, "works", "tok").Return(nil, errors.New("bad request")).Once()

		tbl.StartCreate()
		assert.Error(t, tbl.SaveCreate(ctx, CreateValues{Title: "New"}))
		assert.Empty(t, tbl.Rows())
		_, ok := tbl.Creating()
		assert.True(t, ok)
	})

	t.Run("empty response is an error", func(t *testing.T) {
		tbl, req, _, _ := newTable(t, nil, true)
		req.On("CreateData", ctx, mock.Anything, "works", "tok").Return(nil, nil).Once()

		tbl.StartCreate()
		assert.Error(t, tbl.SaveCreate(ctx, CreateValues{Title: "New"}))
		assert.Empty(t, tbl.Rows())
		_, ok := tbl.Creating()
		assert.True(t, ok)
	})

	t.Run("new entity carries only title and published", func(t *testing.T) {
		tbl, req, _, _ := newTable(t, nil, true)
		var body string
		req.On("CreateData", ctx, mock.MatchedBy(func(e *entity.Work) bool {
			raw, err := json.Marshal(e)
			body = string(raw)
			return err == nil
		}), "works", "tok").Return(&entity.Work{Base: entity.Base{ID: 8}}, nil).Once()

		require.NoError(t, tbl.SaveCreate(ctx, CreateValues{Title: "Draft", Published: true}))
		assert.JSONEq(t, `{"general":{"title":"Draft","published":true}}`, body)
	})
}

func TestEdit(t *testing.T) {
	tbl, _, navigated, _ := newTable(t, nil, true)

	target, ok := EditTarget(work(5, nil, "x"))
	assert.True(t, ok)
	assert.Equal(t, "update/5", target)

	assert.True(t, tbl.Edit(work(5, nil, "x")))
	assert.False(t, tbl.Edit(work(0, nil, "unsaved")))
	assert.Equal(t, []string{"update/5"}, *navigated)
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "Title", cols[0].Header)
	assert.True(t, cols[0].Grow)
	assert.True(t, cols[1].Hidden)
	assert.False(t, cols[1].Editable)
	assert.False(t, cols[2].Editable)

	published := work(1, nil, "a")
	published.General.Published = true
	assert.Equal(t, Cell{Glyph: GlyphCheck}, CellOf(published, cols[2]))
	assert.Equal(t, Cell{Glyph: GlyphClear}, CellOf(work(1, nil, "a"), cols[2]))

	opts := DefaultOptions()
	assert.False(t, opts.EnableSorting)
	assert.False(t, opts.EnableFilters)
	assert.Equal(t, DisplayRow, opts.CreateDisplayMode)
}

func TestPage(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	p, n := Page(rows, 1, 2)
	assert.Equal(t, []int{3, 4}, p)
	assert.Equal(t, 3, n)
	p, _ = Page(rows, 9, 2)
	assert.Equal(t, []int{1, 2}, p)
	p, n = Page([]int(nil), 0, 2)
	assert.Empty(t, p)
	assert.Equal(t, 1, n)
}
