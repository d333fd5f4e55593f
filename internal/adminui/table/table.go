// Package table is the view model of the admin entity tables. It lists works,
// projects or posts, creates entries inline, sends edits to the update page and
// deletes entries after a confirmation. Local rows only change after the API
// confirms a request.
package table

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/session"
	"golang.org/x/exp/slices"
)

// Requester is the part of the request layer the table uses.
type Requester[T entity.Content] interface {
	CreateData(ctx context.Context, e *T, resource, token string) (*T, error)
	DeleteData(ctx context.Context, resource string, generalId int, token string) error
}

// Loader supplies the initial rows of a resource.
type Loader[T entity.Content] func(resource string) []T

type Navigator interface {
	Navigate(to string)
}

type Confirmer interface {
	Confirm(text string) bool
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(to string)

func (f NavigatorFunc) Navigate(to string) { f(to) }

// ConfirmerFunc adapts a func to Confirmer.
type ConfirmerFunc func(text string) bool

func (f ConfirmerFunc) Confirm(text string) bool { return f(text) }

// CreateValues are the inputs of the inline create row.
type CreateValues struct {
	Title     string `json:"general.title"`
	Published bool   `json:"general.published"`
}

type Deps[T entity.Content] struct {
	Requester Requester[T]
	Loader    Loader[T]
	Navigator Navigator
	Confirmer Confirmer
	// New builds an entity around a general section, e.g. entity.NewWork.
	New func(entity.GeneralSection) T
}

type Table[T entity.Content] struct {
	resource string
	sess     session.Session
	deps     Deps[T]

	mu       sync.Mutex
	rows     []T
	creating *CreateValues
}

// ResourceFromPath returns the final segment of a location path.
// "/admin/works" gives "works", a trailing slash gives "".
func ResourceFromPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// New builds the table for the resource named by location and loads its rows.
func New[T entity.Content](location string, sess session.Session, deps Deps[T]) *Table[T] {
	t := &Table[T]{
		resource: ResourceFromPath(location),
		sess:     sess,
		deps:     deps,
	}
	if deps.Loader != nil {
		t.rows = slices.Clone(deps.Loader(t.resource))
	}
	return t
}

func (t *Table[T]) Resource() string {
	return t.resource
}

// Rows returns a copy of the current rows.
func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rows)
}

// StartCreate opens the inline create row with an empty title, unpublished.
func (t *Table[T]) StartCreate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creating = &CreateValues{}
}

func (t *Table[T]) CancelCreate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creating = nil
}

// Creating returns the values of the open create row.
func (t *Table[T]) Creating() (CreateValues, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.creating == nil {
		return CreateValues{}, false
	}
	return *t.creating, true
}

// SaveCreate creates an entity carrying only the title and the published flag. The
// entity returned by the API is put first and the create row is closed. On error
// nothing changes.
func (t *Table[T]) SaveCreate(ctx context.Context, values CreateValues) error {
	e := t.deps.New(entity.GeneralSection{Title: values.Title, Published: values.Published})
	created, err := t.deps.Requester.CreateData(ctx, &e, t.resource, t.sess.Token)
	if err != nil {
		return err
	}
	if created == nil {
		return fmt.Errorf("create %s: no entity in response", t.resource)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]T{*created}, t.rows...)
	t.creating = nil
	return nil
}

// EditTarget returns the update route of a row. Rows without an id have none.
func EditTarget[T entity.Content](row T) (string, bool) {
	id := row.EntityID()
	if id == 0 {
		return "", false
	}
	return path.Join("update", strconv.Itoa(id)), true
}

// Edit navigates to the update route of row and reports whether it did.
func (t *Table[T]) Edit(row T) bool {
	to, ok := EditTarget(row)
	if !ok || t.deps.Navigator == nil {
		return false
	}
	t.deps.Navigator.Navigate(to)
	return true
}

func ConfirmText[T entity.Content](row T) string {
	return fmt.Sprintf(`Are you sure you want to delete "%s"?`, row.GeneralSection().Title)
}

// Delete asks for confirmation and deletes row by its general section id. A row
// without a general section id is skipped without a request. Every row sharing the
// general section id is removed once the API confirms.
func (t *Table[T]) Delete(ctx context.Context, row T) error {
	if t.deps.Confirmer == nil || !t.deps.Confirmer.Confirm(ConfirmText(row)) {
		return nil
	}
	generalId, ok := row.GeneralSectionID()
	if !ok {
		return nil
	}
	if err := t.deps.Requester.DeleteData(ctx, t.resource, generalId, t.sess.Token); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = slices.DeleteFunc(t.rows, func(r T) bool {
		id, ok := r.GeneralSectionID()
		return ok && id == generalId
	})
	return nil
}
