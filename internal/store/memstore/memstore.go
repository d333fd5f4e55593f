// Package memstore is an in-memory repository used by tests and by the dev mode
// started without a database DSN. It keeps the same not-found and etag semantics
// as the MySQL store but has no real transactions: Tx runs f against the store
// itself and nothing is rolled back on error.
package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/cache"
	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"golang.org/x/exp/slices"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	seq      int
	works    map[int]entity.Work
	projects map[int]entity.Project
	posts    map[int]entity.Post
	// owners maps a general section id to the kind of its owning entity
	owners map[int]entity.ContentKind
	media  map[int]entity.Media
	tags   map[string]int
	admins map[string]string
	prefs  entity.Preferences
	cache  *cache.Cache
}

var _ dependency.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		works:    map[int]entity.Work{},
		projects: map[int]entity.Project{},
		posts:    map[int]entity.Post{},
		owners:   map[int]entity.ContentKind{},
		media:    map[int]entity.Media{},
		tags:     map[string]int{},
		admins:   map[string]string{},
		prefs:    entity.DefaultPreferences(),
		cache:    cache.New(),
	}
}

func (s *Store) nextId() int {
	s.seq++
	return s.seq
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, sql.ErrNoRows)
}

func (s *Store) Works() dependency.Works             { return (*workStore)(s) }
func (s *Store) Projects() dependency.Projects       { return (*projectStore)(s) }
func (s *Store) Posts() dependency.Posts             { return (*postStore)(s) }
func (s *Store) General() dependency.General         { return (*generalStore)(s) }
func (s *Store) Media() dependency.Media             { return (*mediaStore)(s) }
func (s *Store) Tags() dependency.Tags               { return (*tagStore)(s) }
func (s *Store) Preferences() dependency.Preferences { return (*preferencesStore)(s) }
func (s *Store) Admin() dependency.Admin             { return (*adminStore)(s) }
func (s *Store) Cache() dependency.Cache             { return s.cache }

// DB is nil: nothing in the in-memory store speaks SQL.
func (s *Store) DB() dependency.DB { return nil }

func (s *Store) Tx(ctx context.Context, f func(context.Context, dependency.Repository) error) error {
	return f(ctx, s)
}

func (s *Store) TxBegin(ctx context.Context) (dependency.Repository, error) { return s, nil }
func (s *Store) TxCommit(ctx context.Context) error                         { return nil }
func (s *Store) TxRollback(ctx context.Context) error                       { return nil }
func (s *Store) InTx() bool                                                 { return false }
func (s *Store) Now() time.Time                                             { return s.now() }
func (s *Store) Close()                                                     {}
func (s *Store) Ping(ctx context.Context) error                             { return nil }
func (s *Store) IsErrUniqueViolation(err error) bool                        { return false }
func (s *Store) IsErrorRepeat(err error) bool                               { return false }

// saveGeneral stamps a general section the way the database defaults would.
func (s *Store) saveGeneral(g entity.GeneralSection, id int, kind entity.ContentKind, created time.Time) entity.GeneralSection {
	gi := g.Insert()
	now := s.now()
	if created.IsZero() {
		created = now
	}
	out := entity.GeneralSection{
		ID:          id,
		Title:       gi.Title,
		Slug:        gi.Slug,
		Description: gi.Description,
		Published:   gi.Published,
		FIndex:      gi.FIndex,
		Tags:        s.saveTags(g.Tags),
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	s.owners[id] = kind
	return out
}

func (s *Store) saveTags(tags []entity.Tag) []entity.Tag {
	out := []entity.Tag{}
	seen := map[string]bool{}
	for _, t := range tags {
		title := strings.TrimSpace(t.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		id, ok := s.tags[title]
		if !ok {
			id = s.nextId()
			s.tags[title] = id
		}
		out = append(out, entity.Tag{ID: id, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// resolveMedia keeps the known records of ms, in order and without repeats.
func (s *Store) resolveMedia(ms []entity.Media) []entity.Media {
	out := []entity.Media{}
	seen := map[int]bool{}
	for _, m := range ms {
		stored, ok := s.media[m.ID]
		if !ok || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, stored)
	}
	return out
}

func sortByIndex[T entity.Content](list []T) {
	sort.SliceStable(list, func(i, j int) bool {
		gi, gj := list[i].GeneralSection(), list[j].GeneralSection()
		if gi.FIndex != gj.FIndex {
			return gi.FIndex < gj.FIndex
		}
		return gi.CreatedAt.After(gj.CreatedAt)
	})
}

type generalStore Store

func (gs *generalStore) DeleteByGeneralId(ctx context.Context, kind entity.ContentKind, generalId int) error {
	s := (*Store)(gs)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[generalId] != kind {
		return notFound("general section", generalId)
	}
	delete(s.owners, generalId)
	switch kind {
	case entity.KindWorks:
		for id, w := range s.works {
			if *w.GeneralID == generalId {
				delete(s.works, id)
				s.unlinkWork(id)
			}
		}
	case entity.KindProjects:
		for id, p := range s.projects {
			if *p.GeneralID == generalId {
				delete(s.projects, id)
				s.unlinkProject(id)
			}
		}
	case entity.KindPosts:
		for id, p := range s.posts {
			if *p.GeneralID == generalId {
				delete(s.posts, id)
			}
		}
	}
	return nil
}

func (s *Store) unlinkWork(id int) {
	for pid, p := range s.projects {
		p.Works = slices.DeleteFunc(p.Works, func(w entity.Work) bool { return w.ID == id })
		s.projects[pid] = p
	}
}

func (s *Store) unlinkProject(id int) {
	for wid, w := range s.works {
		w.Projects = slices.DeleteFunc(w.Projects, func(p entity.Project) bool { return p.ID == id })
		s.works[wid] = w
	}
}

type tagStore Store

func (ts *tagStore) ListTags(ctx context.Context) ([]entity.Tag, error) {
	s := (*Store)(ts)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Tag, 0, len(s.tags))
	for title, id := range s.tags {
		out = append(out, entity.Tag{ID: id, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type preferencesStore Store

func (ps *preferencesStore) GetPreferences(ctx context.Context) (*entity.Preferences, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prefs
	return &p, nil
}

func (ps *preferencesStore) SetPreferences(ctx context.Context, p *entity.Preferences) error {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = entity.Preferences{EnableImages: p.EnableImages, Enable3D: p.Enable3D, UpdatedAt: s.now()}
	s.cache.SetPreferences(s.prefs)
	return nil
}

type adminStore Store

func (as *adminStore) AddAdmin(ctx context.Context, un, pwHash string) error {
	s := (*Store)(as)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[un]; ok {
		return fmt.Errorf("admin %q already exists", un)
	}
	s.admins[un] = pwHash
	return nil
}

func (as *adminStore) DeleteAdmin(ctx context.Context, username string) error {
	s := (*Store)(as)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[username]; !ok {
		return notFound("admin", username)
	}
	delete(s.admins, username)
	return nil
}

func (as *adminStore) ChangePassword(ctx context.Context, un, newHash string) error {
	s := (*Store)(as)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[un]; !ok {
		return notFound("admin", un)
	}
	s.admins[un] = newHash
	return nil
}

func (as *adminStore) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	s := (*Store)(as)
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.admins[un]
	if !ok {
		return "", notFound("admin", un)
	}
	return h, nil
}
