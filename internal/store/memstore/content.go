package memstore

import (
	"context"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type workStore Store

func (ws *workStore) AddWork(ctx context.Context, w *entity.Work) (*entity.Work, error) {
	s := (*Store)(ws)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.saveWork(s.nextId(), s.nextId(), *w, time.Time{})
	return &stored, nil
}

func (ws *workStore) UpdateWork(ctx context.Context, id int, w *entity.Work) (*entity.Work, error) {
	s := (*Store)(ws)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.works[id]
	if !ok {
		return nil, notFound("work", id)
	}
	stored := s.saveWork(id, *old.GeneralID, *w, old.General.CreatedAt)
	return &stored, nil
}

func (s *Store) saveWork(id, generalId int, w entity.Work, created time.Time) entity.Work {
	out := entity.Work{
		Base: entity.Base{
			ID:        id,
			GeneralID: entity.IntPtr(generalId),
			General:   s.saveGeneral(w.General, generalId, entity.KindWorks, created),
		},
		Medium:     w.Medium,
		Dimensions: w.Dimensions,
		Year:       w.Year,
		Images:     s.resolveMedia(w.Images),
		Videos:     s.resolveMedia(w.Videos),
		ThreeD:     s.resolveMedia(w.ThreeD),
		Projects:   []entity.Project{},
	}
	for _, p := range w.Projects {
		if stored, ok := s.projects[p.ID]; ok {
			out.Projects = append(out.Projects, entity.Project{Base: stored.Base, Venue: stored.Venue})
		}
	}
	s.works[id] = out
	return out
}

func (ws *workStore) GetWorkById(ctx context.Context, id int) (*entity.Work, error) {
	s := (*Store)(ws)
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.works[id]
	if !ok {
		return nil, notFound("work", id)
	}
	return &w, nil
}

func (ws *workStore) ListWorks(ctx context.Context) ([]entity.Work, error) {
	s := (*Store)(ws)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Work, 0, len(s.works))
	for _, w := range s.works {
		out = append(out, w)
	}
	sortByIndex(out)
	return out, nil
}

type projectStore Store

func (ps *projectStore) AddProject(ctx context.Context, p *entity.Project) (*entity.Project, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.saveProject(s.nextId(), s.nextId(), *p, time.Time{})
	return &stored, nil
}

func (ps *projectStore) UpdateProject(ctx context.Context, id int, p *entity.Project) (*entity.Project, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	stored := s.saveProject(id, *old.GeneralID, *p, old.General.CreatedAt)
	return &stored, nil
}

func (s *Store) saveProject(id, generalId int, p entity.Project, created time.Time) entity.Project {
	out := entity.Project{
		Base: entity.Base{
			ID:        id,
			GeneralID: entity.IntPtr(generalId),
			General:   s.saveGeneral(p.General, generalId, entity.KindProjects, created),
		},
		Venue:     p.Venue,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Images:    s.resolveMedia(p.Images),
		Videos:    s.resolveMedia(p.Videos),
		Works:     []entity.Work{},
	}
	for _, w := range p.Works {
		if stored, ok := s.works[w.ID]; ok {
			out.Works = append(out.Works, entity.Work{Base: stored.Base, Year: stored.Year})
		}
	}
	s.projects[id] = out
	return out
}

func (ps *projectStore) GetProjectById(ctx context.Context, id int) (*entity.Project, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	return &p, nil
}

func (ps *projectStore) ListProjects(ctx context.Context) ([]entity.Project, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sortByIndex(out)
	return out, nil
}

type postStore Store

func (ps *postStore) AddPost(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.savePost(s.nextId(), s.nextId(), *p, time.Time{})
	return &stored, nil
}

func (ps *postStore) UpdatePost(ctx context.Context, id int, p *entity.Post) (*entity.Post, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.posts[id]
	if !ok {
		return nil, notFound("post", id)
	}
	stored := s.savePost(id, *old.GeneralID, *p, old.General.CreatedAt)
	return &stored, nil
}

func (s *Store) savePost(id, generalId int, p entity.Post, created time.Time) entity.Post {
	out := entity.Post{
		Base: entity.Base{
			ID:        id,
			GeneralID: entity.IntPtr(generalId),
			General:   s.saveGeneral(p.General, generalId, entity.KindPosts, created),
		},
		Content: p.Content,
		Images:  s.resolveMedia(p.Images),
		Videos:  s.resolveMedia(p.Videos),
	}
	s.posts[id] = out
	return out
}

func (ps *postStore) GetPostById(ctx context.Context, id int) (*entity.Post, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, notFound("post", id)
	}
	return &p, nil
}

func (ps *postStore) ListPosts(ctx context.Context) ([]entity.Post, error) {
	s := (*Store)(ps)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sortByIndex(out)
	return out, nil
}
