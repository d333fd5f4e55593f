package admin

import (
	"context"
	"log/slog"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/form"
)

// contentRepo is the repository surface of one content kind.
type contentRepo[T entity.Content] struct {
	kind   entity.ContentKind
	add    func(context.Context, *T) (*T, error)
	update func(context.Context, int, *T) (*T, error)
	get    func(context.Context, int) (*T, error)
	list   func(context.Context) ([]T, error)
}

func (s *Server) works() contentRepo[entity.Work] {
	return contentRepo[entity.Work]{
		kind: entity.KindWorks,
		add: func(ctx context.Context, w *entity.Work) (*entity.Work, error) {
			return s.repo.Works().AddWork(ctx, w)
		},
		update: func(ctx context.Context, id int, w *entity.Work) (*entity.Work, error) {
			return s.repo.Works().UpdateWork(ctx, id, w)
		},
		get: func(ctx context.Context, id int) (*entity.Work, error) {
			return s.repo.Works().GetWorkById(ctx, id)
		},
		list: func(ctx context.Context) ([]entity.Work, error) {
			return s.repo.Works().ListWorks(ctx)
		},
	}
}

func (s *Server) projects() contentRepo[entity.Project] {
	return contentRepo[entity.Project]{
		kind: entity.KindProjects,
		add: func(ctx context.Context, p *entity.Project) (*entity.Project, error) {
			return s.repo.Projects().AddProject(ctx, p)
		},
		update: func(ctx context.Context, id int, p *entity.Project) (*entity.Project, error) {
			return s.repo.Projects().UpdateProject(ctx, id, p)
		},
		get: func(ctx context.Context, id int) (*entity.Project, error) {
			return s.repo.Projects().GetProjectById(ctx, id)
		},
		list: func(ctx context.Context) ([]entity.Project, error) {
			return s.repo.Projects().ListProjects(ctx)
		},
	}
}

func (s *Server) posts() contentRepo[entity.Post] {
	return contentRepo[entity.Post]{
		kind: entity.KindPosts,
		add: func(ctx context.Context, p *entity.Post) (*entity.Post, error) {
			return s.repo.Posts().AddPost(ctx, p)
		},
		update: func(ctx context.Context, id int, p *entity.Post) (*entity.Post, error) {
			return s.repo.Posts().UpdatePost(ctx, id, p)
		},
		get: func(ctx context.Context, id int) (*entity.Post, error) {
			return s.repo.Posts().GetPostById(ctx, id)
		},
		list: func(ctx context.Context) ([]entity.Post, error) {
			return s.repo.Posts().ListPosts(ctx)
		},
	}
}

func createContent[T entity.Content](ctx context.Context, s *Server, r contentRepo[T], c *T) (*T, error) {
	if err := form.ValidateContent(*c); err != nil {
		return nil, err
	}
	created, err := r.add(ctx, c)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't create content",
			slog.String("kind", r.kind.String()),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	s.revalidate(ctx, &dto.RevalidationData{Resource: r.kind.String(), Ids: []int{(*created).EntityID()}})
	return created, nil
}

func updateContent[T entity.Content](ctx context.Context, s *Server, r contentRepo[T], id int, c *T) (*T, error) {
	if err := form.ValidateContent(*c); err != nil {
		return nil, err
	}
	updated, err := r.update(ctx, id, c)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't update content",
			slog.String("kind", r.kind.String()),
			slog.Int("id", id),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	s.revalidate(ctx, &dto.RevalidationData{Resource: r.kind.String(), Ids: []int{id}})
	return updated, nil
}
