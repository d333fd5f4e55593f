package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type postStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Posts() dependency.Posts {
	return &postStore{
		MYSQLStore: ms,
	}
}

const postColumns = `p.id, p.general_id, p.content`

func (ps *postStore) AddPost(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	var id int
	err := ps.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		generalId, err := insertGeneral(ctx, rep.DB(), &p.General)
		if err != nil {
			return err
		}
		id, err = ExecNamedLastId(ctx, rep.DB(), `INSERT INTO post (general_id, content) VALUES (:generalId, :content)`, map[string]any{
			"generalId": generalId,
			"content":   p.Content,
		})
		if err != nil {
			return fmt.Errorf("can't insert post: %w", err)
		}
		return setMedia(ctx, rep.DB(), generalId, p.Images, p.Videos)
	})
	if err != nil {
		return nil, err
	}
	return ps.GetPostById(ctx, id)
}

func (ps *postStore) UpdatePost(ctx context.Context, id int, p *entity.Post) (*entity.Post, error) {
	err := ps.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		row, err := QueryNamedOne[entity.PostRow](ctx, rep.DB(), `SELECT `+postColumns+` FROM post p WHERE p.id = :id`, map[string]any{
			"id": id,
		})
		if err != nil {
			return fmt.Errorf("can't get post %d: %w", id, err)
		}
		if err := updateGeneral(ctx, rep.DB(), row.GeneralID, &p.General); err != nil {
			return err
		}
		if err := ExecNamed(ctx, rep.DB(), `UPDATE post SET content = :content WHERE id = :id`, map[string]any{
			"id":      id,
			"content": p.Content,
		}); err != nil {
			return fmt.Errorf("can't update post %d: %w", id, err)
		}
		return setMedia(ctx, rep.DB(), row.GeneralID, p.Images, p.Videos)
	})
	if err != nil {
		return nil, err
	}
	return ps.GetPostById(ctx, id)
}

func (ps *postStore) GetPostById(ctx context.Context, id int) (*entity.Post, error) {
	posts, err := ps.listPosts(ctx, `SELECT `+postColumns+` FROM post p WHERE p.id = :id`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("post %d: %w", id, errNotFound)
	}
	return &posts[0], nil
}

func (ps *postStore) ListPosts(ctx context.Context) ([]entity.Post, error) {
	return ps.listPosts(ctx, `
	SELECT `+postColumns+` FROM post p JOIN general_section g ON g.id = p.general_id
	ORDER BY g.f_index, g.created_at DESC`, nil)
}

func (ps *postStore) listPosts(ctx context.Context, query string, params map[string]any) ([]entity.Post, error) {
	rows, err := QueryListNamed[entity.PostRow](ctx, ps.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("can't list posts: %w", err)
	}
	generalIds := make([]int, 0, len(rows))
	for _, r := range rows {
		generalIds = append(generalIds, r.GeneralID)
	}
	generals, err := generalsByIds(ctx, ps.DB(), generalIds)
	if err != nil {
		return nil, err
	}
	media, err := mediaByGeneralIds(ctx, ps.DB(), generalIds)
	if err != nil {
		return nil, err
	}

	posts := make([]entity.Post, 0, len(rows))
	for _, r := range rows {
		p := entity.NewPost(generals[r.GeneralID])
		p.ID = r.ID
		p.GeneralID = entity.IntPtr(r.GeneralID)
		p.Content = r.Content
		p.Images = entity.FilterMediaKind(media[r.GeneralID], entity.MediaImage)
		p.Videos = entity.FilterMediaKind(media[r.GeneralID], entity.MediaVideo)
		posts = append(posts, p)
	}
	return posts, nil
}
