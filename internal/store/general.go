package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"golang.org/x/exp/slices"
)

type generalStore struct {
	*MYSQLStore
}

// General returns an object implementing the dependency.General interface
func (ms *MYSQLStore) General() dependency.General {
	return &generalStore{
		MYSQLStore: ms,
	}
}

// ownerTables maps a content kind to the table owning its general sections.
var ownerTables = map[entity.ContentKind]string{
	entity.KindWorks:    "work",
	entity.KindProjects: "project",
	entity.KindPosts:    "post",
}

// withTx runs f in the current transaction or in a new one.
func (ms *MYSQLStore) withTx(ctx context.Context, f func(context.Context, *MYSQLStore) error) error {
	if ms.InTx() {
		return f(ctx, ms)
	}
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		return f(ctx, rep.(*MYSQLStore))
	})
}

// DeleteByGeneralId deletes a general section owned by an entity of the given kind.
// The owning row, its media links and its tags go with it through cascades.
func (gs *generalStore) DeleteByGeneralId(ctx context.Context, kind entity.ContentKind, generalId int) error {
	table, ok := ownerTables[kind]
	if !ok {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	query := fmt.Sprintf(`DELETE g FROM general_section g JOIN %s o ON o.general_id = g.id WHERE g.id = ?`, table)
	res, err := gs.db.ExecContext(ctx, query, generalId)
	if err != nil {
		return fmt.Errorf("failed to delete %s general section %d: %w", kind, generalId, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("general section %d: %w", generalId, sql.ErrNoRows)
	}
	return nil
}

func insertGeneral(ctx context.Context, db dependency.DB, g *entity.GeneralSection) (int, error) {
	gi := g.Insert()
	id, err := ExecNamedLastId(ctx, db, `
	INSERT INTO general_section (title, slug, description, published, f_index)
	VALUES (:title, :slug, :description, :published, :fIndex)`, map[string]any{
		"title":       gi.Title,
		"slug":        gi.Slug,
		"description": gi.Description,
		"published":   gi.Published,
		"fIndex":      gi.FIndex,
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert general section: %w", err)
	}
	if err := setTags(ctx, db, id, g.Tags); err != nil {
		return 0, err
	}
	return id, nil
}

func updateGeneral(ctx context.Context, db dependency.DB, id int, g *entity.GeneralSection) error {
	gi := g.Insert()
	err := ExecNamed(ctx, db, `
	UPDATE general_section SET
		title = :title,
		slug = :slug,
		description = :description,
		published = :published,
		f_index = :fIndex
	WHERE id = :id`, map[string]any{
		"id":          id,
		"title":       gi.Title,
		"slug":        gi.Slug,
		"description": gi.Description,
		"published":   gi.Published,
		"fIndex":      gi.FIndex,
	})
	if err != nil {
		return fmt.Errorf("can't update general section %d: %w", id, err)
	}
	return setTags(ctx, db, id, g.Tags)
}

// setTags replaces the tags of a section. Unknown titles are created.
func setTags(ctx context.Context, db dependency.DB, generalId int, tags []entity.Tag) error {
	if err := ExecNamed(ctx, db, `DELETE FROM general_tag WHERE general_id = :generalId`, map[string]any{
		"generalId": generalId,
	}); err != nil {
		return fmt.Errorf("can't clear tags: %w", err)
	}

	titles := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Title != "" && !slices.Contains(titles, t.Title) {
			titles = append(titles, t.Title)
		}
	}
	if len(titles) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, map[string]any{"title": t})
	}
	if err := bulkInsertIgnore(ctx, db, "tag", rows); err != nil {
		return fmt.Errorf("can't insert tags: %w", err)
	}

	err := ExecNamed(ctx, db, `
	INSERT INTO general_tag (general_id, tag_id)
	SELECT :generalId, id FROM tag WHERE title IN (:titles)`, map[string]any{
		"generalId": generalId,
		"titles":    titles,
	})
	if err != nil {
		return fmt.Errorf("can't link tags: %w", err)
	}
	return nil
}

// setMedia replaces the media attached to a section, keeping the given order.
func setMedia(ctx context.Context, db dependency.DB, generalId int, groups ...[]entity.Media) error {
	if err := ExecNamed(ctx, db, `DELETE FROM general_media WHERE general_id = :generalId`, map[string]any{
		"generalId": generalId,
	}); err != nil {
		return fmt.Errorf("can't clear media: %w", err)
	}

	var rows []map[string]any
	seen := map[int]bool{}
	for _, g := range groups {
		for _, m := range g {
			if m.ID == 0 || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			rows = append(rows, map[string]any{
				"general_id":    generalId,
				"media_id":      m.ID,
				"display_order": len(rows),
			})
		}
	}
	if err := BulkInsert(ctx, db, "general_media", rows); err != nil {
		return fmt.Errorf("can't link media: %w", err)
	}
	return nil
}

func getGeneral(ctx context.Context, db dependency.DB, id int) (entity.GeneralSection, error) {
	g, err := QueryNamedOne[entity.GeneralSection](ctx, db, `
	SELECT id, title, slug, description, published, f_index, created_at, updated_at
	FROM general_section WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return g, fmt.Errorf("can't get general section %d: %w", id, err)
	}
	tags, err := tagsByGeneralIds(ctx, db, []int{id})
	if err != nil {
		return g, err
	}
	g.Tags = tags[id]
	return g, nil
}

func generalsByIds(ctx context.Context, db dependency.DB, ids []int) (map[int]entity.GeneralSection, error) {
	out := make(map[int]entity.GeneralSection, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	gs, err := QueryListNamed[entity.GeneralSection](ctx, db, `
	SELECT id, title, slug, description, published, f_index, created_at, updated_at
	FROM general_section WHERE id IN (:ids)`, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("can't list general sections: %w", err)
	}
	tags, err := tagsByGeneralIds(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range gs {
		g.Tags = tags[g.ID]
		out[g.ID] = g
	}
	return out, nil
}

type generalTag struct {
	GeneralID int    `db:"general_id"`
	ID        int    `db:"id"`
	Title     string `db:"title"`
}

func tagsByGeneralIds(ctx context.Context, db dependency.DB, ids []int) (map[int][]entity.Tag, error) {
	out := map[int][]entity.Tag{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := QueryListNamed[generalTag](ctx, db, `
	SELECT gt.general_id, t.id, t.title
	FROM general_tag gt JOIN tag t ON t.id = gt.tag_id
	WHERE gt.general_id IN (:ids)
	ORDER BY t.title`, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("can't get tags: %w", err)
	}
	for _, r := range rows {
		out[r.GeneralID] = append(out[r.GeneralID], entity.Tag{ID: r.ID, Title: r.Title})
	}
	return out, nil
}

type generalMedia struct {
	GeneralID int `db:"general_id"`
	entity.Media
}

func mediaByGeneralIds(ctx context.Context, db dependency.DB, ids []int) (map[int][]entity.Media, error) {
	out := map[int][]entity.Media{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := QueryListNamed[generalMedia](ctx, db, `
	SELECT gm.general_id, `+mediaColumns("m")+`
	FROM general_media gm JOIN media m ON m.id = gm.media_id
	WHERE gm.general_id IN (:ids)
	ORDER BY gm.general_id, gm.display_order`, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("can't get media: %w", err)
	}
	for _, r := range rows {
		out[r.GeneralID] = append(out[r.GeneralID], r.Media)
	}
	return out, nil
}

// bulkInsertIgnore is BulkInsert that skips rows hitting a unique key.
func bulkInsertIgnore(ctx context.Context, db dependency.DB, table string, rows []map[string]any) error {
	for _, r := range rows {
		err := BulkInsert(ctx, db, table, []map[string]any{r})
		if err != nil && !isErrUniqueViolation(err) {
			return err
		}
	}
	return nil
}
