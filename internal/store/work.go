package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type workStore struct {
	*MYSQLStore
}

// Works returns an object implementing the dependency.Works interface
func (ms *MYSQLStore) Works() dependency.Works {
	return &workStore{
		MYSQLStore: ms,
	}
}

const workColumns = `w.id, w.general_id, w.medium, w.dimensions, w.year`

func (ws *workStore) AddWork(ctx context.Context, w *entity.Work) (*entity.Work, error) {
	var id int
	err := ws.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		generalId, err := insertGeneral(ctx, rep.DB(), &w.General)
		if err != nil {
			return err
		}
		id, err = ExecNamedLastId(ctx, rep.DB(), `
		INSERT INTO work (general_id, medium, dimensions, year)
		VALUES (:generalId, :medium, :dimensions, :year)`, map[string]any{
			"generalId":  generalId,
			"medium":     w.Medium,
			"dimensions": w.Dimensions,
			"year":       w.Year,
		})
		if err != nil {
			return fmt.Errorf("can't insert work: %w", err)
		}
		return writeWorkRelations(ctx, rep.DB(), id, generalId, w)
	})
	if err != nil {
		return nil, err
	}
	return ws.GetWorkById(ctx, id)
}

func (ws *workStore) UpdateWork(ctx context.Context, id int, w *entity.Work) (*entity.Work, error) {
	err := ws.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		row, err := QueryNamedOne[entity.WorkRow](ctx, rep.DB(), `SELECT `+workColumns+` FROM work w WHERE w.id = :id`, map[string]any{
			"id": id,
		})
		if err != nil {
			return fmt.Errorf("can't get work %d: %w", id, err)
		}
		if err := updateGeneral(ctx, rep.DB(), row.GeneralID, &w.General); err != nil {
			return err
		}
		err = ExecNamed(ctx, rep.DB(), `
		UPDATE work SET medium = :medium, dimensions = :dimensions, year = :year WHERE id = :id`, map[string]any{
			"id":         id,
			"medium":     w.Medium,
			"dimensions": w.Dimensions,
			"year":       w.Year,
		})
		if err != nil {
			return fmt.Errorf("can't update work %d: %w", id, err)
		}
		return writeWorkRelations(ctx, rep.DB(), id, row.GeneralID, w)
	})
	if err != nil {
		return nil, err
	}
	return ws.GetWorkById(ctx, id)
}

func writeWorkRelations(ctx context.Context, db dependency.DB, id, generalId int, w *entity.Work) error {
	if err := setMedia(ctx, db, generalId, w.Images, w.Videos, w.ThreeD); err != nil {
		return err
	}
	if err := ExecNamed(ctx, db, `DELETE FROM work_project WHERE work_id = :id`, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("can't clear work projects: %w", err)
	}
	rows := make([]map[string]any, 0, len(w.Projects))
	for _, p := range w.Projects {
		if p.ID == 0 {
			continue
		}
		rows = append(rows, map[string]any{"work_id": id, "project_id": p.ID})
	}
	if err := BulkInsert(ctx, db, "work_project", rows); err != nil {
		return fmt.Errorf("can't link work projects: %w", err)
	}
	return nil
}

func (ws *workStore) GetWorkById(ctx context.Context, id int) (*entity.Work, error) {
	works, err := ws.listWorks(ctx, `SELECT `+workColumns+` FROM work w WHERE w.id = :id`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return nil, fmt.Errorf("work %d: %w", id, errNotFound)
	}
	return &works[0], nil
}

// ListWorks returns every work ordered by its general section index.
func (ws *workStore) ListWorks(ctx context.Context) ([]entity.Work, error) {
	return ws.listWorks(ctx, `
	SELECT `+workColumns+` FROM work w JOIN general_section g ON g.id = w.general_id
	ORDER BY g.f_index, g.created_at DESC`, nil)
}

func (ws *workStore) listWorks(ctx context.Context, query string, params map[string]any) ([]entity.Work, error) {
	rows, err := QueryListNamed[entity.WorkRow](ctx, ws.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("can't list works: %w", err)
	}
	generalIds := make([]int, 0, len(rows))
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		generalIds = append(generalIds, r.GeneralID)
		ids = append(ids, r.ID)
	}
	generals, err := generalsByIds(ctx, ws.DB(), generalIds)
	if err != nil {
		return nil, err
	}
	media, err := mediaByGeneralIds(ctx, ws.DB(), generalIds)
	if err != nil {
		return nil, err
	}
	projects, err := projectsByWorkIds(ctx, ws.DB(), ids)
	if err != nil {
		return nil, err
	}

	works := make([]entity.Work, 0, len(rows))
	for _, r := range rows {
		w := entity.NewWork(generals[r.GeneralID])
		w.ID = r.ID
		w.GeneralID = entity.IntPtr(r.GeneralID)
		w.Medium = r.Medium
		w.Dimensions = r.Dimensions
		w.Year = r.Year
		w.Images = entity.FilterMediaKind(media[r.GeneralID], entity.MediaImage)
		w.Videos = entity.FilterMediaKind(media[r.GeneralID], entity.MediaVideo)
		w.ThreeD = entity.FilterMediaKind(media[r.GeneralID], entity.MediaThreeD)
		w.Projects = projects[r.ID]
		works = append(works, w)
	}
	return works, nil
}

type workProjectRow struct {
	WorkID int `db:"work_id"`
	entity.ProjectRow
}

// projectsByWorkIds loads the projects a work appeared in, without their own relations.
func projectsByWorkIds(ctx context.Context, db dependency.DB, workIds []int) (map[int][]entity.Project, error) {
	out := map[int][]entity.Project{}
	if len(workIds) == 0 {
		return out, nil
	}
	rows, err := QueryListNamed[workProjectRow](ctx, db, `
	SELECT wp.work_id, `+projectColumns+`
	FROM work_project wp JOIN project p ON p.id = wp.project_id
	WHERE wp.work_id IN (:ids)`, map[string]any{"ids": workIds})
	if err != nil {
		return nil, fmt.Errorf("can't get work projects: %w", err)
	}
	generalIds := make([]int, 0, len(rows))
	for _, r := range rows {
		generalIds = append(generalIds, r.GeneralID)
	}
	generals, err := generalsByIds(ctx, db, generalIds)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.WorkID] = append(out[r.WorkID], projectFromRow(r.ProjectRow, generals[r.GeneralID]))
	}
	return out, nil
}
