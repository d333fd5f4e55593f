package store

import (
	"context"
	"fmt"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type projectStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Projects() dependency.Projects {
	return &projectStore{
		MYSQLStore: ms,
	}
}

const projectColumns = `p.id, p.general_id, p.venue, p.start_date, p.end_date`

func projectFromRow(r entity.ProjectRow, g entity.GeneralSection) entity.Project {
	p := entity.NewProject(g)
	p.ID = r.ID
	p.GeneralID = entity.IntPtr(r.GeneralID)
	p.Venue = r.Venue
	p.StartDate = entity.TimePtr(r.StartDate)
	p.EndDate = entity.TimePtr(r.EndDate)
	return p
}

func (ps *projectStore) AddProject(ctx context.Context, p *entity.Project) (*entity.Project, error) {
	var id int
	err := ps.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		generalId, err := insertGeneral(ctx, rep.DB(), &p.General)
		if err != nil {
			return err
		}
		id, err = ExecNamedLastId(ctx, rep.DB(), `
		INSERT INTO project (general_id, venue, start_date, end_date)
		VALUES (:generalId, :venue, :startDate, :endDate)`, map[string]any{
			"generalId": generalId,
			"venue":     p.Venue,
			"startDate": entity.NullTime(p.StartDate),
			"endDate":   entity.NullTime(p.EndDate),
		})
		if err != nil {
			return fmt.Errorf("can't insert project: %w", err)
		}
		return writeProjectRelations(ctx, rep.DB(), id, generalId, p)
	})
	if err != nil {
		return nil, err
	}
	return ps.GetProjectById(ctx, id)
}

func (ps *projectStore) UpdateProject(ctx context.Context, id int, p *entity.Project) (*entity.Project, error) {
	err := ps.withTx(ctx, func(ctx context.Context, rep *MYSQLStore) error {
		row, err := QueryNamedOne[entity.ProjectRow](ctx, rep.DB(), `SELECT `+projectColumns+` FROM project p WHERE p.id = :id`, map[string]any{
			"id": id,
		})
		if err != nil {
			return fmt.Errorf("can't get project %d: %w", id, err)
		}
		if err := updateGeneral(ctx, rep.DB(), row.GeneralID, &p.General); err != nil {
			return err
		}
		err = ExecNamed(ctx, rep.DB(), `
		UPDATE project SET venue = :venue, start_date = :startDate, end_date = :endDate WHERE id = :id`, map[string]any{
			"id":        id,
			"venue":     p.Venue,
			"startDate": entity.NullTime(p.StartDate),
			"endDate":   entity.NullTime(p.EndDate),
		})
		if err != nil {
			return fmt.Errorf("can't update project %d: %w", id, err)
		}
		return writeProjectRelations(ctx, rep.DB(), id, row.GeneralID, p)
	})
	if err != nil {
		return nil, err
	}
	return ps.GetProjectById(ctx, id)
}

func writeProjectRelations(ctx context.Context, db dependency.DB, id, generalId int, p *entity.Project) error {
	if err := setMedia(ctx, db, generalId, p.Images, p.Videos); err != nil {
		return err
	}
	if err := ExecNamed(ctx, db, `DELETE FROM work_project WHERE project_id = :id`, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("can't clear project works: %w", err)
	}
	rows := make([]map[string]any, 0, len(p.Works))
	for _, w := range p.Works {
		if w.ID == 0 {
			continue
		}
		rows = append(rows, map[string]any{"work_id": w.ID, "project_id": id})
	}
	if err := BulkInsert(ctx, db, "work_project", rows); err != nil {
		return fmt.Errorf("can't link project works: %w", err)
	}
	return nil
}

func (ps *projectStore) GetProjectById(ctx context.Context, id int) (*entity.Project, error) {
	projects, err := ps.listProjects(ctx, `SELECT `+projectColumns+` FROM project p WHERE p.id = :id`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("project %d: %w", id, errNotFound)
	}
	return &projects[0], nil
}

func (ps *projectStore) ListProjects(ctx context.Context) ([]entity.Project, error) {
	return ps.listProjects(ctx, `
	SELECT `+projectColumns+` FROM project p JOIN general_section g ON g.id = p.general_id
	ORDER BY g.f_index, p.start_date DESC`, nil)
}

type projectWorkRow struct {
	ProjectID int `db:"project_id"`
	entity.WorkRow
}

func (ps *projectStore) listProjects(ctx context.Context, query string, params map[string]any) ([]entity.Project, error) {
	rows, err := QueryListNamed[entity.ProjectRow](ctx, ps.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("can't list projects: %w", err)
	}
	ids := make([]int, 0, len(rows))
	generalIds := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		generalIds = append(generalIds, r.GeneralID)
	}
	media, err := mediaByGeneralIds(ctx, ps.DB(), generalIds)
	if err != nil {
		return nil, err
	}

	var works []projectWorkRow
	if len(ids) > 0 {
		works, err = QueryListNamed[projectWorkRow](ctx, ps.DB(), `
		SELECT wp.project_id, `+workColumns+`
		FROM work_project wp JOIN work w ON w.id = wp.work_id
		WHERE wp.project_id IN (:ids)`, map[string]any{"ids": ids})
		if err != nil {
			return nil, fmt.Errorf("can't get project works: %w", err)
		}
	}
	for _, w := range works {
		generalIds = append(generalIds, w.GeneralID)
	}
	generals, err := generalsByIds(ctx, ps.DB(), generalIds)
	if err != nil {
		return nil, err
	}
	worksByProject := map[int][]entity.Work{}
	for _, r := range works {
		w := entity.NewWork(generals[r.GeneralID])
		w.ID = r.ID
		w.GeneralID = entity.IntPtr(r.GeneralID)
		w.Medium = r.Medium
		w.Dimensions = r.Dimensions
		w.Year = r.Year
		worksByProject[r.ProjectID] = append(worksByProject[r.ProjectID], w)
	}

	projects := make([]entity.Project, 0, len(rows))
	for _, r := range rows {
		p := projectFromRow(r, generals[r.GeneralID])
		p.Images = entity.FilterMediaKind(media[r.GeneralID], entity.MediaImage)
		p.Videos = entity.FilterMediaKind(media[r.GeneralID], entity.MediaVideo)
		p.Works = worksByProject[r.ID]
		projects = append(projects, p)
	}
	return projects, nil
}
