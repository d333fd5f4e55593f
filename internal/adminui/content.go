package adminui

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jakubkanna/labguy-manager/internal/adminui/table"
	"github.com/jakubkanna/labguy-manager/internal/adminui/uischema"
	"github.com/jakubkanna/labguy-manager/internal/adminui/uploader"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/form"
	"github.com/jakubkanna/labguy-manager/internal/medialist"
	"github.com/jakubkanna/labguy-manager/internal/requester"
	"github.com/jakubkanna/labguy-manager/internal/session"
)

const (
	maxJSONBody      = 8 << 20
	maxMultipartBody = 512 << 20
)

// contentPages serves the table and edit pages of one content kind.
type contentPages[T entity.Content] struct {
	s    *Server
	kind entity.ContentKind
	res  requester.Resource[T]
	newT func(entity.GeneralSection) T
}

func (s *Server) mountWorks(r chi.Router) {
	mountContent(r, contentPages[entity.Work]{s: s, kind: entity.KindWorks, res: requester.NewResource[entity.Work](s.api), newT: entity.NewWork})
}

func (s *Server) mountProjects(r chi.Router) {
	mountContent(r, contentPages[entity.Project]{s: s, kind: entity.KindProjects, res: requester.NewResource[entity.Project](s.api), newT: entity.NewProject})
}

func (s *Server) mountPosts(r chi.Router) {
	mountContent(r, contentPages[entity.Post]{s: s, kind: entity.KindPosts, res: requester.NewResource[entity.Post](s.api), newT: entity.NewPost})
}

func mountContent[T entity.Content](r chi.Router, p contentPages[T]) {
	r.Route("/"+p.kind.String(), func(r chi.Router) {
		r.Get("/", p.handleList)
		r.Post("/", p.handleCreate)
		r.Post("/{id}/delete", p.handleDelete)
		r.Get("/{id}/edit", p.handleEdit)
		r.Get("/update/{id}", p.handleUpdatePage)
		r.Put("/update/{id}", p.handleUpdate)
		r.Post("/update/{id}/select", p.handleSelect)
		r.Post("/update/{id}/upload", p.handleFieldUpload)
	})
}

// location is the list page of the kind; the table takes its resource from it.
func (p contentPages[T]) location() string {
	return "/admin/" + p.kind.String()
}

// table loads the rows and builds the table driving the request. Edit redirects and
// deletion is confirmed by the "confirmed" form value the page sets after asking.
func (p contentPages[T]) table(w http.ResponseWriter, r *http.Request) (*table.Table[T], error) {
	rows, err := p.res.FetchData(r.Context(), p.kind.String())
	if err != nil {
		return nil, err
	}
	return table.New(p.location(), sessionFrom(r.Context()), table.Deps[T]{
		Requester: p.res,
		Loader:    func(string) []T { return rows },
		Navigator: table.NavigatorFunc(func(to string) {
			http.Redirect(w, r, path.Join(p.location(), to), http.StatusSeeOther)
		}),
		Confirmer: table.ConfirmerFunc(func(string) bool {
			return r.PostFormValue("confirmed") == "true"
		}),
		New: p.newT,
	}), nil
}

type rowView struct {
	ID      int
	Cells   []table.Cell
	Confirm string
	EditURL string
}

type tableView struct {
	Kind     string
	Columns  []table.Column
	Rows     []rowView
	Creating bool
	Create   table.CreateValues
	Page     int
	Pages    int
	Options  table.Options
	Error    string
}

func (p contentPages[T]) view(t *table.Table[T], page int) tableView {
	opts := table.DefaultOptions()
	var cols []table.Column
	for _, c := range table.Columns() {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	rows, pages := table.Page(t.Rows(), page, opts.PageSize)
	if page < 0 || page >= pages {
		page = 0
	}

	v := tableView{Kind: p.kind.String(), Columns: cols, Page: page, Pages: pages, Options: opts}
	for _, row := range rows {
		rv := rowView{ID: row.EntityID(), Confirm: table.ConfirmText(row)}
		if to, ok := table.EditTarget(row); ok {
			rv.EditURL = path.Join(p.location(), to)
		}
		for _, c := range cols {
			rv.Cells = append(rv.Cells, table.CellOf(row, c))
		}
		v.Rows = append(v.Rows, rv)
	}
	v.Create, v.Creating = t.Creating()
	return v
}

func (p contentPages[T]) handleList(w http.ResponseWriter, r *http.Request) {
	t, err := p.table(w, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	if r.URL.Query().Get("create") == "1" {
		t.StartCreate()
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	p.s.render(w, r, http.StatusOK, "table.html", p.view(t, page))
}

func (p contentPages[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.s.failPage(w, r, gerr.BadRequest("malformed form"))
		return
	}
	t, err := p.table(w, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	values := table.CreateValues{
		Title:     r.PostFormValue("title"),
		Published: r.PostFormValue("published") == "on",
	}
	t.StartCreate()
	if err := t.SaveCreate(r.Context(), values); err != nil {
		if p.s.unauthorized(w, r, err) {
			return
		}
		v := p.view(t, 0)
		v.Create = values
		v.Error = messageOf(err)
		p.s.render(w, r, statusOf(err), "table.html", v)
		return
	}
	http.Redirect(w, r, p.location(), http.StatusSeeOther)
}

// row finds the row with the id of the path among the table rows.
func (p contentPages[T]) row(t *table.Table[T], r *http.Request) (T, error) {
	var zero T
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return zero, gerr.BadRequest("invalid id")
	}
	for _, row := range t.Rows() {
		if row.EntityID() == id {
			return row, nil
		}
	}
	return zero, gerr.NotFound
}

func (p contentPages[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.s.failPage(w, r, gerr.BadRequest("malformed form"))
		return
	}
	t, err := p.table(w, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	row, err := p.row(t, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	if err := t.Delete(r.Context(), row); err != nil {
		if p.s.unauthorized(w, r, err) {
			return
		}
		v := p.view(t, 0)
		v.Error = messageOf(err)
		p.s.render(w, r, statusOf(err), "table.html", v)
		return
	}
	http.Redirect(w, r, p.location(), http.StatusSeeOther)
}

func (p contentPages[T]) handleEdit(w http.ResponseWriter, r *http.Request) {
	t, err := p.table(w, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	row, err := p.row(t, r)
	if err != nil {
		p.s.failPage(w, r, err)
		return
	}
	if !t.Edit(row) {
		p.s.failPage(w, r, gerr.NotFound)
	}
}

// editView is what the external form renderer gets for an update page.
type editView struct {
	Kind     string         `json:"kind"`
	ID       int            `json:"id"`
	FormData any            `json:"formData"`
	UISchema map[string]any `json:"uiSchema"`
}

type fieldChange struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (p contentPages[T]) load(r *http.Request) (*T, *uischema.Registry, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return nil, nil, gerr.BadRequest("invalid id")
	}
	e, err := p.res.FetchOne(r.Context(), p.kind.String(), id)
	if err != nil {
		return nil, nil, err
	}
	reg, err := uischema.ForKind(p.kind, p.s.fieldDeps(sessionFrom(r.Context())))
	if err != nil {
		return nil, nil, err
	}
	return e, reg, nil
}

func (p contentPages[T]) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	e, reg, err := p.load(r)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	ui, err := reg.UISchema(r.Context(), e, nil)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, editView{Kind: p.kind.String(), ID: (*e).EntityID(), FormData: e, UISchema: ui})
}

func (p contentPages[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		jsonError(w, r, gerr.BadRequest("invalid id"))
		return
	}
	var e T
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := respond.Decode(r, &e); err != nil {
		jsonError(w, r, err)
		return
	}
	updated, err := p.res.UpdateData(r.Context(), id, &e, p.kind.String(), sessionFrom(r.Context()).Token)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// handleSelect applies an autocomplete selection to the field named by the path
// query parameter and answers with the value the form should store.
func (p contentPages[T]) handleSelect(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("path")
	var selected []uischema.Selection
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := respond.Decode(r, &selected); err != nil {
		jsonError(w, r, err)
		return
	}
	e, reg, err := p.load(r)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	var changed *fieldChange
	c, err := reg.Control(r.Context(), e, field, func(v any) { changed = &fieldChange{Path: field, Value: v} })
	if err != nil {
		jsonError(w, r, gerr.BadRequest(err.Error()))
		return
	}
	if c.Select == nil {
		jsonError(w, r, gerr.BadRequest("field "+field+" takes no selection"))
		return
	}
	if err := c.Select(selected); err != nil {
		jsonError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, changed)
}

// handleFieldUpload uploads files into a media field and answers with the merged
// media list.
func (p contentPages[T]) handleFieldUpload(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("path")
	kind, err := entity.ParseMediaKind(r.URL.Query().Get("kind"))
	if err != nil {
		jsonError(w, r, gerr.BadRequest(err.Error()))
		return
	}
	files, err := readFiles(w, r)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	e, reg, err := p.load(r)
	if err != nil {
		jsonError(w, r, err)
		return
	}
	var changed *fieldChange
	c, err := reg.Control(r.Context(), e, field, func(v any) { changed = &fieldChange{Path: field, Value: v} })
	if err != nil {
		jsonError(w, r, gerr.BadRequest(err.Error()))
		return
	}
	if c.Upload == nil {
		jsonError(w, r, gerr.BadRequest("field "+field+" takes no upload"))
		return
	}
	if err := c.Upload(r.Context(), kind, files); err != nil {
		jsonError(w, r, uploadError(err))
		return
	}
	respond.JSON(w, http.StatusOK, changed)
}

func (s *Server) fieldDeps(sess session.Session) uischema.Deps {
	projects := requester.NewResource[entity.Project](s.api)
	return uischema.Deps{
		FetchTags: s.api.FetchTags,
		FetchProjects: func(ctx context.Context) ([]entity.Project, error) {
			return projects.FetchData(ctx, entity.KindProjects.String())
		},
		Coordinator: func(variant uploader.Variant, list *medialist.List) *uploader.Coordinator {
			return uploader.New(sess, variant, s.api, list, s.metrics)
		},
	}
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, uploader.ErrNoSession):
		return gerr.New(http.StatusServiceUnavailable, "preferences are not available")
	case errors.Is(err, uploader.ErrUnavailable):
		return gerr.BadRequest(err.Error())
	}
	return err
}

func readFiles(w http.ResponseWriter, r *http.Request) ([]dto.UploadFile, error) {
	files, err := form.ReadUploadFiles(w, r, maxMultipartBody)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, gerr.BadRequest("no files")
	}
	return files, nil
}

// failPage renders the error page, or the login redirect for a rejected token.
func (s *Server) failPage(w http.ResponseWriter, r *http.Request, err error) {
	if s.unauthorized(w, r, err) {
		return
	}
	status := statusOf(err)
	s.render(w, r, status, "error.html", errorView{Status: status, Message: messageOf(err)})
}

type errorView struct {
	Status  int
	Message string
}
