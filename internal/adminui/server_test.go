package adminui

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	httpapi "github.com/jakubkanna/labguy-manager/internal/api/http"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/admin"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/auth"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/requester"
	"github.com/jakubkanna/labguy-manager/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket stores nothing and derives etags from the uploaded bytes.
type fakeBucket struct{}

func etag(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (fakeBucket) UploadContentImage(_ context.Context, raw, folder, _ string) (*entity.Media, error) {
	e := etag(raw)
	return &entity.Media{Etag: e, Kind: entity.MediaImage, URL: "https://cdn.test/" + folder + "/" + e + ".jpg"}, nil
}

func (fakeBucket) UploadContentVideo(_ context.Context, raw []byte, folder, _, contentType string) (*entity.Media, error) {
	e := etag(string(raw))
	return &entity.Media{Etag: e, Kind: entity.MediaVideo, MimeType: contentType, URL: "https://cdn.test/" + folder + "/" + e + ".mp4"}, nil
}

func (fakeBucket) UploadContentThreeD(_ context.Context, raw []byte, folder, _ string) (*entity.Media, error) {
	e := etag(string(raw))
	return &entity.Media{Etag: e, Kind: entity.MediaThreeD, URL: "https://cdn.test/" + folder + "/" + e + ".glb"}, nil
}

func (fakeBucket) DeleteFromBucket(context.Context, []string) error { return nil }

func (fakeBucket) ListObjects(context.Context) ([]entity.Media, error) { return nil, nil }

func (fakeBucket) GetBaseFolder() string { return "test" }

type env struct {
	repo   *memstore.Store
	ui     *httptest.Server
	client *http.Client
	cookie *http.Cookie
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := memstore.New()
	as, err := auth.New(&auth.Config{JWTSecret: "s", MasterPassword: "master", JWTTTL: "1h", BcryptCost: 4}, repo.Admin(), nil)
	require.NoError(t, err)
	_, err = as.Create(context.Background(), &dto.CreateAdminRequest{MasterPassword: "master", Username: "curator", Password: "password1"})
	require.NoError(t, err)

	api := httptest.NewServer(httpapi.New(&httpapi.Config{}).Router(httpapi.Handlers{
		Admin: admin.New(repo, fakeBucket{}, nil, nil),
		Auth:  as,
	}))
	t.Cleanup(api.Close)

	rc, err := requester.New(&requester.Config{BaseURL: api.URL + "/api"})
	require.NoError(t, err)
	s, err := New(nil, rc, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/admin", s.Routes())
	ui := httptest.NewServer(r)
	t.Cleanup(ui.Close)

	return &env{
		repo: repo,
		ui:   ui,
		client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (e *env) do(t *testing.T, method, path, contentType string, body []byte, accept string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.ui.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.String()
}

func (e *env) form(t *testing.T, path string, values url.Values) (*http.Response, string) {
	return e.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", []byte(values.Encode()), "")
}

func (e *env) login(t *testing.T) {
	t.Helper()
	resp, _ := e.form(t, "/admin/login", url.Values{"username": {"curator"}, "password": {"password1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == defaultCookie {
			e.cookie = c
		}
	}
	require.NotNil(t, e.cookie)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.do(t, http.MethodGet, "/admin/works", "", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, body := e.form(t, "/admin/login", url.Values{"username": {"curator"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "invalid credentials")
	assert.Contains(t, body, `value="curator"`)

	e.login(t)
	assert.True(t, e.cookie.HttpOnly)
	assert.NotEmpty(t, e.cookie.Value)

	resp, _ = e.do(t, http.MethodGet, "/admin/", "", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/works", resp.Header.Get("Location"))

	e.cookie = &http.Cookie{Name: defaultCookie, Value: "forged"}
	resp, _ = e.form(t, "/admin/works", url.Values{"title": {"x"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestTablePages(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	resp, body := e.do(t, http.MethodGet, "/admin/works?create=1", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="title"`)

	resp, _ = e.form(t, "/admin/works", url.Values{"title": {"First"}, "published": {"on"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/works", resp.Header.Get("Location"))

	works, err := e.repo.Works().ListWorks(ctx)
	require.NoError(t, err)
	require.Len(t, works, 1)
	w := works[0]
	assert.Equal(t, "First", w.General.Title)
	assert.True(t, w.General.Published)

	resp, body = e.do(t, http.MethodGet, "/admin/works", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "First")
	assert.Contains(t, body, "✓")
	assert.NotContains(t, body, "fIndex")
	assert.Contains(t, body, "/admin/works/update/"+strconv.Itoa(w.ID))

	t.Run("create failure keeps the create row", func(t *testing.T) {
		resp, body := e.form(t, "/admin/works", url.Values{"title": {""}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, `name="title"`)
		assert.Contains(t, body, `class="error"`)
	})

	t.Run("edit redirects to the update route", func(t *testing.T) {
		resp, _ := e.do(t, http.MethodGet, "/admin/works/"+strconv.Itoa(w.ID)+"/edit", "", nil, "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/admin/works/update/"+strconv.Itoa(w.ID), resp.Header.Get("Location"))

		resp, _ = e.do(t, http.MethodGet, "/admin/works/999/edit", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("declined delete keeps the row", func(t *testing.T) {
		resp, _ := e.form(t, "/admin/works/"+strconv.Itoa(w.ID)+"/delete", url.Values{"confirmed": {"false"}})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		works, err := e.repo.Works().ListWorks(ctx)
		require.NoError(t, err)
		assert.Len(t, works, 1)
	})

	t.Run("confirmed delete removes the row", func(t *testing.T) {
		resp, _ := e.form(t, "/admin/works/"+strconv.Itoa(w.ID)+"/delete", url.Values{"confirmed": {"true"}})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		works, err := e.repo.Works().ListWorks(ctx)
		require.NoError(t, err)
		assert.Empty(t, works)
	})

	resp, _ = e.do(t, http.MethodGet, "/admin/pages", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdatePage(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	p := entity.NewProject(entity.GeneralSection{Title: "Solo show"})
	project, err := e.repo.Projects().AddProject(ctx, &p)
	require.NoError(t, err)
	wk := entity.NewWork(entity.GeneralSection{Title: "Untitled", Tags: []entity.Tag{{Title: "painting"}}})
	work, err := e.repo.Works().AddWork(ctx, &wk)
	require.NoError(t, err)
	base := "/admin/works/update/" + strconv.Itoa(work.ID)

	resp, body := e.do(t, http.MethodGet, base, "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		ID       int            `json:"id"`
		UISchema map[string]any `json:"uiSchema"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, work.ID, page.ID)
	assert.Equal(t, map[string]any{"ui:widget": "hidden"}, page.UISchema["id"])
	general := page.UISchema["general"].(map[string]any)
	tags := general["tags"].(map[string]any)["ui:field"].(map[string]any)
	assert.Equal(t, "autocomplete", tags["widget"])
	projects := page.UISchema["projects"].(map[string]any)["ui:field"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"id": float64(project.ID), "title": "Solo show"}}, projects["options"])

	resp, body = e.do(t, http.MethodPost, base+"/select?path=projects", "application/json",
		[]byte(`[{"id":`+strconv.Itoa(project.ID)+`,"title":"Solo show"},"Group show"]`), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"path":"projects","value":[
		{"id":`+strconv.Itoa(project.ID)+`,"general":{"id":`+strconv.Itoa(project.ID)+`,"title":"Solo show"}},
		{"general":{"id":"Group show","title":"Group show"}}
	]}`, body)

	t.Run("selected projects can be saved and rendered again", func(t *testing.T) {
		var change struct {
			Value json.RawMessage `json:"value"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &change))
		form := map[string]any{}
		raw, err := json.Marshal(wk)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &form))
		form["projects"] = change.Value
		raw, err = json.Marshal(form)
		require.NoError(t, err)

		resp, body := e.do(t, http.MethodPut, base, "application/json", raw, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		got, err := e.repo.Works().GetWorkById(ctx, work.ID)
		require.NoError(t, err)
		require.Len(t, got.Projects, 1)
		assert.Equal(t, project.ID, got.Projects[0].ID)

		resp, body = e.do(t, http.MethodGet, base, "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var page struct {
			UISchema map[string]any `json:"uiSchema"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		projects := page.UISchema["projects"].(map[string]any)["ui:field"].(map[string]any)
		assert.Equal(t, []any{map[string]any{"id": float64(project.ID), "title": "Solo show"}}, projects["value"])
	})

	resp, _ = e.do(t, http.MethodPost, base+"/select?path=images", "application/json", []byte(`[]`), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, base+"/select?path=medium", "application/json", []byte(`[]`), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	resp, body = e.do(t, http.MethodPost, base+"/upload?path=images&kind=IMAGE", mw.FormDataContentType(), buf.Bytes(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var change struct {
		Path  string         `json:"path"`
		Value []entity.Media `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &change))
	assert.Equal(t, "images", change.Path)
	require.Len(t, change.Value, 1)
	assert.Equal(t, entity.MediaImage, change.Value[0].Kind)

	wk.General.Title = "Renamed"
	raw, err := json.Marshal(wk)
	require.NoError(t, err)
	resp, body = e.do(t, http.MethodPut, base, "application/json", raw, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	got, err := e.repo.Works().GetWorkById(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.General.Title)

	resp, _ = e.do(t, http.MethodGet, "/admin/works/update/999", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func upload(t *testing.T, name string, data []byte, contentType string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="files"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf.Bytes()
}

func TestMediaPage(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp, body := e.do(t, http.MethodGet, "/admin/media", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Upload New Images")
	assert.Contains(t, body, "Upload New Video")
	assert.Contains(t, body, `<span aria-disabled="true">Upload New 3D Object</span>`)

	resp, body = e.do(t, http.MethodGet, "/admin/media?dialog=IMAGE", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/admin/media/IMAGE"`)

	resp, _ = e.do(t, http.MethodGet, "/admin/media?dialog=THREE_D", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ct, data := upload(t, "clip.mp4", []byte("video bytes"), "video/mp4")
	resp, body = e.do(t, http.MethodPost, "/admin/media/video", ct, data, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var items []entity.Media
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "video/mp4", items[0].MimeType)

	resp, body = e.do(t, http.MethodPost, "/admin/media/video", ct, data, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	assert.Len(t, items, 1, "the same file is listed once")

	ct, data = upload(t, "model.glb", []byte("glTF"), "model/gltf-binary")
	resp, _ = e.do(t, http.MethodPost, "/admin/media/threed", ct, data, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/admin/media/video", ct, data, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Count(body, "<li ") == 2, body)
}
