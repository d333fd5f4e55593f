// Package adminui serves the admin pages. Every page talks to the API through the
// request layer, the same way the browser client does.
package adminui

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jakubkanna/labguy-manager/internal/adminui/table"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/metrics"
	"github.com/jakubkanna/labguy-manager/internal/requester"
	"github.com/jakubkanna/labguy-manager/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

const defaultCookie = "labguy_token"

type Config struct {
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	CookieTTL    time.Duration `mapstructure:"cookie_ttl"`
}

// Server renders the admin pages.
type Server struct {
	c       Config
	api     *requester.Client
	metrics *metrics.Metrics
	tmpl    *template.Template
}

// New parses the page templates. m may be nil.
func New(c *Config, api *requester.Client, m *metrics.Metrics) (*Server, error) {
	cfg := Config{}
	if c != nil {
		cfg = *c
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookie
	}
	if cfg.CookieTTL == 0 {
		cfg.CookieTTL = 24 * time.Hour
	}
	tmpl, err := template.New("admin").Funcs(template.FuncMap{
		"glyph": func(g table.Glyph) string {
			if g == table.GlyphCheck {
				return "✓"
			}
			if g == table.GlyphClear {
				return "✗"
			}
			return ""
		},
		"add": func(a, b int) int { return a + b },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{c: cfg, api: api, metrics: m, tmpl: tmpl}, nil
}

// Routes returns the admin router, meant to be mounted at /admin.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/works", http.StatusSeeOther)
		})
		r.Get("/media", s.handleMediaPage)
		r.Post("/media/{mediaKind}", s.handleMediaUpload)

		s.mountWorks(r)
		s.mountProjects(r)
		s.mountPosts(r)
	})
	return r
}

type ctxKey struct{}

func sessionFrom(ctx context.Context) session.Session {
	sess, _ := ctx.Value(ctxKey{}).(session.Session)
	return sess
}

// withSession sends requests without a token cookie to the login page. Preferences
// are fetched for every request; without them upload affordances stay hidden.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(s.c.CookieName)
		if err != nil || ck.Value == "" {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		sess := session.Session{Token: ck.Value, Loading: &session.Loading{}}
		prefs, err := s.api.FetchPreferences(r.Context())
		if err != nil {
			slog.Default().WarnContext(r.Context(), "can't fetch preferences", slog.String("err", err.Error()))
		} else {
			sess.Preferences = prefs
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", loginView{})
}

type loginView struct {
	Username string
	Error    string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", loginView{Error: "malformed form"})
		return
	}
	un := r.PostFormValue("username")
	token, err := s.api.Login(r.Context(), un, r.PostFormValue("password"))
	if err != nil {
		s.render(w, r, statusOf(err), "login.html", loginView{Username: un, Error: messageOf(err)})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.c.CookieName,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   s.c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.c.CookieTTL.Seconds()),
	})
	http.Redirect(w, r, "/admin/works", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: s.c.CookieName, Path: "/admin", MaxAge: -1})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// render executes a page template into a buffer so a template error never leaves a
// half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't render page",
			slog.String("template", name),
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// unauthorized reports whether err is the API rejecting the session token. The
// cookie is cleared and the client sent to the login page then.
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if statusOf(err) != http.StatusUnauthorized {
		return false
	}
	http.SetCookie(w, &http.Cookie{Name: s.c.CookieName, Path: "/admin", MaxAge: -1})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	return true
}

// jsonError answers the JSON endpoints with the API's status and message.
func jsonError(w http.ResponseWriter, r *http.Request, err error) {
	var re *requester.Error
	if errors.As(err, &re) {
		respond.Error(w, r, gerr.New(re.Status, re.Message))
		return
	}
	respond.Error(w, r, err)
}

func statusOf(err error) int {
	var re *requester.Error
	if errors.As(err, &re) {
		return re.Status
	}
	return gerr.Status(err)
}

func messageOf(err error) string {
	var re *requester.Error
	if errors.As(err, &re) {
		return re.Message
	}
	return gerr.Public(err)
}
