package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/form"
	"github.com/jakubkanna/labguy-manager/internal/middleware"
)

const (
	maxJSONBody = 64 << 20
)

// Routes mounts the content, media and settings endpoints. Reads are public,
// writes go through withAuth.
func (s *Server) Routes(withAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/tags", s.handleListTags)
	r.Get("/preferences", s.handleGetPreferences)
	r.With(withAuth).Put("/preferences", s.handleSetPreferences)

	r.Route("/works", func(r chi.Router) { contentRoutes(r, s, s.works(), withAuth) })
	r.Route("/projects", func(r chi.Router) { contentRoutes(r, s, s.projects(), withAuth) })
	r.Route("/posts", func(r chi.Router) { contentRoutes(r, s, s.posts(), withAuth) })

	r.Route("/media", func(r chi.Router) {
		r.Use(withAuth)
		r.Get("/", s.handleListMedia)
		r.Delete("/{id}", s.handleDeleteMedia)
		r.Post("/images", s.handleUploadImages)
		r.Post("/videos", s.handleUploadFiles(entity.MediaVideo))
		r.Post("/threed", s.handleUploadFiles(entity.MediaThreeD))
		r.Get("/objects", s.handleListObjects)
		r.Post("/objects/delete", s.handleDeleteObjects)
	})
	return r
}

func contentRoutes[T entity.Content](r chi.Router, s *Server, repo contentRepo[T], withAuth func(http.Handler) http.Handler) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.list(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		if list == nil {
			list = []T{}
		}
		respond.JSON(w, http.StatusOK, list)
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		c, err := repo.get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, c)
	})

	r.Group(func(r chi.Router) {
		r.Use(withAuth)
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var c T
			if err := decodeBody(w, r, &c); err != nil {
				respond.Error(w, r, err)
				return
			}
			created, err := createContent(r.Context(), s, repo, &c)
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			respond.JSON(w, http.StatusCreated, created)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := pathInt(r, "id")
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			var c T
			if err := decodeBody(w, r, &c); err != nil {
				respond.Error(w, r, err)
				return
			}
			updated, err := updateContent(r.Context(), s, repo, id, &c)
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			respond.JSON(w, http.StatusOK, updated)
		})
		// content is deleted by the id of its general section
		r.Delete("/{generalId}", func(w http.ResponseWriter, r *http.Request) {
			generalId, err := pathInt(r, "generalId")
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			if err := s.DeleteContent(r.Context(), repo.kind, generalId); err != nil {
				respond.Error(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func pathInt(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil || v <= 0 {
		return 0, gerr.BadRequest("invalid " + key)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return respond.Decode(r, v)
}

func (s *Server) checkUpload(r *http.Request) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.CheckUpload(middleware.GetClientIP(r.Context())); err != nil {
		return gerr.TooManyRequests
	}
	return nil
}

func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	if err := s.checkUpload(r); err != nil {
		respond.Error(w, r, err)
		return
	}
	var req dto.UploadImagesRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	list, err := s.UploadImages(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, list)
}

func (s *Server) handleUploadFiles(kind entity.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.checkUpload(r); err != nil {
			respond.Error(w, r, err)
			return
		}
		files, err := form.ReadUploadFiles(w, r, form.MaxMultipartBody)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		list, err := s.UploadFiles(r.Context(), kind, files)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, list)
	}
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	list, total, err := s.ListMedia(r.Context(), limit, offset, entity.ParseOrderFactor(q.Get("order")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if list == nil {
		list = []entity.Media{}
	}
	respond.JSON(w, http.StatusOK, dto.MediaListResponse{List: list, Total: total})
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := s.DeleteMedia(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.ListObjects(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if list == nil {
		list = []entity.Media{}
	}
	respond.JSON(w, http.StatusOK, dto.MediaListResponse{List: list, Total: len(list)})
}

func (s *Server) handleDeleteObjects(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteFromBucketRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := s.DeleteFromBucket(r.Context(), &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.ListTags(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if tags == nil {
		tags = []entity.Tag{}
	}
	respond.JSON(w, http.StatusOK, tags)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, s.GetPreferences())
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var p entity.Preferences
	if err := decodeBody(w, r, &p); err != nil {
		respond.Error(w, r, err)
		return
	}
	stored, err := s.SetPreferences(r.Context(), &p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, stored)
}
