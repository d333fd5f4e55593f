package adminui

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jakubkanna/labguy-manager/internal/adminui/uploader"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/medialist"
)

type mediaView struct {
	Visible     bool
	Affordances []uploader.Affordance
	Dialog      entity.MediaKind
	Items       []entity.Media
	Error       string
}

var dialogKinds = map[uploader.Dialog]entity.MediaKind{
	uploader.DialogImage:  entity.MediaImage,
	uploader.DialogVideo:  entity.MediaVideo,
	uploader.DialogThreeD: entity.MediaThreeD,
}

// coordinator seeds the media list of the page from the API.
func (s *Server) coordinator(r *http.Request) (*uploader.Coordinator, *medialist.List, error) {
	sess := sessionFrom(r.Context())
	items, err := s.api.FetchMedia(r.Context(), sess.Token)
	if err != nil {
		return nil, nil, err
	}
	list := medialist.NewList(items)
	return uploader.New(sess, uploader.AllKinds, s.api, list, s.metrics), list, nil
}

func (s *Server) mediaView(c *uploader.Coordinator, items []entity.Media) mediaView {
	if items == nil {
		items = []entity.Media{}
	}
	return mediaView{
		Visible:     c.Visible(),
		Affordances: c.Affordances(),
		Dialog:      dialogKinds[c.Dialog()],
		Items:       items,
	}
}

// handleMediaPage lists the uploaded media. ?dialog=KIND opens the upload dialog of
// that kind.
func (s *Server) handleMediaPage(w http.ResponseWriter, r *http.Request) {
	c, list, err := s.coordinator(r)
	if err != nil {
		s.failPage(w, r, err)
		return
	}
	status := http.StatusOK
	var openErr error
	if d := r.URL.Query().Get("dialog"); d != "" {
		kind, err := entity.ParseMediaKind(d)
		if err == nil {
			err = c.Open(kind)
		}
		if err != nil {
			openErr = uploadError(err)
			status = statusOf(openErr)
		}
	}
	v := s.mediaView(c, list.Items())
	if openErr != nil {
		v.Error = messageOf(openErr)
	}
	s.render(w, r, status, "media.html", v)
}

// handleMediaUpload uploads files of the kind in the path and shows the merged list,
// or returns it as JSON when asked to.
func (s *Server) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	kind, err := entity.ParseMediaKind(strings.ToUpper(chi.URLParam(r, "mediaKind")))
	if err != nil {
		s.mediaFail(w, r, gerr.BadRequest(err.Error()))
		return
	}
	files, err := readFiles(w, r)
	if err != nil {
		s.mediaFail(w, r, err)
		return
	}
	c, list, err := s.coordinator(r)
	if err != nil {
		s.mediaFail(w, r, err)
		return
	}
	items, err := c.Upload(r.Context(), kind, files)
	if err != nil {
		err = uploadError(err)
		if wantsJSON(r) {
			jsonError(w, r, err)
			return
		}
		if s.unauthorized(w, r, err) {
			return
		}
		v := s.mediaView(c, list.Items())
		v.Error = messageOf(err)
		s.render(w, r, statusOf(err), "media.html", v)
		return
	}
	if wantsJSON(r) {
		respond.JSON(w, http.StatusOK, items)
		return
	}
	s.render(w, r, http.StatusOK, "media.html", s.mediaView(c, items))
}

func (s *Server) mediaFail(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		jsonError(w, r, err)
		return
	}
	s.failPage(w, r, err)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
