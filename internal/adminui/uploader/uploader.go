// Package uploader coordinates the per-kind media upload dialogs of an admin page
// and merges what the API returns into the media list the page owns.
package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/medialist"
	"github.com/jakubkanna/labguy-manager/internal/metrics"
	"github.com/jakubkanna/labguy-manager/internal/session"
)

var (
	ErrNoSession   = errors.New("uploader: no token or preferences")
	ErrUnavailable = errors.New("uploader: upload kind is not available")
)

// Uploader is the part of the request layer doing the uploads.
type Uploader interface {
	UploadImages(ctx context.Context, token string, images []string) ([]entity.Media, error)
	UploadVideos(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error)
	UploadThreeD(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error)
}

// Variant narrows the offered kinds. The zero value offers every kind.
type Variant = entity.MediaKind

const AllKinds Variant = ""

type Dialog int

const (
	DialogNone Dialog = iota
	DialogImage
	DialogVideo
	DialogThreeD
)

var dialogs = map[entity.MediaKind]Dialog{
	entity.MediaImage:  DialogImage,
	entity.MediaVideo:  DialogVideo,
	entity.MediaThreeD: DialogThreeD,
}

var labels = map[entity.MediaKind]string{
	entity.MediaImage:  "Upload New Images",
	entity.MediaVideo:  "Upload New Video",
	entity.MediaThreeD: "Upload New 3D Object",
}

// Affordance is one upload button.
type Affordance struct {
	Kind    entity.MediaKind
	Label   string
	Enabled bool
}

type Coordinator struct {
	sess    session.Session
	variant Variant
	up      Uploader
	list    *medialist.List
	metrics *metrics.Metrics

	mu     sync.Mutex
	dialog Dialog
}

// New returns a coordinator feeding list. m may be nil.
func New(sess session.Session, variant Variant, up Uploader, list *medialist.List, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		sess:    sess,
		variant: variant,
		up:      up,
		list:    list,
		metrics: m,
	}
}

// Visible is false without a token or preferences; nothing is offered then.
func (c *Coordinator) Visible() bool {
	return c.sess.Complete()
}

func (c *Coordinator) shown(kind entity.MediaKind) bool {
	switch kind {
	case entity.MediaImage:
		return c.variant != entity.MediaVideo
	case entity.MediaVideo:
		return c.variant != entity.MediaImage
	case entity.MediaThreeD:
		return c.variant != entity.MediaImage && c.variant != entity.MediaVideo
	}
	return false
}

func (c *Coordinator) enabled(kind entity.MediaKind) bool {
	p := c.sess.Preferences
	switch kind {
	case entity.MediaImage:
		return p.EnableImages
	case entity.MediaThreeD:
		return p.Enable3D
	}
	return true
}

// Affordances lists the shown upload buttons in display order.
func (c *Coordinator) Affordances() []Affordance {
	if !c.Visible() {
		return nil
	}
	var out []Affordance
	for _, k := range entity.MediaKinds {
		if !c.shown(k) {
			continue
		}
		out = append(out, Affordance{Kind: k, Label: labels[k], Enabled: c.enabled(k)})
	}
	return out
}

func (c *Coordinator) available(kind entity.MediaKind) error {
	if !c.Visible() {
		return ErrNoSession
	}
	if !c.shown(kind) || !c.enabled(kind) {
		return fmt.Errorf("%w: %s", ErrUnavailable, kind)
	}
	return nil
}

func (c *Coordinator) Dialog() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// Open shows the dialog of kind, replacing any open one.
func (c *Coordinator) Open(kind entity.MediaKind) error {
	if err := c.available(kind); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = dialogs[kind]
	return nil
}

func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = DialogNone
}

// Upload sends files of kind and merges the returned records into the list. The page
// loading flag is held while the request runs. On error the list is not touched.
func (c *Coordinator) Upload(ctx context.Context, kind entity.MediaKind, files []dto.UploadFile) ([]entity.Media, error) {
	if err := c.available(kind); err != nil {
		return nil, err
	}
	release := c.sess.Loading.Hold()
	defer release()

	var (
		batch []entity.Media
		err   error
	)
	switch kind {
	case entity.MediaImage:
		batch, err = c.up.UploadImages(ctx, c.sess.Token, dataURLs(files))
	case entity.MediaVideo:
		batch, err = c.up.UploadVideos(ctx, c.sess.Token, files)
	case entity.MediaThreeD:
		batch, err = c.up.UploadThreeD(ctx, c.sess.Token, files)
	}
	if err != nil {
		c.metrics.IncUploadFailed(string(kind))
		return nil, err
	}

	items, dropped := c.list.ApplyReport(batch)
	c.metrics.ObserveUpload(string(kind), len(batch)-dropped, dropped)
	return items, nil
}

// dataURLs encodes files as base64 data URLs, sniffing the type when it is unknown.
func dataURLs(files []dto.UploadFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		ct := f.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = mimetype.Detect(f.Data).String()
		}
		out = append(out, "data:"+ct+";base64,"+base64.StdEncoding.EncodeToString(f.Data))
	}
	return out
}
