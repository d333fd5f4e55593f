package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/form"
	"github.com/jakubkanna/labguy-manager/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	// uploads of one batch run concurrently up to this limit
	maxParallelUploads = 4
	revalidateTimeout  = time.Minute
)

// Server implements handlers for admin.
type Server struct {
	repo    dependency.Repository
	bucket  dependency.FileStore
	re      dependency.Revalidator
	limiter *ratelimit.MultiKeyLimiter

	pending sync.WaitGroup
}

// New creates a new server with admin handlers. re and limiter may be nil.
func New(r dependency.Repository, b dependency.FileStore, re dependency.Revalidator, limiter *ratelimit.MultiKeyLimiter) *Server {
	return &Server{
		repo:    r,
		bucket:  b,
		re:      re,
		limiter: limiter,
	}
}

// Wait blocks until background revalidations finish.
func (s *Server) Wait() {
	s.pending.Wait()
}

// revalidate notifies the public site in the background. Failures are only logged.
func (s *Server) revalidate(ctx context.Context, data *dto.RevalidationData) {
	if s.re == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revalidateTimeout)
		defer cancel()
		if err := s.re.RevalidateAll(ctx, data); err != nil {
			slog.Default().ErrorContext(ctx, "can't revalidate",
				slog.String("resource", data.Resource),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// CONTENT MANAGER

// DeleteContent deletes an entity of the given kind by its general section id.
func (s *Server) DeleteContent(ctx context.Context, kind entity.ContentKind, generalId int) error {
	if err := s.repo.General().DeleteByGeneralId(ctx, kind, generalId); err != nil {
		slog.Default().ErrorContext(ctx, "can't delete content",
			slog.String("kind", kind.String()),
			slog.Int("generalId", generalId),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.revalidate(ctx, &dto.RevalidationData{Resource: kind.String()})
	return nil
}

// MEDIA MANAGER

// UploadImages uploads a batch of base64 images and stores a media record for each.
// The result keeps the request order. A file already known by its etag yields the
// stored record instead of a new one.
func (s *Server) UploadImages(ctx context.Context, req *dto.UploadImagesRequest) ([]entity.Media, error) {
	if err := (&form.UploadImagesRequest{UploadImagesRequest: req}).Validate(); err != nil {
		return nil, err
	}
	return s.uploadBatch(ctx, len(req.Images), func(ctx context.Context, i int) (*entity.Media, error) {
		return s.bucket.UploadContentImage(ctx, req.Images[i], s.bucket.GetBaseFolder(), "")
	})
}

// UploadFiles uploads video or 3D files.
func (s *Server) UploadFiles(ctx context.Context, kind entity.MediaKind, files []dto.UploadFile) ([]entity.Media, error) {
	if err := (&form.UploadFilesRequest{Files: files}).Validate(); err != nil {
		return nil, err
	}
	var upload func(ctx context.Context, f dto.UploadFile) (*entity.Media, error)
	switch kind {
	case entity.MediaVideo:
		upload = func(ctx context.Context, f dto.UploadFile) (*entity.Media, error) {
			return s.bucket.UploadContentVideo(ctx, f.Data, s.bucket.GetBaseFolder(), "", f.ContentType)
		}
	case entity.MediaThreeD:
		upload = func(ctx context.Context, f dto.UploadFile) (*entity.Media, error) {
			return s.bucket.UploadContentThreeD(ctx, f.Data, s.bucket.GetBaseFolder(), "")
		}
	default:
		return nil, gerr.BadRequest(fmt.Sprintf("unsupported media kind %q", kind))
	}
	return s.uploadBatch(ctx, len(files), func(ctx context.Context, i int) (*entity.Media, error) {
		return upload(ctx, files[i])
	})
}

func (s *Server) uploadBatch(ctx context.Context, n int, upload func(context.Context, int) (*entity.Media, error)) ([]entity.Media, error) {
	out := make([]entity.Media, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			m, err := upload(gctx, i)
			if err != nil {
				slog.Default().ErrorContext(gctx, "can't upload media",
					slog.Int("index", i),
					slog.String("err", err.Error()),
				)
				return gerr.BadRequest(fmt.Sprintf("file %d: %v", i, err))
			}
			stored, err := s.repo.Media().AddMedia(gctx, m)
			if err != nil {
				return fmt.Errorf("can't store media: %w", err)
			}
			out[i] = *stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.revalidate(ctx, &dto.RevalidationData{Media: true})
	return out, nil
}

// ListMedia returns a page of media and the number of stored records.
func (s *Server) ListMedia(ctx context.Context, limit, offset int, of entity.OrderFactor) ([]entity.Media, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.Media().ListMediaPaged(ctx, limit, offset, of)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't list media",
			slog.String("err", err.Error()),
		)
		return nil, 0, err
	}
	total, err := s.repo.Media().CountMedia(ctx)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't count media",
			slog.String("err", err.Error()),
		)
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Server) DeleteMedia(ctx context.Context, id int) error {
	if err := s.repo.Media().DeleteMediaById(ctx, id); err != nil {
		slog.Default().ErrorContext(ctx, "can't delete media",
			slog.Int("id", id),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.revalidate(ctx, &dto.RevalidationData{Media: true})
	return nil
}

// DeleteFromBucket removes objects straight from the bucket.
func (s *Server) DeleteFromBucket(ctx context.Context, req *dto.DeleteFromBucketRequest) error {
	if err := (&form.DeleteFromBucketRequest{DeleteFromBucketRequest: req}).Validate(); err != nil {
		return err
	}
	return s.bucket.DeleteFromBucket(ctx, req.ObjectKeys)
}

func (s *Server) ListObjects(ctx context.Context) ([]entity.Media, error) {
	return s.bucket.ListObjects(ctx)
}

// SETTINGS

// GetPreferences serves the cached preferences.
func (s *Server) GetPreferences() entity.Preferences {
	return s.repo.Cache().GetPreferences()
}

func (s *Server) SetPreferences(ctx context.Context, p *entity.Preferences) (entity.Preferences, error) {
	if err := s.repo.Preferences().SetPreferences(ctx, p); err != nil {
		return entity.Preferences{}, err
	}
	s.revalidate(ctx, &dto.RevalidationData{Preferences: true})
	return s.repo.Cache().GetPreferences(), nil
}

func (s *Server) ListTags(ctx context.Context) ([]entity.Tag, error) {
	return s.repo.Tags().ListTags(ctx)
}
