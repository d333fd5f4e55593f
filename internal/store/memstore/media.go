package memstore

import (
	"context"
	"sort"

	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type mediaStore Store

// AddMedia returns the stored record when the etag is already known.
func (ms *mediaStore) AddMedia(ctx context.Context, media *entity.Media) (*entity.Media, error) {
	s := (*Store)(ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	if media.Etag != "" {
		for _, m := range s.media {
			if m.Etag == media.Etag {
				return &m, nil
			}
		}
	}
	m := *media
	m.ID = s.nextId()
	m.CreatedAt = s.now()
	s.media[m.ID] = m
	return &m, nil
}

func (ms *mediaStore) GetMediaByEtag(ctx context.Context, etag string) (*entity.Media, error) {
	s := (*Store)(ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.media {
		if etag != "" && m.Etag == etag {
			return &m, nil
		}
	}
	return nil, notFound("media with etag", etag)
}

func (ms *mediaStore) DeleteMediaById(ctx context.Context, id int) error {
	s := (*Store)(ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[id]; !ok {
		return notFound("media", id)
	}
	delete(s.media, id)
	return nil
}

func (ms *mediaStore) ListMediaPaged(ctx context.Context, limit, offset int, orderFactor entity.OrderFactor) ([]entity.Media, error) {
	s := (*Store)(ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Media, 0, len(s.media))
	for _, m := range s.media {
		out = append(out, m)
	}
	asc := orderFactor == entity.Ascending
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	if offset >= len(out) {
		return []entity.Media{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (ms *mediaStore) CountMedia(ctx context.Context) (int, error) {
	s := (*Store)(ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.media), nil
}
