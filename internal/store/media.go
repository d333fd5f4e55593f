package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

type mediaStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Media() dependency.Media {
	return &mediaStore{
		MYSQLStore: ms,
	}
}

// mediaColumns selects media columns with a NULL etag read back as empty.
func mediaColumns(alias string) string {
	cols := []string{"id", "kind", "url", "thumbnail", "mime_type", "width", "height", "blur_hash", "created_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ") + ", COALESCE(" + alias + ".etag, '') AS etag"
}

// AddMedia inserts a media record. An etag already known to the database is not
// stored twice: the existing record is returned and the new one is discarded.
func (ms *mediaStore) AddMedia(ctx context.Context, media *entity.Media) (*entity.Media, error) {
	if media.Etag != "" {
		existing, err := ms.GetMediaByEtag(ctx, media.Etag)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	id, err := ExecNamedLastId(ctx, ms.DB(), `
	INSERT INTO media (etag, kind, url, thumbnail, mime_type, width, height, blur_hash)
	VALUES (NULLIF(:etag, ''), :kind, :url, :thumbnail, :mimeType, :width, :height, :blurHash)`, map[string]any{
		"etag":      media.Etag,
		"kind":      media.Kind,
		"url":       media.URL,
		"thumbnail": media.ThumbnailURL,
		"mimeType":  media.MimeType,
		"width":     media.Width,
		"height":    media.Height,
		"blurHash":  media.BlurHash,
	})
	if err != nil {
		// lost a race against a concurrent upload of the same file
		if isErrUniqueViolation(err) && media.Etag != "" {
			return ms.GetMediaByEtag(ctx, media.Etag)
		}
		return nil, fmt.Errorf("failed to add media: %w", err)
	}
	return ms.getMediaById(ctx, id)
}

func (ms *mediaStore) getMediaById(ctx context.Context, id int) (*entity.Media, error) {
	m, err := QueryNamedOne[entity.Media](ctx, ms.DB(), `SELECT `+mediaColumns("m")+` FROM media m WHERE m.id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get media %d: %w", id, err)
	}
	return &m, nil
}

func (ms *mediaStore) GetMediaByEtag(ctx context.Context, etag string) (*entity.Media, error) {
	m, err := QueryNamedOne[entity.Media](ctx, ms.DB(), `SELECT `+mediaColumns("m")+` FROM media m WHERE m.etag = :etag`, map[string]any{
		"etag": etag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get media by etag: %w", err)
	}
	return &m, nil
}

func (ms *mediaStore) DeleteMediaById(ctx context.Context, id int) error {
	res, err := ms.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("media %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (ms *mediaStore) ListMediaPaged(ctx context.Context, limit, offset int, orderFactor entity.OrderFactor) ([]entity.Media, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("invalid pagination parameters")
	}

	query := `SELECT ` + mediaColumns("m") + ` FROM media m ORDER BY m.id ` + orderFactor.String() + ` LIMIT :limit OFFSET :offset`
	mediaPage, err := QueryListNamed[entity.Media](ctx, ms.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return mediaPage, nil
}

func (ms *mediaStore) CountMedia(ctx context.Context) (int, error) {
	count, err := QueryCountNamed(ctx, ms.DB(), `SELECT COUNT(*) FROM media`, map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return int(count), nil
}
