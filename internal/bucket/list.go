package bucket

import (
	"context"
	"path"
	"strings"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/minio/minio-go/v7"
)

var kindByExt = map[string]entity.MediaKind{
	".mp4":  entity.MediaVideo,
	".webm": entity.MediaVideo,
	".glb":  entity.MediaThreeD,
	".gltf": entity.MediaThreeD,
}

// ListObjects lists media objects under the base folder. Image thumbnails are skipped,
// only originals are returned.
func (b *Bucket) ListObjects(ctx context.Context) ([]entity.Media, error) {
	objectCh := b.cli.ListObjects(ctx, b.S3BucketName, minio.ListObjectsOptions{
		Prefix:    b.BaseFolder,
		Recursive: true,
	})

	var all []entity.Media
	for o := range objectCh {
		if o.Err != nil {
			return nil, o.Err
		}
		ext := strings.ToLower(path.Ext(o.Key))
		base := strings.TrimSuffix(strings.ToLower(o.Key), ext)

		kind, ok := kindByExt[ext]
		if !ok && strings.HasSuffix(base, "-og") {
			kind, ok = entity.MediaImage, true
		}
		if !ok {
			continue
		}
		all = append(all, entity.Media{
			Etag:      strings.Trim(o.ETag, `"`),
			Kind:      kind,
			URL:       b.getCDNURL(o.Key),
			CreatedAt: o.LastModified,
		})
	}
	return all, nil
}
