package bucket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

var (
	videoTypes  = map[string]bool{contentTypeMP4: true, contentTypeWEBM: true}
	threeDTypes = map[string]bool{contentTypeGLB: true, contentTypeGLTF: true}
)

// UploadContentVideo uploads an mp4 or webm video. The declared content type is
// checked against the sniffed one; the sniffed one wins.
func (b *Bucket) UploadContentVideo(ctx context.Context, raw []byte, folder, videoName, contentType string) (*entity.Media, error) {
	mime := mimetype.Detect(raw).String()
	if !videoTypes[mime] {
		return nil, fmt.Errorf("video type is not supported [%s]", mime)
	}
	if contentType != "" && contentType != mime {
		slog.Default().WarnContext(ctx, "declared video content type differs from sniffed",
			slog.String("declared", contentType),
			slog.String("sniffed", mime),
		)
	}
	return b.uploadRaw(ctx, entity.MediaVideo, raw, folder, videoName, mime)
}

// UploadContentThreeD uploads a glTF model, binary or JSON.
func (b *Bucket) UploadContentThreeD(ctx context.Context, raw []byte, folder, objName string) (*entity.Media, error) {
	mime := mimetype.Detect(raw).String()
	if !threeDTypes[mime] {
		return nil, fmt.Errorf("3d object type is not supported [%s]", mime)
	}
	return b.uploadRaw(ctx, entity.MediaThreeD, raw, folder, objName, mime)
}

func (b *Bucket) uploadRaw(ctx context.Context, kind entity.MediaKind, raw []byte, folder, name, mime string) (*entity.Media, error) {
	key := b.constructFullPath(folder, objectName(name), fileExtensionFromContentType(mime))
	ui, err := b.putPublic(ctx, key, raw, mime)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't upload object",
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()))
		return nil, err
	}
	return &entity.Media{
		Etag:     ui.ETag,
		Kind:     kind,
		URL:      b.getCDNURL(key),
		MimeType: mime,
	}, nil
}
