package bucket

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"golang.org/x/sync/errgroup"
)

var imageTypes = map[string]bool{
	contentTypeJPEG: true,
	contentTypePNG:  true,
	contentTypeWEBP: true,
	contentTypeGIF:  true,
}

// UploadContentImage decodes a base64 image, uploads the original next to a jpeg
// thumbnail and returns the media record. The etag of the original identifies it.
func (b *Bucket) UploadContentImage(ctx context.Context, rawB64Image, folder, imageName string) (*entity.Media, error) {
	data, err := decodeDataURL(rawB64Image)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	mime := mimetype.Detect(data).String()
	if !imageTypes[mime] {
		return nil, fmt.Errorf("image type is not supported [%s]", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	name := objectName(imageName)
	fullKey := b.constructFullPath(folder, name+"-og", fileExtensionFromContentType(mime))
	thumbKey := b.constructFullPath(folder, name+"-thumb", "jpg")

	media := &entity.Media{
		Kind:     entity.MediaImage,
		URL:      b.getCDNURL(fullKey),
		MimeType: mime,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ui, err := b.putPublic(gctx, fullKey, data, mime)
		if err != nil {
			return err
		}
		media.Etag = ui.ETag
		return nil
	})
	g.Go(func() error {
		thumb, err := thumbnailJPG(img, b.ThumbnailWidth)
		if err != nil {
			return err
		}
		if _, err := b.putPublic(gctx, thumbKey, thumb, contentTypeJPEG); err != nil {
			return err
		}
		media.ThumbnailURL = b.getCDNURL(thumbKey)
		return nil
	})
	g.Go(func() error {
		h, err := blurHash(img)
		if err != nil {
			// a missing placeholder does not fail the upload
			slog.Default().WarnContext(gctx, "can't compute blurhash", slog.String("err", err.Error()))
			return nil
		}
		media.BlurHash = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return media, nil
}
