package bucket

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const (
	contentTypeJPEG = "image/jpeg"
	contentTypePNG  = "image/png"
	contentTypeWEBP = "image/webp"
	contentTypeGIF  = "image/gif"
	contentTypeMP4  = "video/mp4"
	contentTypeWEBM = "video/webm"
	contentTypeGLB  = "model/gltf-binary"
	contentTypeGLTF = "model/gltf+json"

	cacheControl = "max-age=31536000"
)

var extensions = map[string]string{
	contentTypeJPEG: "jpg",
	contentTypePNG:  "png",
	contentTypeWEBP: "webp",
	contentTypeGIF:  "gif",
	contentTypeMP4:  "mp4",
	contentTypeWEBM: "webm",
	contentTypeGLB:  "glb",
	contentTypeGLTF: "gltf",
}

func fileExtensionFromContentType(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	parts := strings.Split(contentType, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return contentType
}

// objectName returns name, or a fresh uuid when name is blank.
func objectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.NewString()
	}
	return name
}

func (b *Bucket) constructFullPath(folder, fileName, ext string) string {
	return path.Clean(path.Join(b.BaseFolder, folder, fileName) + "." + ext)
}

func (b *Bucket) getCDNURL(filePath string) string {
	if b.SubdomainEndpoint != "" {
		return fmt.Sprintf("https://%s/%s", b.SubdomainEndpoint, filePath)
	}
	return fmt.Sprintf("https://%s.%s/%s", b.S3BucketName, b.S3Endpoint, filePath)
}

// putPublic uploads a public, long cached object and returns its key and etag.
func (b *Bucket) putPublic(ctx context.Context, key string, data []byte, contentType string) (minio.UploadInfo, error) {
	ui, err := b.cli.PutObject(ctx, b.S3BucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		return ui, fmt.Errorf("error putting object %s: %w", key, err)
	}
	return ui, nil
}
