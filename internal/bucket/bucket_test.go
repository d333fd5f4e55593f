package bucket

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedObject struct {
	data        []byte
	contentType string
}

// fakeClient keeps objects in memory and tags them with an md5 etag, as S3 does
// for single part uploads.
type fakeClient struct {
	mu        sync.Mutex
	objects   map[string]storedObject
	putErr    error
	removeErr map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: map[string]storedObject{}}
}

func (f *fakeClient) PutObject(_ context.Context, _, name string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = storedObject{data: data, contentType: opts.ContentType}
	sum := md5.Sum(data)
	return minio.UploadInfo{Key: name, ETag: hex.EncodeToString(sum[:])}, nil
}

func (f *fakeClient) RemoveObjects(_ context.Context, _ string, ch <-chan minio.ObjectInfo, _ minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	out := make(chan minio.RemoveObjectError, len(ch))
	for o := range ch {
		if err, ok := f.removeErr[o.Key]; ok {
			out <- minio.RemoveObjectError{ObjectName: o.Key, Err: err}
			continue
		}
		f.mu.Lock()
		delete(f.objects, o.Key)
		f.mu.Unlock()
	}
	close(out)
	return out
}

func (f *fakeClient) ListObjects(_ context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(chan minio.ObjectInfo, len(f.objects))
	for k, o := range f.objects {
		sum := md5.Sum(o.data)
		out <- minio.ObjectInfo{Key: k, ETag: `"` + hex.EncodeToString(sum[:]) + `"`, LastModified: time.Unix(1, 0)}
	}
	close(out)
	return out
}

func testBucket() (*Bucket, *fakeClient) {
	cli := newFakeClient()
	return newBucket(cli, &Config{
		S3BucketName:      "labguy",
		S3Endpoint:        "fra1.digitaloceanspaces.com",
		BaseFolder:        "site",
		SubdomainEndpoint: "files.example.com",
		ThumbnailWidth:    16,
	}), cli
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUploadContentImage(t *testing.T) {
	b, cli := testBucket()
	ctx := context.Background()

	raw := pngDataURL(t, 64, 32)
	m, err := b.UploadContentImage(ctx, raw, "works", "sunset")
	require.NoError(t, err)

	assert.Equal(t, entity.MediaImage, m.Kind)
	assert.Equal(t, "https://files.example.com/site/works/sunset-og.png", m.URL)
	assert.Equal(t, "https://files.example.com/site/works/sunset-thumb.jpg", m.ThumbnailURL)
	assert.Equal(t, "image/png", m.MimeType)
	assert.Equal(t, 64, m.Width)
	assert.Equal(t, 32, m.Height)
	assert.NotEmpty(t, m.BlurHash)
	assert.NotEmpty(t, m.Etag)

	require.Contains(t, cli.objects, "site/works/sunset-og.png")
	thumb, _, err := image.Decode(bytes.NewReader(cli.objects["site/works/sunset-thumb.jpg"].data))
	require.NoError(t, err)
	assert.Equal(t, 16, thumb.Bounds().Dx())
	assert.Equal(t, 8, thumb.Bounds().Dy())

	t.Run("same content yields the same etag", func(t *testing.T) {
		again, err := b.UploadContentImage(ctx, raw, "works", "")
		require.NoError(t, err)
		assert.Equal(t, m.Etag, again.Etag)
		assert.NotEqual(t, m.URL, again.URL)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := b.UploadContentImage(ctx, "data:text/plain;base64,"+base64.StdEncoding.EncodeToString([]byte("hello")), "works", "x")
		assert.Error(t, err)
	})

	t.Run("rejects malformed data url", func(t *testing.T) {
		_, err := b.UploadContentImage(ctx, "data:image/png,abc", "works", "x")
		assert.Error(t, err)
	})

	t.Run("put failure", func(t *testing.T) {
		cli.putErr = errors.New("boom")
		defer func() { cli.putErr = nil }()
		_, err := b.UploadContentImage(ctx, raw, "works", "y")
		assert.Error(t, err)
	})
}

var (
	mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2mp41")
	glbHeader = []byte("glTF\x02\x00\x00\x00\x14\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
)

func TestUploadContentVideoAndThreeD(t *testing.T) {
	b, cli := testBucket()
	ctx := context.Background()

	v, err := b.UploadContentVideo(ctx, mp4Header, "works", "clip", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, entity.MediaVideo, v.Kind)
	assert.Equal(t, "https://files.example.com/site/works/clip.mp4", v.URL)
	assert.NotEmpty(t, v.Etag)
	assert.Equal(t, "video/mp4", cli.objects["site/works/clip.mp4"].contentType)

	_, err = b.UploadContentVideo(ctx, glbHeader, "works", "clip", "video/mp4")
	assert.Error(t, err)

	o, err := b.UploadContentThreeD(ctx, glbHeader, "works", "model")
	require.NoError(t, err)
	assert.Equal(t, entity.MediaThreeD, o.Kind)
	assert.Equal(t, "https://files.example.com/site/works/model.glb", o.URL)

	_, err = b.UploadContentThreeD(ctx, mp4Header, "works", "model")
	assert.Error(t, err)
}

func TestListAndDelete(t *testing.T) {
	b, cli := testBucket()
	ctx := context.Background()

	_, err := b.UploadContentImage(ctx, pngDataURL(t, 8, 8), "posts", "a")
	require.NoError(t, err)
	_, err = b.UploadContentVideo(ctx, mp4Header, "posts", "b", "")
	require.NoError(t, err)

	list, err := b.ListObjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	kinds := map[entity.MediaKind]bool{}
	for _, m := range list {
		kinds[m.Kind] = true
		assert.NotContains(t, m.Etag, `"`)
	}
	assert.True(t, kinds[entity.MediaImage])
	assert.True(t, kinds[entity.MediaVideo])

	cli.removeErr = map[string]error{"site/posts/b.mp4": errors.New("denied")}
	err = b.DeleteFromBucket(ctx, []string{"site/posts/a-og.png", "site/posts/b.mp4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site/posts/b.mp4")
	assert.NotContains(t, cli.objects, "site/posts/a-og.png")
	assert.Contains(t, cli.objects, "site/posts/b.mp4")
}
