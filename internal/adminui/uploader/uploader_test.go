package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jakubkanna/labguy-manager/internal/medialist"
	"github.com/jakubkanna/labguy-manager/internal/metrics"
	"github.com/jakubkanna/labguy-manager/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent png
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII=")

type uploaderMock struct {
	mock.Mock
	loading *session.Loading
	sawBusy bool
}

func (m *uploaderMock) UploadImages(ctx context.Context, token string, images []string) ([]entity.Media, error) {
	m.sawBusy = m.loading.Active()
	args := m.Called(ctx, token, images)
	list, _ := args.Get(0).([]entity.Media)
	return list, args.Error(1)
}

func (m *uploaderMock) UploadVideos(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error) {
	m.sawBusy = m.loading.Active()
	args := m.Called(ctx, token, files)
	list, _ := args.Get(0).([]entity.Media)
	return list, args.Error(1)
}

func (m *uploaderMock) UploadThreeD(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error) {
	m.sawBusy = m.loading.Active()
	args := m.Called(ctx, token, files)
	list, _ := args.Get(0).([]entity.Media)
	return list, args.Error(1)
}

func fullSession(images, threeD bool) session.Session {
	return session.Session{
		Token:       "tok",
		Preferences: &entity.Preferences{EnableImages: images, Enable3D: threeD},
		Loading:     &session.Loading{},
	}
}

func TestAffordances(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		images  bool
		threeD  bool
		want    []Affordance
	}{
		{
			name:    "all kinds",
			variant: AllKinds,
			images:  true,
			threeD:  false,
			want: []Affordance{
				{Kind: entity.MediaImage, Label: "Upload New Images", Enabled: true},
				{Kind: entity.MediaVideo, Label: "Upload New Video", Enabled: true},
				{Kind: entity.MediaThreeD, Label: "Upload New 3D Object", Enabled: false},
			},
		},
		{
			name:    "image variant",
			variant: entity.MediaImage,
			images:  false,
			want: []Affordance{
				{Kind: entity.MediaImage, Label: "Upload New Images", Enabled: false},
			},
		},
		{
			name:    "video variant",
			variant: entity.MediaVideo,
			want: []Affordance{
				{Kind: entity.MediaVideo, Label: "Upload New Video", Enabled: true},
			},
		},
		{
			name:    "3d variant shows images video and 3d",
			variant: entity.MediaThreeD,
			images:  true,
			threeD:  true,
			want: []Affordance{
				{Kind: entity.MediaImage, Label: "Upload New Images", Enabled: true},
				{Kind: entity.MediaVideo, Label: "Upload New Video", Enabled: true},
				{Kind: entity.MediaThreeD, Label: "Upload New 3D Object", Enabled: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(fullSession(tt.images, tt.threeD), tt.variant, &uploaderMock{}, medialist.NewList(nil), nil)
			assert.True(t, c.Visible())
			assert.Equal(t, tt.want, c.Affordances())
		})
	}
}

func TestFailsClosed(t *testing.T) {
	for _, sess := range []session.Session{
		{},
		{Token: "tok"},
		{Preferences: &entity.Preferences{EnableImages: true}},
	} {
		c := New(sess, AllKinds, &uploaderMock{}, medialist.NewList(nil), nil)
		assert.False(t, c.Visible())
		assert.Empty(t, c.Affordances())
		assert.ErrorIs(t, c.Open(entity.MediaVideo), ErrNoSession)
		_, err := c.Upload(context.Background(), entity.MediaVideo, nil)
		assert.ErrorIs(t, err, ErrNoSession)
	}
}

func TestDialog(t *testing.T) {
	c := New(fullSession(true, false), AllKinds, &uploaderMock{}, medialist.NewList(nil), nil)
	assert.Equal(t, DialogNone, c.Dialog())

	require.NoError(t, c.Open(entity.MediaImage))
	assert.Equal(t, DialogImage, c.Dialog())

	require.NoError(t, c.Open(entity.MediaVideo))
	assert.Equal(t, DialogVideo, c.Dialog())

	assert.ErrorIs(t, c.Open(entity.MediaThreeD), ErrUnavailable)
	assert.Equal(t, DialogVideo, c.Dialog())

	c.Close()
	assert.Equal(t, DialogNone, c.Dialog())
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("merges the batch and records metrics", func(t *testing.T) {
		sess := fullSession(true, true)
		up := &uploaderMock{loading: sess.Loading}
		list := medialist.NewList([]entity.Media{{ID: 1, Etag: "a"}})
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		c := New(sess, AllKinds, up, list, m)

		up.On("UploadImages", ctx, "tok", mock.MatchedBy(func(images []string) bool {
			return len(images) == 1 && strings.HasPrefix(images[0], "data:image/png;base64,")
		})).Return([]entity.Media{{ID: 2, Etag: "b"}, {ID: 3, Etag: "a"}}, nil).Once()

		items, err := c.Upload(ctx, entity.MediaImage, []dto.UploadFile{{Name: "p.png", Data: pngPixel}})
		require.NoError(t, err)
		assert.Equal(t, []entity.Media{{ID: 2, Etag: "b"}, {ID: 1, Etag: "a"}}, items)
		assert.Equal(t, items, list.Items())
		assert.True(t, up.sawBusy)
		assert.False(t, sess.Loading.Active())

		expected := `
# HELP media_deduplicated_total Uploaded media records dropped because their etag was already listed.
# TYPE media_deduplicated_total counter
media_deduplicated_total{kind="IMAGE"} 1
# HELP media_uploaded_total Media records added to a list after an upload.
# TYPE media_uploaded_total counter
media_uploaded_total{kind="IMAGE"} 1
`
		assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "media_uploaded_total", "media_deduplicated_total"))
		up.AssertExpectations(t)
	})

	t.Run("failure leaves the list alone", func(t *testing.T) {
		sess := fullSession(true, true)
		up := &uploaderMock{loading: sess.Loading}
		list := medialist.NewList([]entity.Media{{ID: 1, Etag: "a"}})
		c := New(sess, AllKinds, up, list, nil)
		boom := errors.New("boom")
		files := []dto.UploadFile{{Name: "m.glb", Data: []byte("glTF")}}
		up.On("UploadThreeD", ctx, "tok", files).Return(nil, boom).Once()

		_, err := c.Upload(ctx, entity.MediaThreeD, files)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, list.Len())
		assert.False(t, sess.Loading.Active())
	})

	t.Run("disabled kind is refused", func(t *testing.T) {
		c := New(fullSession(false, false), AllKinds, &uploaderMock{}, medialist.NewList(nil), nil)
		_, err := c.Upload(ctx, entity.MediaImage, []dto.UploadFile{{Name: "p.png", Data: pngPixel}})
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("nil loading is fine", func(t *testing.T) {
		sess := session.Session{Token: "tok", Preferences: &entity.Preferences{}}
		up := &uploaderMock{}
		files := []dto.UploadFile{{Name: "v.mp4", ContentType: "video/mp4", Data: []byte("v")}}
		up.On("UploadVideos", ctx, "tok", files).Return([]entity.Media{{ID: 9, Etag: "v"}}, nil).Once()
		c := New(sess, entity.MediaVideo, up, medialist.NewList(nil), nil)

		items, err := c.Upload(ctx, entity.MediaVideo, files)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
