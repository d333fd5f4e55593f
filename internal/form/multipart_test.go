package form

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/media/videos", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestReadUploadFiles(t *testing.T) {
	r := multipartRequest(t, FilesField, map[string]string{"clip.mp4": "video bytes"})
	files, err := ReadUploadFiles(httptest.NewRecorder(), r, MaxMultipartBody)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "clip.mp4", files[0].Name)
	assert.Equal(t, "application/octet-stream", files[0].ContentType)
	assert.Equal(t, []byte("video bytes"), files[0].Data)

	t.Run("other fields are ignored", func(t *testing.T) {
		r := multipartRequest(t, "attachments", map[string]string{"clip.mp4": "video bytes"})
		files, err := ReadUploadFiles(httptest.NewRecorder(), r, MaxMultipartBody)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("not multipart", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/media/videos", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		_, err := ReadUploadFiles(httptest.NewRecorder(), r, MaxMultipartBody)
		assert.Equal(t, http.StatusBadRequest, gerr.Status(err))
	})

	t.Run("body over the cap", func(t *testing.T) {
		r := multipartRequest(t, FilesField, map[string]string{"clip.mp4": strings.Repeat("x", 4096)})
		_, err := ReadUploadFiles(httptest.NewRecorder(), r, 1024)
		assert.Error(t, err)
	})
}
