package form

import (
	"io"
	"net/http"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

const (
	// FilesField is the multipart field carrying video and 3D files.
	FilesField = "files"

	MaxMultipartBody = 4 * MaxUploadFileSize
	multipartMemory  = 32 << 20
)

// ReadUploadFiles reads the files of a multipart upload. The body is capped at
// maxBody bytes. An upload without files returns an empty slice; UploadFilesRequest
// rejects it.
func ReadUploadFiles(w http.ResponseWriter, r *http.Request, maxBody int64) ([]dto.UploadFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, gerr.BadRequest("malformed multipart body")
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[FilesField]
	files := make([]dto.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, dto.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
