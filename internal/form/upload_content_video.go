package form

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

// MaxUploadFileSize caps a single video or 3D file.
const MaxUploadFileSize = 200 << 20

// UploadFilesRequest validates the files of a multipart video or 3D upload.
type UploadFilesRequest struct {
	Files []dto.UploadFile
}

func (f *UploadFilesRequest) Validate() error {
	if f == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f,
		v.Field(&f.Files, v.Required, v.Each(v.By(validateUploadFile))),
	)
}

func validateUploadFile(value interface{}) error {
	file, ok := value.(dto.UploadFile)
	if !ok {
		return v.NewError("validation_invalid_file", "must be a file")
	}
	return v.ValidateStruct(&file,
		v.Field(&file.Name, v.Required),
		v.Field(&file.Data, v.Required, v.Length(1, MaxUploadFileSize)),
	)
}
