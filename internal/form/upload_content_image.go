package form

import (
	"encoding/base64"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

type UploadImagesRequest struct {
	*dto.UploadImagesRequest
}

// maxImagesPerBatch bounds a single upload request.
const maxImagesPerBatch = 20

var validateRawB64Image = v.NewStringRuleWithError(
	func(value string) bool {
		imageParts := strings.SplitN(value, ",", 2)
		if len(imageParts) != 2 || !strings.HasPrefix(imageParts[0], "data:image/") {
			return false
		}
		_, err := base64.StdEncoding.DecodeString(imageParts[1])
		return err == nil
	}, v.ErrInInvalid.SetMessage("invalid base64 image"),
)

func (f *UploadImagesRequest) Validate() error {
	if f == nil || f.UploadImagesRequest == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f.UploadImagesRequest,
		v.Field(&f.Images, v.Required, v.Length(1, maxImagesPerBatch), v.Each(v.Required, validateRawB64Image)),
	)
}
