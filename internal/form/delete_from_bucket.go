package form

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

type DeleteFromBucketRequest struct {
	*dto.DeleteFromBucketRequest
}

func (f *DeleteFromBucketRequest) Validate() error {
	if f == nil || f.DeleteFromBucketRequest == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f.DeleteFromBucketRequest,
		v.Field(&f.ObjectKeys, v.Required, v.Each(v.Required)),
	)
}
