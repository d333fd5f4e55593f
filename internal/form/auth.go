package form

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

type LoginRequest struct {
	*dto.LoginRequest
}

func (f *LoginRequest) Validate() error {
	if f == nil || f.LoginRequest == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f.LoginRequest,
		v.Field(&f.Username, v.Required),
		v.Field(&f.Password, v.Required),
	)
}

type CreateAdminRequest struct {
	*dto.CreateAdminRequest
}

func (f *CreateAdminRequest) Validate() error {
	if f == nil || f.CreateAdminRequest == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f.CreateAdminRequest,
		v.Field(&f.MasterPassword, v.Required),
		v.Field(&f.Username, v.Required, v.Length(3, 64), is.PrintableASCII),
		v.Field(&f.Password, v.Required, v.Length(8, 128)),
	)
}
