package form

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

// GeneralSection validates the fields every content entity shares.
type GeneralSection struct {
	*entity.GeneralSection
}

func (f *GeneralSection) Validate() error {
	if f == nil || f.GeneralSection == nil {
		return gerr.BadRequest("request is nil")
	}
	return ValidateStruct(f.GeneralSection,
		v.Field(&f.Title, v.Required, v.Length(1, 255)),
		v.Field(&f.Slug, v.Length(0, 255)),
		v.Field(&f.FIndex, v.Min(0)),
	)
}

// ValidateContent checks the shared general section and then the entity's own
// struct tags.
func ValidateContent(c entity.Content) error {
	g := c.GeneralSection()
	if err := (&GeneralSection{GeneralSection: &g}).Validate(); err != nil {
		return err
	}
	if err := entity.ValidateContent(c); err != nil {
		return gerr.BadRequest(err.Error())
	}
	return nil
}
