package entity

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// ContentKind names a content resource. The value doubles as the resource path segment.
type ContentKind string

const (
	KindWorks    ContentKind = "works"
	KindProjects ContentKind = "projects"
	KindPosts    ContentKind = "posts"
)

var contentKinds = map[ContentKind]bool{
	KindWorks:    true,
	KindProjects: true,
	KindPosts:    true,
}

// ParseContentKind validates a resource path segment.
func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(s)
	if !contentKinds[k] {
		return "", fmt.Errorf("unknown content kind %q", s)
	}
	return k, nil
}

func (k ContentKind) String() string {
	return string(k)
}

// Content is implemented by every entity listed in the admin tables.
type Content interface {
	EntityID() int
	GeneralSectionID() (int, bool)
	GeneralSection() GeneralSection
}

// Base carries the fields shared by works, projects and posts.
type Base struct {
	ID        int            `json:"id,omitempty"`
	GeneralID *int           `json:"generalId,omitempty"`
	General   GeneralSection `json:"general"`
}

func (b Base) EntityID() int {
	return b.ID
}

// GeneralSectionID returns the id of the general section and whether it is defined.
func (b Base) GeneralSectionID() (int, bool) {
	if b.GeneralID == nil {
		return 0, false
	}
	return *b.GeneralID, true
}

func (b Base) GeneralSection() GeneralSection {
	return b.General
}

// ValidateContent validates struct tags of any content entity.
func ValidateContent(c any) error {
	_, err := govalidator.ValidateStruct(c)
	return err
}

// IntPtr is a helper for optional ids.
func IntPtr(i int) *int {
	return &i
}
