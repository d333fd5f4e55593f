package entity

import (
	"fmt"
	"time"
)

type MediaKind string

const (
	MediaImage  MediaKind = "IMAGE"
	MediaVideo  MediaKind = "VIDEO"
	MediaThreeD MediaKind = "THREE_D"
)

// MediaKinds lists every kind in display order.
var MediaKinds = []MediaKind{MediaImage, MediaVideo, MediaThreeD}

func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(s); k {
	case MediaImage, MediaVideo, MediaThreeD:
		return k, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// Media references an uploaded asset. Etag is the content fingerprint reported by the
// object store and is the identity used to detect duplicate uploads.
type Media struct {
	ID           int       `db:"id" json:"id,omitempty"`
	Etag         string    `db:"etag" json:"etag,omitempty"`
	Kind         MediaKind `db:"kind" json:"kind" valid:"in(IMAGE|VIDEO|THREE_D)"`
	URL          string    `db:"url" json:"url"`
	ThumbnailURL string    `db:"thumbnail" json:"thumbnail,omitempty"`
	MimeType     string    `db:"mime_type" json:"mimeType,omitempty"`
	Width        int       `db:"width" json:"width,omitempty"`
	Height       int       `db:"height" json:"height,omitempty"`
	BlurHash     string    `db:"blur_hash" json:"blurHash,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// FilterMediaKind returns the records of the given kind, preserving order.
func FilterMediaKind(ms []Media, kind MediaKind) []Media {
	out := make([]Media, 0, len(ms))
	for _, m := range ms {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
