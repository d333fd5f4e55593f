package entity

import "time"

// Preferences are site-wide feature flags toggled from the admin.
type Preferences struct {
	EnableImages bool      `db:"enable_images" json:"enable_images"`
	Enable3D     bool      `db:"enable_3d" json:"enable_3D"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultPreferences mirrors the defaults of a fresh database.
func DefaultPreferences() Preferences {
	return Preferences{EnableImages: true}
}
