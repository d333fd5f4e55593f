package entity

// Work is a single piece: an artwork with its media and the projects it appeared in.
type Work struct {
	Base
	Medium     string    `json:"medium,omitempty"`
	Dimensions string    `json:"dimensions,omitempty"`
	Year       int       `json:"year,omitempty" valid:"range(0|9999)"`
	Images     []Media   `json:"images,omitzero"`
	Videos     []Media   `json:"videos,omitzero"`
	ThreeD     []Media   `json:"threed,omitzero"`
	Projects   []Project `json:"projects,omitzero"`
}

// NewWork returns a work carrying only the given general section.
func NewWork(g GeneralSection) Work {
	return Work{Base: Base{General: g}}
}

// WorkRow is the works table row.
type WorkRow struct {
	ID         int    `db:"id"`
	GeneralID  int    `db:"general_id"`
	Medium     string `db:"medium"`
	Dimensions string `db:"dimensions"`
	Year       int    `db:"year"`
}
