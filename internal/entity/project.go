package entity

import (
	"database/sql"
	"time"
)

// Project groups works shown together, e.g. an exhibition.
type Project struct {
	Base
	Venue     string     `json:"venue,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Images    []Media    `json:"images,omitzero"`
	Videos    []Media    `json:"videos,omitzero"`
	Works     []Work     `json:"works,omitzero"`
}

func NewProject(g GeneralSection) Project {
	return Project{Base: Base{General: g}}
}

type ProjectRow struct {
	ID        int          `db:"id"`
	GeneralID int          `db:"general_id"`
	Venue     string       `db:"venue"`
	StartDate sql.NullTime `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`
}

// NullTime converts an optional time into its column value.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr converts a column value into an optional time.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
