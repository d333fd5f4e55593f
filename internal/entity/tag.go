package entity

type Tag struct {
	ID    int    `db:"id" json:"id,omitempty"`
	Title string `db:"title" json:"title"`
}
