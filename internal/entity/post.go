package entity

type Post struct {
	Base
	Content string  `json:"content,omitempty"`
	Images  []Media `json:"images,omitzero"`
	Videos  []Media `json:"videos,omitzero"`
}

func NewPost(g GeneralSection) Post {
	return Post{Base: Base{General: g}}
}

type PostRow struct {
	ID        int    `db:"id"`
	GeneralID int    `db:"general_id"`
	Content   string `db:"content"`
}
