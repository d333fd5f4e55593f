package entity

// Admin is a row of the admins table.
type Admin struct {
	ID           int    `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}
