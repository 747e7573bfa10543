package model

import "time"

const (
	TableName  = "users"
	EntityName = "user"

	FieldID       = "id"
	FieldUsername = "username"
	FieldIsAdmin  = "is_admin"
)

// User is provisioned by the identity provider. The booking engine only reads it.
type User struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
}
