package models

import "time"

// User is the gateway-side account. PasswordHash and Salt come from
// cryptox.Hasher; HashVersion names the parameters they were made with.
type User struct {
	ID           string    `db:"id"`
	Identity     string    `db:"identity"`
	Salt         []byte    `db:"salt"`
	PasswordHash string    `db:"password_hash"`
	HashVersion  int       `db:"hash_version"`
	CreatedAt    time.Time `db:"created_at"`
}
