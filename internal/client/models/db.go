// Package models defines the client-side data models of the credential store.
package models

import "time"

// SealedRow is one encrypted row as it sits in SQLite. Key is either a
// credential lookup key or a metadata key; the plaintext behind Ciphertext
// is only visible to the store.
type SealedRow struct {
	Key        string
	Nonce      []byte
	Ciphertext []byte
}

// CredentialRecord is the decrypted credential of one identity.
type CredentialRecord struct {
	ID           string    `json:"id"`
	Identity     string    `json:"identity"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	HashVersion  int       `json:"hash_version"`
	CreatedAt    time.Time `json:"created_at"`
}
