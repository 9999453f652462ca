package models

import "time"

// User is an account that owns records.
type User struct {
	// UserID is the internal identifier; it doubles as the owner id of records.
	UserID int64 `json:"-"`

	Login string `json:"login"`

	// Password is only accepted on input and never written back.
	Password string `json:"password,omitempty"`

	// PasswordHash is the encoded argon2id hash, server side only.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// Session is the client-side authentication state persisted next to the
// local cache.
type Session struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Token  string `json:"token"`
}

// Valid reports whether the session carries a usable token.
func (s Session) Valid() bool {
	return s.Token != ""
}
