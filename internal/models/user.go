// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

// UserIn is the registration payload.
type UserIn struct {
	Username    string  `json:"username" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	FullName    *string `json:"full_name"`
	RawPassword string  `json:"raw_password" validate:"required"`
}

// UserOut is a user as returned to clients.
type UserOut struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// UserInDB is a user as persisted.
type UserInDB struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FullName       *string `json:"full_name"`
	HashedPassword string  `json:"hashed_password"`
}

// Out drops the password hash.
func (u UserInDB) Out() UserOut {
	return UserOut{Username: u.Username, Email: u.Email, FullName: u.FullName}
}
