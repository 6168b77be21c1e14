// Package models holds the server-side records shared by repositories and
// services.
package models

import (
	"strings"
	"time"
)

// User is a stored account. Email is kept normalized (see NormalizeEmail);
// PasswordHash and Salt are opaque outputs of the password hasher.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Salt         []byte
	Name         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy so callers cannot alias stored byte slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.Salt = append([]byte(nil), u.Salt...)
	return &c
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter narrows a user listing. Email and Name are case-insensitive
// substring matches; empty values match everything.
type UserFilter struct {
	Limit  int
	Offset int
	Email  string
	Name   string
}
