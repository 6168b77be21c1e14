package authrpc

import "time"

type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Identity  `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Session Session `json:"session"`
}

type MeRequest struct{}

type MeResponse struct {
	User      Identity  `json:"user"`
	ExpiresAt time.Time `json:"exp"`
}

// ResetPasswordRequest is sent with the current token in the authorization
// metadata.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordResponse struct {
	Session Session `json:"session"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
