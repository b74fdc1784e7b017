package model

import "time"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expiresIn"`
	Account   Account `json:"account"`
}

type AuthConfigResponse struct {
	AllowSignup bool `json:"allowSignup"`
}

type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthUser is the identity attached to a request after token verification.
type AuthUser struct {
	ID       int64
	Username string
}

// User is the stored account row. PasswordHash is an Argon2id verifier in
// PHC string format; the plaintext password is never persisted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
