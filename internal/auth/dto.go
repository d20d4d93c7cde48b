package auth

import "github.com/fkhayef/divvy/internal/user"

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request to log in. Either username or email
// may carry the identifier.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the authenticated user
type LoginResponse struct {
	Token string             `json:"token"`
	User  *user.UserResponse `json:"user"`
}
