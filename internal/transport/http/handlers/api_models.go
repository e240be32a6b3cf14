package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a successful registration. It echoes the
// username and nothing else about the credential.
type RegisterResponse struct {
	Registered bool   `json:"registered"`
	Username   string `json:"username"`
}

// LoginRequest defines the payload for token issuance. The username takes
// priority over the email when both are supplied; at least one is required.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AccountResponse is the outward projection of an account. The password
// hash is stripped before the account ever reaches a handler.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func newAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		IsActive: account.IsActive,
	}
}

// DeleteResponse confirms account removal, naming the deleted username.
type DeleteResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}
