package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the bearer token and resolves it to an account,
// which is stored in the request context. Every failure collapses into
// the same unauthorized response.
func RequireAuth(accounts *usecase.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
			return
		}

		account, err := accounts.CurrentAccount(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(AccountKey, account)

		c.Next()
	}
}

// GetAccount retrieves the authenticated account placed by RequireAuth.
func GetAccount(c *gin.Context) (domain.Account, bool) {
	value, exists := c.Get(AccountKey)
	if !exists {
		return domain.Account{}, false
	}
	account, ok := value.(domain.Account)
	return account, ok
}
