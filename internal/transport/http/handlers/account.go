package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thriftr-app/thriftr/internal/transport/http/middleware"
	"github.com/thriftr-app/thriftr/internal/usecase"
)

// AccountHandler exposes the authenticated account endpoints.
type AccountHandler struct {
	accounts *usecase.AccountService
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes binds the current-account endpoints behind the auth middleware.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	authRequired := middleware.RequireAuth(h.accounts)
	r.GET("/current_user", authRequired, h.CurrentAccount)
	r.DELETE("/current_user", authRequired, h.DeleteAccount)
}

// CurrentAccount returns the caller's account projection. The password
// hash never appears in the response.
func (h *AccountHandler) CurrentAccount(c *gin.Context) {
	account, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(account))
}

// DeleteAccount irrevocably removes the caller's account. Previously
// issued tokens stop validating once the row is gone.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	account, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, usecase.ErrInvalidCredentials.Error()))
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), account); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDeletionFailed, Status: http.StatusInternalServerError},
		}, http.StatusInternalServerError, "failed to delete account")
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Message:  "account deleted",
		Username: account.Username,
	})
}
