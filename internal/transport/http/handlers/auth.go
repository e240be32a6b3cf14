package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thriftr-app/thriftr/internal/usecase"
)

// AuthHandler exposes registration and token issuance endpoints.
type AuthHandler struct {
	registration *usecase.RegistrationService
	auth         *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(registration *usecase.RegistrationService, auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the abuse-prone endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares, loginMiddlewares []gin.HandlerFunc) {
	r.POST("/register", append(append([]gin.HandlerFunc{}, registerMiddlewares...), h.Register)...)
	r.POST("/token", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.Token)...)
}

// Register creates a new account from the supplied credentials.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	account, err := h.registration.RegisterAccount(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(c, err.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict},
			{Err: usecase.ErrStoreUnavailable, Status: http.StatusServiceUnavailable, Message: "account creation failed, try again later"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{
		Registered: true,
		Username:   account.Username,
	})
}

// Token authenticates the supplied credentials and issues a bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(c, err.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized},
		}, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
