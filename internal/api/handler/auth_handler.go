package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/service"
)

const (
	grantAuthorizationCode = "authorization_code"
	grantClientCredentials = "client_credentials"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Authorize handles POST /auth/authorize
func (h *AuthHandler) Authorize(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	scopes, err := domain.ParseScopes(req.Scope)
	if err != nil {
		writeError(c, h.logger, "Invalid scope", err)
		return
	}

	authCode, err := h.authService.Authorize(c.Request.Context(), req.Username, req.Password, scopes)
	if err != nil {
		h.authError(c, err, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, dto.AuthorizeResponse{
		Code:  authCode.Code,
		Scope: authCode.Scopes.String(),
	})
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var token *service.AccessToken
	var err error

	switch req.GrantType {
	case grantAuthorizationCode:
		if req.Code == "" {
			badRequest(c, "code is required for authorization_code grant type")
			return
		}
		token, err = h.authService.ExchangeAuthCode(c.Request.Context(), req.Code)
		if err != nil {
			h.authError(c, err, "Invalid or expired authorization code")
			return
		}

	case grantClientCredentials:
		if req.ClientID == "" || req.ClientSecret == "" {
			badRequest(c, "client_id and client_secret are required for client_credentials grant type")
			return
		}
		scopes, parseErr := domain.ParseScopes(req.Scope)
		if parseErr != nil {
			writeError(c, h.logger, "Invalid scope", parseErr)
			return
		}
		token, err = h.authService.AuthenticateCredential(c.Request.Context(), req.ClientID, req.ClientSecret, scopes)
		if err != nil {
			h.authError(c, err, "Invalid client credentials")
			return
		}

	default:
		badRequest(c, "Invalid grant_type. Must be 'authorization_code' or 'client_credentials'")
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn(time.Now()),
		Scope:       token.Scopes.String(),
	})
}

// authError answers 401 for rejected credentials, 400 for a scope the
// credential does not hold and 500 for anything else
func (h *AuthHandler) authError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: message,
			Code:    http.StatusUnauthorized,
		})
	case errors.Is(err, service.ErrScopeNotGranted):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Requested scope exceeds the credential's scopes",
			Code:    http.StatusBadRequest,
			Field:   "scope",
		})
	default:
		internalError(c, h.logger, "Authentication failed", err)
	}
}
