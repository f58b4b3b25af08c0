package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/service"
)

const (
	AuthHeaderKey  = "Authorization"
	AuthContextKey = "auth"
)

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token claims on the context.
func AuthMiddleware(validator TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader(AuthHeaderKey), "Bearer ")
		if !ok || token == "" {
			message := "Missing authorization header"
			if c.GetHeader(AuthHeaderKey) != "" {
				message = "Invalid authorization header format. Expected 'Bearer <token>'"
			}
			logger.WarnContext(c.Request.Context(), "unauthorized access - missing token",
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)
			abortUnauthorized(c, message)
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "unauthorized access - invalid token",
				"error", err,
				"request_id", GetRequestID(c),
			)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthContextKey, claims)
		c.Next()
	}
}

// RequireScope lets a request through only when the claims stored by
// AuthMiddleware grant scope. It must run after AuthMiddleware.
func RequireScope(scope domain.Scope, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			abortUnauthorized(c, "Missing authorization header")
			return
		}

		if !claims.Scopes().Allows(scope) {
			logger.WarnContext(c.Request.Context(), "forbidden - scope not granted",
				"subject", claims.Subject,
				"required_scope", scope,
				"granted_scope", claims.Scope,
				"request_id", GetRequestID(c),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: fmt.Sprintf("Token lacks the %s scope", scope),
				Code:    http.StatusForbidden,
			})
			return
		}

		c.Next()
	}
}

// GetAuthClaims retrieves auth claims from context
func GetAuthClaims(c *gin.Context) (*service.TokenClaims, bool) {
	claims, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}

	tokenClaims, ok := claims.(*service.TokenClaims)
	return tokenClaims, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
		Code:    http.StatusUnauthorized,
	})
}
