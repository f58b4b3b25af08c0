package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	token  string
	claims *service.TokenClaims
}

func (v stubValidator) ValidateToken(tokenString string) (*service.TokenClaims, error) {
	if tokenString != v.token {
		return nil, errors.New("bad token")
	}
	return v.claims, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	claims := &service.TokenClaims{
		SubjectType:      service.SubjectUser,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
	}

	router := gin.New()
	router.Use(AuthMiddleware(stubValidator{token: "good", claims: claims}, discardLogger()))
	router.GET("/secure", func(c *gin.Context) {
		got, ok := GetAuthClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.Subject)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "admin"},
		{"missing header", "", http.StatusUnauthorized, "Missing authorization header"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "Expected 'Bearer <token>'"},
		{"bad token", "Bearer bad", http.StatusUnauthorized, "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := serve(router, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := stubValidator{token: "good", claims: &service.TokenClaims{Scope: "clients:write"}}

	router := gin.New()
	secured := router.Group("", AuthMiddleware(validator, discardLogger()))
	secured.GET("/clients", RequireScope(domain.ScopeClientsRead, discardLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })
	secured.GET("/credentials", RequireScope(domain.ScopeCredentialsManage, discardLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	// Without AuthMiddleware there are no claims to check
	router.GET("/bare", RequireScope(domain.ScopeClientsRead, discardLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"write implies read", "/clients", http.StatusOK},
		{"missing scope", "/credentials", http.StatusForbidden},
		{"no claims", "/bare", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(AuthHeaderKey, "Bearer good")
			w := serve(router, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(router, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil))))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(router, httptest.NewRequest(http.MethodGet, "/missing", nil))

	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "path=/missing")
	assert.Contains(t, line, "status=404")
}

func TestErrorHandlerMiddleware_RecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example.com"}))
	router.GET("/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(router, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Total-Count")

	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(router, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
