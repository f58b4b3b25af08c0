package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/martijn/clientdesk/internal/infrastructure/sqlstore"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// testEnv holds all test dependencies
type testEnv struct {
	db                *sqlstore.DB
	router            *gin.Engine
	clientService     *service.ClientService
	authService       *service.AuthService
	clientHandler     *ClientHandler
	credentialHandler *CredentialHandler
	authHandler       *AuthHandler
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Use in-memory SQLite database
	db, err := sqlstore.New(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Create repositories
	clientRepo := sqlstore.NewClientRepository(db)
	credentialRepo := sqlstore.NewCredentialRepository(db)
	userRepo := sqlstore.NewUserRepository(db)
	authCodeRepo := sqlstore.NewAuthCodeRepository(db)

	// Create services
	clientService := service.NewClientService(clientRepo, logger)
	authService := service.NewAuthService(userRepo, credentialRepo, authCodeRepo, testJWTSecret, "HS256")

	// Create handlers
	clientHandler := NewClientHandler(clientService, logger)
	credentialHandler := NewCredentialHandler(authService, logger)
	authHandler := NewAuthHandler(authService, logger)

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Register routes without auth middleware
	clients := router.Group("/clients")
	{
		clients.GET("", clientHandler.ListClients)
		clients.POST("", clientHandler.CreateClient)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PUT("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)
		clients.GET("/cpf/:cpf", clientHandler.GetClientByCPF)
		clients.GET("/email/:email", clientHandler.GetClientByEmail)
	}

	credentials := router.Group("/credentials")
	{
		credentials.POST("", credentialHandler.CreateCredential)
		credentials.GET("", credentialHandler.ListCredentials)
		credentials.GET("/:id", credentialHandler.GetCredential)
		credentials.PUT("/:id", credentialHandler.UpdateCredential)
		credentials.DELETE("/:id", credentialHandler.DeleteCredential)
	}

	router.POST("/auth/authorize", authHandler.Authorize)
	router.POST("/auth/token", authHandler.Token)

	return &testEnv{
		db:                db,
		router:            router,
		clientService:     clientService,
		authService:       authService,
		clientHandler:     clientHandler,
		credentialHandler: credentialHandler,
		authHandler:       authHandler,
	}
}

// makeRequest performs a request with an optional JSON body
func (env *testEnv) makeRequest(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err, "failed to create request")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// createClient posts a client and returns the decoded response
func (env *testEnv) createClient(t *testing.T, name, cpf, email string) dto.ClientResponse {
	t.Helper()

	w := env.makeRequest(t, http.MethodPost, "/clients", map[string]string{
		"name":  name,
		"cpf":   cpf,
		"email": email,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return parseClientResponse(t, w)
}

func parseClientResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ClientResponse {
	t.Helper()

	var resp dto.ClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func parseClientList(t *testing.T, w *httptest.ResponseRecorder) []dto.ClientResponse {
	t.Helper()

	var resp []dto.ClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}
