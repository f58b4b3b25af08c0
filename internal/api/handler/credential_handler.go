package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/service"
)

type CredentialHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewCredentialHandler(authService *service.AuthService, logger *slog.Logger) *CredentialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialHandler{
		authService: authService,
		logger:      logger,
	}
}

// CreateCredential handles POST /credentials
func (h *CredentialHandler) CreateCredential(c *gin.Context) {
	var req dto.CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	scopes, err := domain.NewScopes(req.Scopes...)
	if err != nil {
		writeError(c, h.logger, "Invalid scopes", err)
		return
	}

	credential, secret, err := h.authService.CreateCredential(c.Request.Context(), req.Label, scopes)
	if err != nil {
		writeError(c, h.logger, "Failed to create credential", err)
		return
	}

	c.JSON(http.StatusCreated, dto.CredentialCreateResponse{
		CredentialResponse: toCredentialResponse(*credential),
		Secret:             secret,
	})
}

// GetCredential handles GET /credentials/:id
func (h *CredentialHandler) GetCredential(c *gin.Context) {
	credential, err := h.authService.GetCredential(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve credential", err)
		return
	}
	if credential == nil {
		credentialNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toCredentialResponse(*credential))
}

// ListCredentials handles GET /credentials
func (h *CredentialHandler) ListCredentials(c *gin.Context) {
	credentials, err := h.authService.ListCredentials(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve credentials", err)
		return
	}

	total := len(credentials)
	response := dto.CredentialListResponse{
		Items: make([]dto.CredentialResponse, total),
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       1,
			PerPage:    total,
			TotalPages: 1,
		},
	}
	for i, credential := range credentials {
		response.Items[i] = toCredentialResponse(credential)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateCredential handles PUT /credentials/:id
func (h *CredentialHandler) UpdateCredential(c *gin.Context) {
	var req dto.UpdateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Label == nil && len(req.Scopes) == 0 {
		badRequest(c, "Nothing to update: provide label or scopes")
		return
	}

	scopes, err := domain.NewScopes(req.Scopes...)
	if err != nil {
		writeError(c, h.logger, "Invalid scopes", err)
		return
	}

	credential, err := h.authService.UpdateCredential(c.Request.Context(), c.Param("id"), req.Label, scopes)
	if err != nil {
		writeError(c, h.logger, "Failed to update credential", err)
		return
	}
	if credential == nil {
		credentialNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toCredentialResponse(*credential))
}

// DeleteCredential handles DELETE /credentials/:id
func (h *CredentialHandler) DeleteCredential(c *gin.Context) {
	deleted, err := h.authService.DeleteCredential(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, h.logger, "Failed to delete credential", err)
		return
	}
	if !deleted {
		credentialNotFound(c)
		return
	}

	c.Status(http.StatusNoContent)
}

func credentialNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{
		Error:   "Not Found",
		Message: "Credential not found",
		Code:    http.StatusNotFound,
	})
}

func toCredentialResponse(credential domain.Credential) dto.CredentialResponse {
	return dto.CredentialResponse{
		ID:        credential.ID,
		Label:     credential.Label,
		Scopes:    credential.Scopes.Strings(),
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}
