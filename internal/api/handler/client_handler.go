package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/internal/api/dto"
	"github.com/martijn/clientdesk/internal/api/util"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
	"github.com/martijn/clientdesk/internal/core/service"
)

// Allowed fields for client queries and ordering
var (
	clientQueryFields = []string{"id", "name", "cpf", "email", "created_at", "updated_at"}
	clientOrderFields = []string{"id", "name", "email", "created_at", "updated_at"}
)

const totalCountHeader = "X-Total-Count"

type ClientHandler struct {
	clients service.ClientUseCase
	logger  *slog.Logger
}

func NewClientHandler(clients service.ClientUseCase, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientHandler{
		clients: clients,
		logger:  logger,
	}
}

// ListClients handles GET /clients
//
// Without parameters every client is returned. The optional query, order,
// page and per_page parameters filter the listing; the number of matching
// clients is sent in the X-Total-Count header.
func (h *ClientHandler) ListClients(c *gin.Context) {
	if !hasListParams(c) {
		clients, err := h.clients.GetAllClients(c.Request.Context())
		if err != nil {
			internalError(c, h.logger, "Failed to retrieve clients", err)
			return
		}
		c.Header(totalCountHeader, strconv.Itoa(len(clients)))
		c.JSON(http.StatusOK, toClientResponses(clients))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(util.DefaultPerPage)))

	listFilter, err := util.ParseListFilter(c.Query("query"), c.Query("order"), page, perPage, clientQueryFields, clientOrderFields)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	clients, total, err := h.clients.ListClients(c.Request.Context(), repository.ClientFilter{ListFilter: listFilter})
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve clients", err)
		return
	}

	c.Header(totalCountHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, toClientResponses(clients))
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseClientID(c)
	if !ok {
		return
	}

	client, err := h.clients.GetClientByID(c.Request.Context(), id)
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve client", err)
		return
	}
	if client == nil {
		clientNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(*client))
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name, CPF, and email are required")
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), service.NewClientInput{
		Name:  req.Name,
		CPF:   req.CPF,
		Email: req.Email,
	})
	if err != nil {
		writeError(c, h.logger, "Failed to create client", err)
		return
	}

	c.JSON(http.StatusCreated, toClientResponse(client))
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseClientID(c)
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), id, service.ClientPatch{
		Name:  req.Name,
		CPF:   req.CPF,
		Email: req.Email,
	})
	if err != nil {
		writeError(c, h.logger, "Failed to update client", err)
		return
	}
	if client == nil {
		clientNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(*client))
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseClientID(c)
	if !ok {
		return
	}

	deleted, err := h.clients.DeleteClient(c.Request.Context(), id)
	if err != nil {
		internalError(c, h.logger, "Failed to delete client", err)
		return
	}
	if !deleted {
		clientNotFound(c)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetClientByCPF handles GET /clients/cpf/:cpf
func (h *ClientHandler) GetClientByCPF(c *gin.Context) {
	client, err := h.clients.GetClientByCPF(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve client by CPF", err)
		return
	}
	if client == nil {
		clientNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(*client))
}

// GetClientByEmail handles GET /clients/email/:email
func (h *ClientHandler) GetClientByEmail(c *gin.Context) {
	client, err := h.clients.GetClientByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		internalError(c, h.logger, "Failed to retrieve client by email", err)
		return
	}
	if client == nil {
		clientNotFound(c)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(*client))
}

func parseClientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid client ID")
		return 0, false
	}
	return id, true
}

func hasListParams(c *gin.Context) bool {
	for _, key := range []string{"query", "order", "page", "per_page"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

func clientNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{
		Error:   "Not Found",
		Message: "Client not found",
		Code:    http.StatusNotFound,
	})
}

func toClientResponse(client domain.ClientDTO) dto.ClientResponse {
	id, _ := client.ID.Value()
	return dto.ClientResponse{
		ID:        id,
		Name:      client.Name,
		CPF:       client.CPF,
		Email:     client.Email,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func toClientResponses(clients []domain.ClientDTO) []dto.ClientResponse {
	responses := make([]dto.ClientResponse, len(clients))
	for i, client := range clients {
		responses[i] = toClientResponse(client)
	}
	return responses
}
