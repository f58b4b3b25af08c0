package dto

import "time"

// CreateClientRequest represents the client creation request
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	CPF   string `json:"cpf" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// UpdateClientRequest carries a partial update. Omitted or null fields are
// left unchanged.
type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty"`
	CPF   *string `json:"cpf,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ClientResponse represents a client
type ClientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
