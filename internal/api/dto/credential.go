package dto

import "time"

// CreateCredentialRequest represents the credential creation request.
// Without scopes the credential may only read clients.
type CreateCredentialRequest struct {
	Label  string   `json:"label" binding:"required"`
	Scopes []string `json:"scopes"`
}

// UpdateCredentialRequest changes the fields that are present
type UpdateCredentialRequest struct {
	Label  *string  `json:"label"`
	Scopes []string `json:"scopes"`
}

// CredentialResponse represents an API credential
type CredentialResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialCreateResponse includes the secret (only shown once)
type CredentialCreateResponse struct {
	CredentialResponse
	Secret string `json:"secret"`
}

// CredentialListResponse represents a list of credentials
type CredentialListResponse struct {
	Items      []CredentialResponse `json:"items"`
	Pagination PaginationInfo       `json:"pagination"`
}
