package domain

import (
	"regexp"
	"strings"
	"time"
)

const cpfLength = 11

// emailPattern treats Unicode spaces and U+FEFF as whitespace, not only
// the ASCII set matched by \s.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// timestampPrecision matches the microsecond resolution of the SQL stores,
// so a saved client reads back with identical timestamps.
const timestampPrecision = time.Microsecond

// Client is a customer record. Fields are only reachable through accessors
// and the Update methods, so an instance never holds invalid data.
type Client struct {
	id        ClientID
	name      string
	cpf       string
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// ClientDTO is the plain projection of a Client passed between layers.
type ClientDTO struct {
	ID        ClientID
	Name      string
	CPF       string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewClient creates a client that has not been persisted yet
func NewClient(name, cpf, email string) (*Client, error) {
	now := time.Now().UTC().Truncate(timestampPrecision)
	return RestoreClient(UnassignedID(), name, cpf, email, now, now)
}

// RestoreClient builds a client with explicit identity and timestamps,
// running the same validation as NewClient.
func RestoreClient(id ClientID, name, cpf, email string, createdAt, updatedAt time.Time) (*Client, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := validateCPF(cpf); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, NewValidationError("updated_at", "Client update time cannot precede its creation time")
	}

	return &Client{
		id:        id,
		name:      name,
		cpf:       cpf,
		email:     email,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// FromDTO rebuilds a client from a trusted record without validating it.
// Untrusted input must go through NewClient or the Update methods.
func FromDTO(dto ClientDTO) *Client {
	return &Client{
		id:        dto.ID,
		name:      dto.Name,
		cpf:       dto.CPF,
		email:     dto.Email,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

func (c *Client) ID() ClientID         { return c.id }
func (c *Client) Name() string         { return c.name }
func (c *Client) CPF() string          { return c.cpf }
func (c *Client) Email() string        { return c.email }
func (c *Client) CreatedAt() time.Time { return c.createdAt }
func (c *Client) UpdatedAt() time.Time { return c.updatedAt }

func (c *Client) UpdateName(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	c.name = name
	c.touch()
	return nil
}

func (c *Client) UpdateCPF(cpf string) error {
	if err := validateCPF(cpf); err != nil {
		return err
	}
	c.cpf = cpf
	c.touch()
	return nil
}

func (c *Client) UpdateEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	c.email = email
	c.touch()
	return nil
}

// ToDTO returns a field-for-field copy of the client
func (c *Client) ToDTO() ClientDTO {
	return ClientDTO{
		ID:        c.id,
		Name:      c.name,
		CPF:       c.cpf,
		Email:     c.email,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

// touch moves updatedAt forward. Two mutations inside the clock resolution
// still yield strictly increasing timestamps.
func (c *Client) touch() {
	now := time.Now().UTC().Truncate(timestampPrecision)
	if !now.After(c.updatedAt) {
		now = c.updatedAt.Add(timestampPrecision)
	}
	c.updatedAt = now
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", NewValidationError("name", "Client name cannot be empty")
	}
	return trimmed, nil
}

func validateCPF(cpf string) error {
	if len(cpf) != cpfLength {
		return NewValidationError("cpf", "Invalid CPF")
	}
	for i := 0; i < len(cpf); i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return NewValidationError("cpf", "Invalid CPF")
		}
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return NewValidationError("email", "Invalid email address")
	}
	return nil
}
