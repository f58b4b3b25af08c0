package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxLabelLength = 100

// DefaultCredentialScopes apply to a credential created without scopes
var DefaultCredentialScopes = Scopes{ScopeClientsRead}

// Credential is a machine identity that calls the client API with the
// client_credentials grant. Tokens issued to it carry its scopes.
type Credential struct {
	ID         string
	SecretHash string
	Label      string
	Scopes     Scopes
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewCredential(label, secretHash string, scopes Scopes) (*Credential, error) {
	label, err := validateLabel(label)
	if err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		scopes = DefaultCredentialScopes
	}

	now := time.Now().UTC().Truncate(timestampPrecision)
	return &Credential{
		ID:         uuid.NewString(),
		SecretHash: secretHash,
		Label:      label,
		Scopes:     scopes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (c *Credential) Relabel(label string) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}
	c.Label = label
	c.UpdatedAt = time.Now().UTC().Truncate(timestampPrecision)
	return nil
}

// Grant replaces the credential's scopes. Tokens issued earlier keep the
// scopes they were signed with until they expire.
func (c *Credential) Grant(scopes Scopes) error {
	if len(scopes) == 0 {
		return NewValidationError("scopes", "A credential needs at least one scope")
	}
	c.Scopes = scopes
	c.UpdatedAt = time.Now().UTC().Truncate(timestampPrecision)
	return nil
}

func validateLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return "", NewValidationError("label", "Credential label cannot be empty")
	case len([]rune(label)) > maxLabelLength:
		return "", NewValidationError("label", "Credential label is too long")
	}
	return label, nil
}
