package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Scope names one permission carried by an access token
type Scope string

const (
	ScopeClientsRead       Scope = "clients:read"
	ScopeClientsWrite      Scope = "clients:write"
	ScopeCredentialsManage Scope = "credentials:manage"
)

var knownScopes = []Scope{ScopeClientsRead, ScopeClientsWrite, ScopeCredentialsManage}

// Scopes is a sorted set of scopes. Its text form is space separated, the
// way OAuth writes the scope parameter.
type Scopes []Scope

// AllScopes is what an operator gets when logging in without asking for
// specific scopes.
func AllScopes() Scopes {
	scopes := slices.Clone(Scopes(knownScopes))
	slices.Sort(scopes)
	return scopes
}

// ParseScopes reads scope names separated by spaces or commas.
func ParseScopes(raw string) (Scopes, error) {
	names := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return NewScopes(names...)
}

// NewScopes validates names and collapses duplicates
func NewScopes(names ...string) (Scopes, error) {
	scopes := make(Scopes, 0, len(names))
	for _, name := range names {
		scope := Scope(strings.TrimSpace(name))
		if !slices.Contains(knownScopes, scope) {
			return nil, NewValidationError("scopes", fmt.Sprintf("Unknown scope: %s", name))
		}
		if !slices.Contains(scopes, scope) {
			scopes = append(scopes, scope)
		}
	}
	slices.Sort(scopes)
	return scopes, nil
}

// Allows reports whether the set grants required. Writing clients implies
// reading them.
func (s Scopes) Allows(required Scope) bool {
	if slices.Contains(s, required) {
		return true
	}
	return required == ScopeClientsRead && slices.Contains(s, ScopeClientsWrite)
}

// Within reports whether every scope in s is granted by other
func (s Scopes) Within(other Scopes) bool {
	for _, scope := range s {
		if !other.Allows(scope) {
			return false
		}
	}
	return true
}

func (s Scopes) Strings() []string {
	names := make([]string, len(s))
	for i, scope := range s {
		names[i] = string(scope)
	}
	return names
}

func (s Scopes) String() string {
	return strings.Join(s.Strings(), " ")
}
