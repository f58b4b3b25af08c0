package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	AuthCodeTTL = 10 * time.Minute
	TokenTTL    = time.Hour
	BcryptCost  = 10
	TokenIssuer = "clientdesk"

	SubjectUser       = "user"
	SubjectCredential = "credential"
)

var (
	// ErrInvalidCredentials is returned for any failed login or token exchange
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrScopeNotGranted means a credential asked for more than it holds
	ErrScopeNotGranted = errors.New("requested scope not granted")
)

// TokenClaims are the claims of an issued access token. Scope holds the
// granted scopes space separated, as in an OAuth token response.
type TokenClaims struct {
	SubjectType string `json:"sub_type"`
	Scope       string `json:"scope"`
	jwt.RegisteredClaims
}

// Scopes returns the granted scopes, or none when the claim is malformed
func (c *TokenClaims) Scopes() domain.Scopes {
	scopes, err := domain.ParseScopes(c.Scope)
	if err != nil {
		return nil
	}
	return scopes
}

// AccessToken is a signed token together with what it grants
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
	Scopes    domain.Scopes
}

// ExpiresIn is the token lifetime left at now, in whole seconds
func (t *AccessToken) ExpiresIn(now time.Time) int {
	return int(t.ExpiresAt.Sub(now).Round(time.Second) / time.Second)
}

type AuthService struct {
	userRepo       repository.UserRepository
	credentialRepo repository.CredentialRepository
	authCodeRepo   repository.AuthCodeRepository
	jwtSecret      []byte
	signingMethod  jwt.SigningMethod
}

func NewAuthService(
	userRepo repository.UserRepository,
	credentialRepo repository.CredentialRepository,
	authCodeRepo repository.AuthCodeRepository,
	jwtSecret string,
	jwtAlgorithm string,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		authCodeRepo:   authCodeRepo,
		jwtSecret:      []byte(jwtSecret),
		signingMethod:  hmacMethod(jwtAlgorithm),
	}
}

// hmacMethod resolves an HS* algorithm name, falling back to HS256 for
// anything else since tokens are signed with a shared secret
func hmacMethod(name string) jwt.SigningMethod {
	if method, ok := jwt.GetSigningMethod(strings.ToUpper(name)).(*jwt.SigningMethodHMAC); ok {
		return method
	}
	return jwt.SigningMethodHS256
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authorize checks an operator's password and returns a single-use code
// carrying the requested scopes. Operators hold every scope, so an empty
// request grants all of them.
func (s *AuthService) Authorize(ctx context.Context, username, password string, requested domain.Scopes) (*domain.AuthCode, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	scopes := requested
	if len(scopes) == 0 {
		scopes = domain.AllScopes()
	}

	code := domain.NewAuthCode(user.Username, scopes, AuthCodeTTL)
	if err := s.authCodeRepo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to create auth code: %w", err)
	}

	if _, err := s.authCodeRepo.DeleteExpired(ctx, time.Now()); err != nil {
		return nil, err
	}
	return code, nil
}

// ExchangeAuthCode redeems a code from Authorize for an access token. A
// code works once, even when it has expired.
func (s *AuthService) ExchangeAuthCode(ctx context.Context, code string) (*AccessToken, error) {
	authCode, err := s.authCodeRepo.Take(ctx, code)
	if err != nil {
		return nil, err
	}
	if authCode == nil {
		return nil, fmt.Errorf("unknown auth code: %w", ErrInvalidCredentials)
	}
	if authCode.ExpiredAt(time.Now()) {
		return nil, fmt.Errorf("auth code expired: %w", ErrInvalidCredentials)
	}

	return s.issue(authCode.Username, SubjectUser, authCode.Scopes)
}

// AuthenticateCredential checks an API credential and issues a token. An
// empty request yields every scope the credential holds; otherwise the
// request must fit within them.
func (s *AuthService) AuthenticateCredential(ctx context.Context, credentialID, secret string, requested domain.Scopes) (*AccessToken, error) {
	credential, err := s.credentialRepo.FindByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if credential == nil || !s.VerifyPassword(secret, credential.SecretHash) {
		return nil, ErrInvalidCredentials
	}

	scopes := credential.Scopes
	if len(requested) > 0 {
		if !requested.Within(credential.Scopes) {
			return nil, ErrScopeNotGranted
		}
		scopes = requested
	}

	return s.issue(credential.ID, SubjectCredential, scopes)
}

func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.signingMethod.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)

	claims := &TokenClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if _, err := domain.ParseScopes(claims.Scope); err != nil {
		return nil, fmt.Errorf("invalid token scope: %w", err)
	}
	return claims, nil
}

func (s *AuthService) issue(subject, subjectType string, scopes domain.Scopes) (*AccessToken, error) {
	now := time.Now()
	expiresAt := now.Add(TokenTTL)

	claims := TokenClaims{
		SubjectType: subjectType,
		Scope:       scopes.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(s.signingMethod, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AccessToken{Value: signed, ExpiresAt: expiresAt, Scopes: scopes}, nil
}
