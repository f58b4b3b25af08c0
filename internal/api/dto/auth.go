package dto

// AuthorizeRequest represents the authorization request. Scope is an
// optional space separated list; empty asks for every scope.
type AuthorizeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Scope    string `json:"scope"`
}

// AuthorizeResponse represents the authorization response
type AuthorizeResponse struct {
	Code  string `json:"code"`
	Scope string `json:"scope"`
}

// TokenRequest represents the token request
type TokenRequest struct {
	GrantType    string `json:"grant_type" binding:"required"` // "authorization_code" or "client_credentials"
	Code         string `json:"code"`                          // For authorization_code
	ClientID     string `json:"client_id"`                     // Credential ID, for client_credentials
	ClientSecret string `json:"client_secret"`                 // Credential secret, for client_credentials
	Scope        string `json:"scope"`                         // Narrows a client_credentials token
}

// TokenResponse represents the token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // In seconds
	Scope       string `json:"scope"`
}
