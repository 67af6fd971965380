package oauth2

// TokenResponse represents the response from the vendor's /token endpoint.
type TokenResponse struct {
	// AccessToken is the opaque bearer credential.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token. Usually "Bearer"; may be
	// omitted by the vendor.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int64 `json:"expires_in"`

	// Scope is returned by some vendor deployments and otherwise ignored.
	Scope string `json:"scope,omitempty"`
}
