package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// GrantTypeJWTBearer is the RFC 7523 extension grant. A signed assertion
	// substitutes for a client secret exchange.
	GrantTypeJWTBearer GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// Form parameter names sent to the token endpoint.
const (
	ParamGrantType = "grant_type"
	ParamAssertion = "assertion"
)

// TokenTypeBearer is the only token type the vendor issues.
const TokenTypeBearer = "Bearer"
