package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// OAuthCallback is the query a provider sends back to the redirect URI.
type OAuthCallback struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}
