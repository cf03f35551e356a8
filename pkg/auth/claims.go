package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the slice of the external identity provider's token the
// backend consumes. Subject carries the provider's opaque user id.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// IdentityClaims represents the typed JWT the identity provider issues.
type IdentityClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// Identity flattens the claims into the shape services consume.
func (c *IdentityClaims) Identity() Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		ExternalID: c.Subject,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
	}
}
