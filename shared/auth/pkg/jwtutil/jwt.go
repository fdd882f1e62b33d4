// shared/auth/pkg/jwtutil/jwt.go
package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims of the access tokens issued by the auth provider. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}
