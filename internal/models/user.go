package models

import "github.com/golang-jwt/jwt/v4"

// JwtCustomClaims are the claims issued by the identity service. The subject of
// a follow operation is UserID; RegisteredClaims.Subject is used when it is empty.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the acting user id carried by the claims.
func (c *JwtCustomClaims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
