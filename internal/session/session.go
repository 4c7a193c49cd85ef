package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies which dashboard a visitor belongs to
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// State is the derived session summary shared with the rest of the
// application. Consumers receive value snapshots and never mutate it.
type State struct {
	Authenticated bool `json:"is_authenticated"`
	IsAdmin       bool `json:"is_admin"`
}

// Role maps the admin flag to a routing role
func (s State) Role() Role {
	if s.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// TokenClaims represents the payload of the server-issued credential token
type TokenClaims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// DecodeToken extracts the claims from a credential token without verifying
// its signature. The payload is read for routing convenience only; the
// remote API verifies the signature on every data operation.
func DecodeToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}
