package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/craftroots/storefront-backend/pkg/config"
)

// Role is the coarse actor role carried in access tokens. Identity lives in a
// separate service; this API only needs to tell shoppers and staff apart.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Claims is the identity the storefront trusts from a verified access token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type accessTokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseAccessToken verifies the token signature and shape and returns the
// claims the request may act as.
func ParseAccessToken(cfg config.JWTConfig, token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("empty token")
	}

	parsed := &accessTokenClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	role := Role(parsed.Role)
	if role == "" {
		role = RoleCustomer
	}
	if role != RoleCustomer && role != RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", parsed.Role)
	}

	return &Claims{UserID: userID, Email: parsed.Email, Role: role}, nil
}

// SignAccessToken mints a token the way the identity service does. Used by
// tests and local tooling.
func SignAccessToken(cfg config.JWTConfig, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims{
		Email: claims.Email,
		Role:  string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.UserID.String(),
			Issuer:  cfg.Issuer,
		},
	})
	return token.SignedString([]byte(cfg.Secret))
}
