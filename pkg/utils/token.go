package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// AdminClaims is the payload of an admin capability token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CreateAdminToken signs a short lived HS256 token carrying the admin role.
func CreateAdminToken(secret, subject string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}

	expiresAt := now.Add(ttl)
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseAdminToken validates signature, expiry and role of an admin token.
func ParseAdminToken(secret, tokenStr string) (*AdminClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}

	claims := &AdminClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !t.Valid || claims.Role != RoleAdmin {
		return nil, errors.New("invalid admin token")
	}

	return claims, nil
}
