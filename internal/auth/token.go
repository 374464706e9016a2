// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/alrehab/agriexport-go/internal/model"
)

// TokenTTL is the lifetime of an admin session token.
const TokenTTL = 8 * time.Hour

// ErrInvalidToken is returned when a token fails verification for any
// reason, including expiry.
var ErrInvalidToken = errors.New("invalid token")

// AdminClaims are the JWT claims carried by an admin session token.
type AdminClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin returns true if the claims carry the admin role.
func (c *AdminClaims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// IssueToken signs an HS256 JWT for the given admin user.
func IssueToken(user model.AdminUser, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token string, enforcing the HS256
// signing method. Expired or malformed tokens return ErrInvalidToken.
func VerifyToken(tokenString string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
