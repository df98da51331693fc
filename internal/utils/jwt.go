// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenHasNoExpiry is returned when a token carries no exp claim.
var ErrTokenHasNoExpiry = errors.New("token has no expiration claim")

// TokenExpiry extracts the exp claim of an identity token without verifying
// its signature. Verification is the server's job; the client only needs to
// know whether sending the token is pointless.
func TokenExpiry(tokenString string) (time.Time, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return time.Time{}, errors.New("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("error occurred parsing token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenHasNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}
