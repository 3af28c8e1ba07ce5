// Copyright (c) 2026 Filedrop. All rights reserved.

// Package sec provides cryptographic token management for session credentials.
//
// # Architecture
//
// This package isolates security-sensitive code (JWT signing and verification)
// from the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
//
// # Trust Model
//
// A verified signature alone does NOT make a credential trusted. The session
// service additionally requires a live record in the session store, so that
// logout and logout-all revoke credentials that are still cryptographically
// valid. This package only implements the cryptographic half of that check.
package sec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the payload embedded inside a session credential.
//
// The subject carries the owner's directory ID; email and display name ride
// along so that handlers can render identity without a database round-trip.
type SessionClaims struct {
	jwt.RegisteredClaims

	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

// OwnerID parses the subject claim into the owner's numeric directory ID.
func (c *SessionClaims) OwnerID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sec: malformed subject claim %q: %w", c.Subject, err)
	}
	return id, nil
}

// TokenService handles generation and verification of session credentials
// using HS256 with a process-wide symmetric key.
type TokenService struct {
	key    []byte
	issuer string
}

// NewTokenService creates a new TokenService from the shared signing secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: session secret must not be empty")
	}
	return &TokenService{
		key:    []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateSessionToken signs a new credential for the given owner.
//
// The returned claims mirror what was embedded, so the caller can register
// the matching session record without re-parsing the token.
func (service *TokenService) GenerateSessionToken(ownerID int64, email, displayName string, timeToLive time.Duration) (string, *SessionClaims, error) {
	currentTime := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(ownerID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:       email,
		DisplayName: displayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.key)
	if err != nil {
		return "", nil, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, claims, nil
}

// VerifyToken checks the signature and embedded expiry of a credential string.
//
// It rejects malformed tokens, wrong signing algorithms, bad signatures, and
// elapsed expiry. Store-presence is checked by the caller, not here.
func (service *TokenService) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.key, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
