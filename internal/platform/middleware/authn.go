// Copyright (c) 2026 Filedrop. All rights reserved.

// Authentication middleware for the Filedrop API.
//
// # Architecture
//
// Unlike a pure-JWT gate, authenticating a Filedrop session is a suspending
// operation: a credential is trusted only if its signature verifies AND a
// live record for it exists in the session store. The store round-trip is
// what makes logout effective while the signed token is still within its
// embedded expiry.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/filedrop-app/filedrop/internal/platform/apperr"
	"github.com/filedrop-app/filedrop/internal/platform/ctxutil"
	"github.com/filedrop-app/filedrop/internal/platform/respond"
	"github.com/filedrop-app/filedrop/internal/platform/sec"
)

// SessionAuthenticator defines the interface needed to validate credentials
// in middleware.
//
// # Why an interface?
//
// Defining SessionAuthenticator here decouples the middleware from the auth
// service implementation, allowing us to easily inject fakes during unit
// testing. The context parameter is required: implementations perform a
// blocking session-store lookup.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, credential string) (*sec.SessionClaims, error)
}

// Authenticate extracts and validates the bearer credential from the
// Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <credential>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, run the full session check (signature, expiry, store presence).
//  4. Inject [*sec.SessionClaims] and the raw credential into the request context.
func Authenticate(authenticator SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Session Validation ─────────────────────────────────────────
			credential := parts[1]
			claims, err := authenticator.Authenticate(request.Context(), credential)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithSession(request.Context(), claims)
			ctx = ctxutil.WithCredential(ctx, credential)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetSession(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
