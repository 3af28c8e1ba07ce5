// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"net/http"

	"github.com/filedrop-app/filedrop/internal/platform/apperr"
)

// # Error Taxonomy
//
// Every failure leaving this package carries one of these machine-readable
// codes. Client-facing messages stay deliberately uniform: a revoked session
// and an expired one are indistinguishable to callers.

const (
	// CodeIdentityInvalid tags a rejected third-party identity token.
	CodeIdentityInvalid = "IDENTITY_INVALID"

	// CodeDirectoryError tags an unrecoverable user-directory failure.
	CodeDirectoryError = "DIRECTORY_ERROR"

	// CodeSessionRegistrationFailed tags a session store failure at issuance.
	// Login fails outright; the signed credential is never handed out.
	CodeSessionRegistrationFailed = "SESSION_REGISTRATION_FAILED"

	// CodeSessionInvalid tags any credential rejection: malformed, bad
	// signature, expired, or revoked. One opaque variant for all of them.
	CodeSessionInvalid = "SESSION_INVALID"

	// CodeUserNotFound tags a valid session whose owning user record no
	// longer exists. Treated as an authentication failure, not a crash.
	CodeUserNotFound = "USER_NOT_FOUND"
)

// Sentinels for the client-facing 401 variants. Wrap with WithCause to keep
// the real reason in server logs while clients see the uniform message.
var (
	// ErrIdentityInvalid rejects a login with a bad or expired provider token.
	ErrIdentityInvalid = apperr.New(CodeIdentityInvalid, "Login failed", http.StatusUnauthorized)

	// ErrSessionInvalid rejects a credential for any of the three reasons of
	// the trust invariant. The message never leaks which check failed.
	ErrSessionInvalid = apperr.New(CodeSessionInvalid, "Invalid or expired session", http.StatusUnauthorized)

	// ErrUserNotFound rejects a session whose user record has drifted away.
	ErrUserNotFound = apperr.New(CodeUserNotFound, "Invalid or expired session", http.StatusUnauthorized)
)

// DirectoryError wraps a user-directory failure as a 5xx-equivalent.
func DirectoryError(cause error) *apperr.AppError {
	return apperr.New(CodeDirectoryError, "User directory unavailable", http.StatusInternalServerError).WithCause(cause)
}

// RegistrationError wraps a session-store failure at issuance time.
func RegistrationError(cause error) *apperr.AppError {
	return apperr.New(CodeSessionRegistrationFailed, "Could not establish session", http.StatusInternalServerError).WithCause(cause)
}
