// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import "time"

// # Session Constraints

const (
	// DefaultSessionTTL is the lifetime of an issued session credential.
	// Matches the embedded 'exp' claim; the store-side TTL is derived from it.
	DefaultSessionTTL = 24 * time.Hour

	// verifyTimeout bounds the outbound call to the identity provider.
	// Verification is fail-closed: a slow provider is a rejected login,
	// never a retried one.
	verifyTimeout = 10 * time.Second

	// sessionScanCount is the batch size hint for the owner-scoped
	// revocation scan over live session keys.
	sessionScanCount = 100
)
