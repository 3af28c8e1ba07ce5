// Copyright (c) 2026 Filedrop. All rights reserved.

/*
Package auth implements the identity and session management core of Filedrop.

It exchanges a third-party identity token for a local user record, issues
signed session credentials, and maintains a revocation-capable session store.

# Architecture

  - Service: Orchestrates login, identity-check, logout, and logout-all.
  - IdentityVerifier: Validates provider-issued tokens (Google tokeninfo).
  - UserDirectory: Relational lookup/insert of users by provider subject.
  - SessionStore: Time-bounded, revocable store of live session records.

# Trust Model

A session credential is accepted only when its signature verifies, its
embedded expiry has not elapsed, AND a record for the exact credential
string is present in the session store. Removing the record is what makes
logout effective while the signed token remains cryptographically valid.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Filedrop platform.
//
// A user row is created on first login for a never-seen provider subject and
// is immutable afterwards: email and display-name drift on the provider side
// is not tracked (first write wins).
type User struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Subject     string    `json:"-"` // Provider-assigned account ID. Omitted from JSON.
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityAssertion is the verified identity extracted from a third-party
// token. It is ephemeral and never persisted.
type IdentityAssertion struct {
	// Subject is the provider's stable identifier for the external account.
	Subject string
	// Email as reported by the provider at verification time.
	Email string
	// DisplayName as reported by the provider at verification time.
	DisplayName string
}

// SessionRecord is the store-side half of a live session, keyed by the exact
// credential string.
//
// Its ExpiresAt mirrors the credential's embedded expiry; the store TTL is a
// safety net, never the source of truth for expiry.
type SessionRecord struct {
	OwnerID     int64     `json:"owner_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// # Field Identifiers

// Field names for validation and JSON payloads in the authentication domain.
const (
	FieldGoogleToken = "google_token"
	FieldToken       = "token"
	FieldUser        = "user"
	FieldMessage     = "message"
)
