// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"
)

// Storage-level sentinels. The service maps these to the client-facing
// error taxonomy; they never leave the package untranslated.
var (
	// ErrNoSuchUser is returned when a directory lookup matches no row.
	ErrNoSuchUser = errors.New("auth: user not found")

	// ErrDuplicateSubject is returned when Create loses the first-login race:
	// another request inserted the same subject concurrently. The caller must
	// re-fetch by subject instead of failing the login.
	ErrDuplicateSubject = errors.New("auth: subject already registered")

	// ErrSessionNotFound is returned when no live record exists for a
	// credential — revoked, naturally expired, or never issued. The three
	// cases are indistinguishable on purpose.
	ErrSessionNotFound = errors.New("auth: session record not found")
)

// # User Directory

// UserDirectory defines the data access contract for the relational user
// directory, keyed by the provider's stable subject identifier.
type UserDirectory interface {

	/*
		FindBySubject returns the user owning the given provider subject.

		Parameters:
		  - ctx: context.Context
		  - subject: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrNoSuchUser or database retrieval failures
	*/
	FindBySubject(ctx context.Context, subject string) (*User, error)

	/*
		FindByID returns the user with the given directory ID.

		Parameters:
		  - ctx: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: ErrNoSuchUser or database retrieval failures
	*/
	FindByID(ctx context.Context, id int64) (*User, error)

	/*
		Create persists a brand-new user for a never-seen subject.

		Description: The directory enforces a uniqueness constraint on
		subject; violating it yields ErrDuplicateSubject so the caller can
		recover the first-login race with a re-fetch.

		Parameters:
		  - ctx: context.Context
		  - displayName: string
		  - email: string
		  - subject: string

		Returns:
		  - *User: Created entity with its assigned ID
		  - error: ErrDuplicateSubject or persistence failures
	*/
	Create(ctx context.Context, displayName, email, subject string) (*User, error)
}

// # Session Store

// SessionStore defines the contract for the revocable, time-bounded store of
// live sessions. It is the sole source of revocation truth.
//
// # Concurrency
//
// Operations are keyed by credential; implementations must not serialize
// operations on distinct keys behind a store-wide lock.
type SessionStore interface {

	/*
		Put registers a session record under the exact credential string.

		Description: The ttl must match or exceed the time until the record's
		ExpiresAt — a shorter store TTL would reject live credentials early.

		Parameters:
		  - ctx: context.Context
		  - credential: string
		  - record: *SessionRecord
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Put(ctx context.Context, credential string, record *SessionRecord, ttl time.Duration) error

	/*
		Get returns the live record for a credential.

		Parameters:
		  - ctx: context.Context
		  - credential: string

		Returns:
		  - *SessionRecord: Hydrated record
		  - error: ErrSessionNotFound or retrieval failures
	*/
	Get(ctx context.Context, credential string) (*SessionRecord, error)

	/*
		Delete removes a single session record.

		Description: Deleting an absent credential is a no-op, not an error —
		logout is idempotent.

		Parameters:
		  - ctx: context.Context
		  - credential: string

		Returns:
		  - error: Storage failures only
	*/
	Delete(ctx context.Context, credential string) error

	/*
		DeleteAllForOwner removes every live session belonging to the owner.

		Description: Implemented as a scan over all live keys, fetching each
		record and deleting matches. O(total live sessions) — acceptable
		because logout-all is rare relative to lookups.

		Parameters:
		  - ctx: context.Context
		  - ownerID: int64

		Returns:
		  - error: Storage failures; zero matches is a success
	*/
	DeleteAllForOwner(ctx context.Context, ownerID int64) error
}
