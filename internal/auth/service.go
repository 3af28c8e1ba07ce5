// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/filedrop-app/filedrop/internal/platform/apperr"
	"github.com/filedrop-app/filedrop/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for signing and verifying session
// credentials. Implemented by [sec.TokenService] with the process-wide
// symmetric key.
type TokenProvider interface {
	// GenerateSessionToken signs a credential for the owner and returns the
	// embedded claims alongside it.
	GenerateSessionToken(ownerID int64, email, displayName string, timeToLive time.Duration) (string, *sec.SessionClaims, error)

	// VerifyToken checks signature and embedded expiry of a credential.
	VerifyToken(credential string) (*sec.SessionClaims, error)
}

// Service implements the identity and session management use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to verification,
// issuance, or revocation logic must be reviewed by the security team.
type Service struct {
	identity   IdentityVerifier
	directory  UserDirectory
	sessions   SessionStore
	tokens     TokenProvider
	sessionTTL time.Duration
}

// NewService constructs a new [Service] with necessary dependencies.
//
// A zero sessionTTL falls back to [DefaultSessionTTL].
func NewService(
	identity IdentityVerifier,
	directory UserDirectory,
	sessions SessionStore,
	tokens TokenProvider,
	sessionTTL time.Duration,
) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		identity:   identity,
		directory:  directory,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

// # Login Flow

// LoginSession represents a successfully established session.
type LoginSession struct {
	Credential string
	User       *User
}

/*
Login exchanges a third-party identity token for a local session.

Description: Verifies the provider token, resolves or creates the user
record, signs a session credential, and registers it with the session store.
Any stage failure yields a tagged error and no credential — a credential
signed but not registered is discarded, never returned.

Parameters:
  - ctx: context.Context
  - rawToken: string (Provider-issued identity token)

Returns:
  - *LoginSession: Credential and owning user
  - err: IDENTITY_INVALID, DIRECTORY_ERROR, or SESSION_REGISTRATION_FAILED
*/
func (service *Service) Login(ctx context.Context, rawToken string) (*LoginSession, error) {

	// Verify against the identity provider. Fail-closed, no retry.
	assertion, err := service.identity.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	// Resolve the local user, creating one on first sight.
	user, err := service.findOrCreateUser(ctx, assertion)
	if err != nil {
		return nil, err
	}

	// Sign the session credential.
	credential, claims, err := service.tokens.GenerateSessionToken(user.ID, user.Email, user.DisplayName, service.sessionTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// Register the session record under the exact credential string.
	// Store TTL is the remaining time until the embedded expiry, so the
	// store never expires a credential before its own claim does.
	record := &SessionRecord{
		OwnerID:     user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}

	if err := service.sessions.Put(ctx, credential, record, time.Until(record.ExpiresAt)); err != nil {
		// Nothing external observed the unregistered credential, so there
		// is no compensating action — login simply fails.
		return nil, RegistrationError(err)
	}

	return &LoginSession{
		Credential: credential,
		User:       user,
	}, nil
}

// findOrCreateUser resolves a verified identity to a directory row.
//
// Concurrent first-logins for the same new subject can both observe
// "absent" and both attempt the insert; the loser of that race sees
// ErrDuplicateSubject and recovers with exactly one re-fetch.
func (service *Service) findOrCreateUser(ctx context.Context, assertion *IdentityAssertion) (*User, error) {

	user, err := service.directory.FindBySubject(ctx, assertion.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNoSuchUser) {
		return nil, DirectoryError(err)
	}

	user, err = service.directory.Create(ctx, assertion.DisplayName, assertion.Email, assertion.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrDuplicateSubject) {
		return nil, DirectoryError(err)
	}

	// Someone else just created it — fetch their row. Bounded to this one
	// retry: a second miss means the directory is misbehaving.
	user, err = service.directory.FindBySubject(ctx, assertion.Subject)
	if err != nil {
		return nil, DirectoryError(err)
	}

	return user, nil
}

// # Session Validation

/*
Authenticate validates an inbound session credential.

Description: Two-stage pipeline. Stage 1 checks the cryptographic half
(signature and embedded expiry); stage 2 — only reached if stage 1 passes —
requires a live record in the session store. Both failure paths collapse to
the single opaque SESSION_INVALID variant so callers cannot distinguish
revocation from expiry.

This operation performs a blocking store round-trip and must be called from
a context that allows suspension.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - *sec.SessionClaims: Embedded identity claims
  - err: SESSION_INVALID
*/
func (service *Service) Authenticate(ctx context.Context, credential string) (*sec.SessionClaims, error) {

	// Stage 1: signature and embedded expiry.
	claims, err := service.tokens.VerifyToken(credential)
	if err != nil {
		return nil, ErrSessionInvalid.WithCause(err)
	}

	// Stage 2: revocation truth. A store failure is fail-closed: without a
	// reachable store we cannot prove the session was not revoked.
	if _, err := service.sessions.Get(ctx, credential); err != nil {
		return nil, ErrSessionInvalid.WithCause(err)
	}

	return claims, nil
}

/*
WhoAmI resolves a session credential to its owning user record.

Description: Authenticates the credential, then looks the owner up in the
directory. A session whose user row has drifted away is an authentication
failure, not a crash.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - *User: Owning directory record
  - err: SESSION_INVALID, USER_NOT_FOUND, or DIRECTORY_ERROR
*/
func (service *Service) WhoAmI(ctx context.Context, credential string) (*User, error) {

	claims, err := service.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}

	ownerID, err := claims.OwnerID()
	if err != nil {
		return nil, ErrSessionInvalid.WithCause(err)
	}

	user, err := service.directory.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) {
			return nil, ErrUserNotFound.WithCause(err)
		}
		return nil, DirectoryError(err)
	}

	return user, nil
}

// # Revocation

/*
Logout revokes a single session.

Description: Unconditional point delete of the store record. Deleting an
absent credential is a success — logout is idempotent, and the signed token
becomes untrusted the moment its record is gone.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - err: Storage failures only
*/
func (service *Service) Logout(ctx context.Context, credential string) error {

	if err := service.sessions.Delete(ctx, credential); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

/*
LogoutAll revokes every session belonging to the credential's owner.

Description: The owner is derived from the presented credential itself,
never from a caller-supplied ID — a caller can only log out their own
sessions. Succeeds even when zero sessions existed.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - err: SESSION_INVALID or storage failures
*/
func (service *Service) LogoutAll(ctx context.Context, credential string) error {

	claims, err := service.Authenticate(ctx, credential)
	if err != nil {
		return err
	}

	ownerID, err := claims.OwnerID()
	if err != nil {
		return ErrSessionInvalid.WithCause(err)
	}

	if err := service.sessions.DeleteAllForOwner(ctx, ownerID); err != nil {
		return apperr.Internal(err)
	}

	return nil
}
