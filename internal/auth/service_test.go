// Copyright (c) 2026 Filedrop. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop-app/filedrop/internal/auth"
	"github.com/filedrop-app/filedrop/internal/platform/apperr"
	"github.com/filedrop-app/filedrop/internal/platform/sec"
)

// # Test Doubles

// fakeVerifier resolves provider tokens from a fixed map.
type fakeVerifier struct {
	identities map[string]*auth.IdentityAssertion
}

func (verifier *fakeVerifier) Verify(ctx context.Context, rawToken string) (*auth.IdentityAssertion, error) {
	assertion, ok := verifier.identities[rawToken]
	if !ok {
		return nil, auth.ErrIdentityInvalid
	}
	return assertion, nil
}

// memDirectory is an in-memory UserDirectory enforcing subject uniqueness.
type memDirectory struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User

	// failAll forces every call to return a transport-style error.
	failAll bool
}

func newMemDirectory() *memDirectory {
	return &memDirectory{nextID: 1, users: make(map[int64]*auth.User)}
}

func (directory *memDirectory) FindBySubject(ctx context.Context, subject string) (*auth.User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	if directory.failAll {
		return nil, errors.New("directory down")
	}
	for _, user := range directory.users {
		if user.Subject == subject {
			copied := *user
			return &copied, nil
		}
	}
	return nil, auth.ErrNoSuchUser
}

func (directory *memDirectory) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	if directory.failAll {
		return nil, errors.New("directory down")
	}
	user, ok := directory.users[id]
	if !ok {
		return nil, auth.ErrNoSuchUser
	}
	copied := *user
	return &copied, nil
}

func (directory *memDirectory) Create(ctx context.Context, displayName, email, subject string) (*auth.User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	if directory.failAll {
		return nil, errors.New("directory down")
	}
	for _, user := range directory.users {
		if user.Subject == subject {
			return nil, auth.ErrDuplicateSubject
		}
	}
	user := &auth.User{
		ID:          directory.nextID,
		DisplayName: displayName,
		Email:       email,
		Subject:     subject,
		CreatedAt:   time.Now(),
	}
	directory.users[user.ID] = user
	directory.nextID++
	copied := *user
	return &copied, nil
}

// delete removes a user row directly, simulating out-of-band deletion.
func (directory *memDirectory) delete(id int64) {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	delete(directory.users, id)
}

func (directory *memDirectory) count() int {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	return len(directory.users)
}

// memSessionStore is an in-memory SessionStore honoring record expiry the
// way Redis TTL would.
type memSessionStore struct {
	mu      sync.RWMutex
	records map[string]*auth.SessionRecord

	// failPut simulates a store outage during registration.
	failPut bool
	// failAll simulates a full store outage.
	failAll bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{records: make(map[string]*auth.SessionRecord)}
}

func (store *memSessionStore) Put(ctx context.Context, credential string, record *auth.SessionRecord, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failPut || store.failAll {
		return errors.New("session store down")
	}
	copied := *record
	store.records[credential] = &copied
	return nil
}

func (store *memSessionStore) Get(ctx context.Context, credential string) (*auth.SessionRecord, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.failAll {
		return nil, errors.New("session store down")
	}
	record, ok := store.records[credential]
	if !ok || time.Now().After(record.ExpiresAt) {
		return nil, auth.ErrSessionNotFound
	}
	copied := *record
	return &copied, nil
}

func (store *memSessionStore) Delete(ctx context.Context, credential string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failAll {
		return errors.New("session store down")
	}
	delete(store.records, credential)
	return nil
}

func (store *memSessionStore) DeleteAllForOwner(ctx context.Context, ownerID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failAll {
		return errors.New("session store down")
	}
	for credential, record := range store.records {
		if record.OwnerID == ownerID {
			delete(store.records, credential)
		}
	}
	return nil
}

func (store *memSessionStore) liveCount() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.records)
}

// # Fixture

type fixture struct {
	service   *auth.Service
	verifier  *fakeVerifier
	directory *memDirectory
	sessions  *memSessionStore
	tokens    *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService("service-test-secret", "filedrop.app")
	require.NoError(t, err)

	verifier := &fakeVerifier{identities: map[string]*auth.IdentityAssertion{
		"google-token-alice": {Subject: "sub-alice", Email: "alice@example.com", DisplayName: "Alice"},
		"google-token-bob":   {Subject: "sub-bob", Email: "bob@example.com", DisplayName: "Bob"},
	}}
	directory := newMemDirectory()
	sessions := newMemSessionStore()

	return &fixture{
		service:   auth.NewService(verifier, directory, sessions, tokens, time.Hour),
		verifier:  verifier,
		directory: directory,
		sessions:  sessions,
		tokens:    tokens,
	}
}

// # Login

/*
TestService_Login_CreatesUserOnFirstSight checks the full happy path: verify,
create, sign, register — and that WhoAmI resolves to the same user.
*/
func TestService_Login_CreatesUserOnFirstSight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Credential)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Equal(t, "Alice", session.User.DisplayName)

	user, err := f.service.WhoAmI(ctx, session.Credential)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
}

/*
TestService_Login_ReusesExistingUser verifies that repeated logins with the
same provider subject resolve to a single directory row.
*/
func TestService_Login_ReusesExistingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)

	second, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, f.directory.count())

	// Distinct credentials: each login is its own session.
	assert.NotEqual(t, first.Credential, second.Credential)
}

/*
TestService_Login_RejectsBadProviderToken checks the identity gate.
*/
func TestService_Login_RejectsBadProviderToken(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.Login(context.Background(), "forged-token")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, apperr.HasCode(err, auth.CodeIdentityInvalid))
	assert.Equal(t, 0, f.directory.count())
}

/*
TestService_Login_RegistrationFailure checks that a store outage at issuance
fails the login outright, with no credential handed out and no orphan record.
*/
func TestService_Login_RegistrationFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.failPut = true

	session, err := f.service.Login(context.Background(), "google-token-alice")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, apperr.HasCode(err, auth.CodeSessionRegistrationFailed))
	assert.Equal(t, 0, f.sessions.liveCount())
}

/*
TestService_Login_DirectoryFailure maps a relational outage to DIRECTORY_ERROR.
*/
func TestService_Login_DirectoryFailure(t *testing.T) {
	f := newFixture(t)
	f.directory.failAll = true

	session, err := f.service.Login(context.Background(), "google-token-alice")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, apperr.HasCode(err, auth.CodeDirectoryError))
}

// # First-Login Race

// racingDirectory simulates losing the insert race: the first FindBySubject
// misses, Create collides, and the retry fetch finds the winner's row.
type racingDirectory struct {
	*memDirectory
	raceArmed bool
}

func (directory *racingDirectory) Create(ctx context.Context, displayName, email, subject string) (*auth.User, error) {
	if directory.raceArmed {
		directory.raceArmed = false
		// The "other request" wins the insert between our miss and our create.
		_, err := directory.memDirectory.Create(ctx, displayName, email, subject)
		if err != nil {
			return nil, err
		}
		return nil, auth.ErrDuplicateSubject
	}
	return directory.memDirectory.Create(ctx, displayName, email, subject)
}

/*
TestService_Login_RecoverFromInsertRace verifies the bounded retry: losing
the uniqueness race resolves to the winner's row instead of failing login.
*/
func TestService_Login_RecoverFromInsertRace(t *testing.T) {
	f := newFixture(t)
	racing := &racingDirectory{memDirectory: f.directory, raceArmed: true}
	service := auth.NewService(f.verifier, racing, f.sessions, f.tokens, time.Hour)

	session, err := service.Login(context.Background(), "google-token-alice")
	require.NoError(t, err)
	require.NotNil(t, session)

	// Exactly one row, owned by the race winner.
	assert.Equal(t, 1, f.directory.count())
	assert.Equal(t, "alice@example.com", session.User.Email)
}

// # Authenticate

/*
TestService_Authenticate_Rejections drives every rejection path and asserts
they all collapse to the one opaque SESSION_INVALID code.
*/
func TestService_Authenticate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)

	t.Run("garbage_credential", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "not-a-jwt")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
	})

	t.Run("tampered_signature", func(t *testing.T) {
		tampered := session.Credential[:len(session.Credential)-2] + "xx"
		_, err := f.service.Authenticate(ctx, tampered)
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
	})

	t.Run("revoked_credential", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, session.Credential))
		_, err := f.service.Authenticate(ctx, session.Credential)
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
	})

	t.Run("store_unreachable_fails_closed", func(t *testing.T) {
		fresh, err := f.service.Login(ctx, "google-token-alice")
		require.NoError(t, err)

		f.sessions.failAll = true
		defer func() { f.sessions.failAll = false }()

		_, err = f.service.Authenticate(ctx, fresh.Credential)
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
	})
}

/*
TestService_Authenticate_ExpiredButStillStored rejects a credential whose
embedded expiry elapsed even while a store record lingers.
*/
func TestService_Authenticate_ExpiredButStillStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Sign an already-expired credential and plant a long-lived record for
	// it, simulating store TTL drift.
	credential, claims, err := f.tokens.GenerateSessionToken(7, "alice@example.com", "Alice", -time.Minute)
	require.NoError(t, err)

	record := &auth.SessionRecord{
		OwnerID:   7,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.sessions.Put(ctx, credential, record, time.Hour))

	_, err = f.service.Authenticate(ctx, credential)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
}

// # WhoAmI

/*
TestService_WhoAmI_UserDeleted verifies the dangling-session path: a valid
credential whose user row has been removed out-of-band.
*/
func TestService_WhoAmI_UserDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)

	f.directory.delete(session.User.ID)

	user, err := f.service.WhoAmI(ctx, session.Credential)
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperr.HasCode(err, auth.CodeUserNotFound))
}

// # Logout

/*
TestService_Logout_Idempotent checks that repeating a logout succeeds and
that the session stays dead.
*/
func TestService_Logout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, session.Credential))
	require.NoError(t, f.service.Logout(ctx, session.Credential)) // second time is still fine

	_, err = f.service.Authenticate(ctx, session.Credential)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
}

/*
TestService_LogoutAll verifies cross-device revocation: every session of the
owner dies, other owners are untouched, and a fresh login works afterwards.
*/
func TestService_LogoutAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Alice on three devices, Bob on one.
	aliceSessions := make([]*auth.LoginSession, 0, 3)
	for i := 0; i < 3; i++ {
		session, err := f.service.Login(ctx, "google-token-alice")
		require.NoError(t, err)
		aliceSessions = append(aliceSessions, session)
	}
	bobSession, err := f.service.Login(ctx, "google-token-bob")
	require.NoError(t, err)

	require.NoError(t, f.service.LogoutAll(ctx, aliceSessions[0].Credential))

	// All of Alice's credentials are now rejected.
	for _, session := range aliceSessions {
		_, err := f.service.Authenticate(ctx, session.Credential)
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
	}

	// Bob is unaffected.
	_, err = f.service.Authenticate(ctx, bobSession.Credential)
	assert.NoError(t, err)

	// Revocation is not a ban: Alice can establish a new session.
	fresh, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)
	_, err = f.service.Authenticate(ctx, fresh.Credential)
	assert.NoError(t, err)
}

/*
TestService_LogoutAll_RequiresLiveSession rejects a revoked credential as
the authority for a logout-all.
*/
func TestService_LogoutAll_RequiresLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.Login(ctx, "google-token-alice")
	require.NoError(t, err)
	require.NoError(t, f.service.Logout(ctx, session.Credential))

	err = f.service.LogoutAll(ctx, session.Credential)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeSessionInvalid))
}
