// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filedrop-app/filedrop/internal/platform/constants"
)

// # Redis Session Store

// RedisSessionStore implements SessionStore using Redis.
//
// Records are JSON-encoded under "auth:session:<credential>" with a per-key
// TTL. Redis handles keyed concurrency natively: operations on distinct
// credentials never block each other.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore.
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// sessionKey builds the namespaced Redis key for a credential.
func sessionKey(credential string) string {
	return constants.RedisPrefixSession + credential
}

/*
Put registers a session record keyed by the exact credential string.

Parameters:
  - ctx: context.Context
  - credential: string
  - record: *SessionRecord
  - ttl: time.Duration (must cover the time until the embedded expiry)

Returns:
  - error: Serialization or storage failures
*/
func (store *RedisSessionStore) Put(ctx context.Context, credential string, record *SessionRecord, ttl time.Duration) error {

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_session_store_encode_failed: %w", err)
	}

	// Set the record with TTL
	if err := store.client.Set(ctx, sessionKey(credential), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_store_put_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the live record for a credential.

Description: Returns ErrSessionNotFound when the key is absent — whether it
was revoked, lapsed via TTL, or never existed.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - *SessionRecord: Hydrated record
  - error: ErrSessionNotFound or connectivity errors
*/
func (store *RedisSessionStore) Get(ctx context.Context, credential string) (*SessionRecord, error) {

	payload, err := store.client.Get(ctx, sessionKey(credential)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis_session_store_get_failed: %w", err)
	}

	record := &SessionRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, fmt.Errorf("redis_session_store_decode_failed: %w", err)
	}

	return record, nil
}

/*
Delete removes a single session record.

Description: DEL of an absent key is a no-op in Redis, which gives logout
its idempotence for free.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - error: Connectivity failures only
*/
func (store *RedisSessionStore) Delete(ctx context.Context, credential string) error {

	if err := store.client.Del(ctx, sessionKey(credential)).Err(); err != nil {
		return fmt.Errorf("redis_session_store_delete_failed: %w", err)
	}

	return nil
}

/*
DeleteAllForOwner removes every live session belonging to the owner.

Description: SCAN over the session namespace, fetching each record and
deleting matches. Keys that vanish mid-scan (concurrent logout or TTL lapse)
are skipped. O(total live sessions); an owner-indexed set would remove the
scan but the observable behavior must stay identical.

Parameters:
  - ctx: context.Context
  - ownerID: int64

Returns:
  - error: Scan or deletion failures; zero matches is a success
*/
func (store *RedisSessionStore) DeleteAllForOwner(ctx context.Context, ownerID int64) error {

	iter := store.client.Scan(ctx, 0, constants.RedisPrefixSession+"*", sessionScanCount).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()

		payload, err := store.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Key expired or was deleted between SCAN and GET
				continue
			}
			return fmt.Errorf("redis_session_store_scan_get_failed: %w", err)
		}

		record := &SessionRecord{}
		if err := json.Unmarshal(payload, record); err != nil {
			// A corrupt record cannot be matched to an owner; leave it to
			// lapse via its TTL rather than failing the whole revocation.
			continue
		}

		if record.OwnerID != ownerID {
			continue
		}

		if err := store.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis_session_store_owner_delete_failed: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis_session_store_scan_failed: %w", err)
	}

	return nil
}

// interface guard
var _ SessionStore = (*RedisSessionStore)(nil)
