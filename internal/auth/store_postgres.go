// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// # PostgreSQL User Directory

// PostgresUserDirectory implements the UserDirectory interface using pgx.
//
// The account table carries a UNIQUE constraint on subject; the insert race
// between two concurrent first-logins surfaces as SQLSTATE 23505, which is
// mapped to [ErrDuplicateSubject] for the service to recover.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory creates a new PostgreSQL implementation of the UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

/*
FindBySubject retrieves a user by their provider subject identifier.

Parameters:
  - ctx: context.Context
  - subject: string

Returns:
  - *User: Hydrated account entity
  - error: ErrNoSuchUser or database errors
*/
func (directory *PostgresUserDirectory) FindBySubject(ctx context.Context, subject string) (*User, error) {
	const query = `
		SELECT id, displayname, email, subject, createdat
		FROM account
		WHERE subject = $1`

	user := &User{}
	err := directory.pool.QueryRow(ctx, query, subject).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Subject,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("postgres_directory_find_by_subject_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user by their directory ID.

Parameters:
  - ctx: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: ErrNoSuchUser or database errors
*/
func (directory *PostgresUserDirectory) FindByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, displayname, email, subject, createdat
		FROM account
		WHERE id = $1`

	user := &User{}
	err := directory.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Subject,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("postgres_directory_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Create persists a new user row and returns it with its assigned ID.

Description: The database assigns the identity column; timestamps come from
the server clock. A unique violation on subject means another request
created the row first.

Parameters:
  - ctx: context.Context
  - displayName: string
  - email: string
  - subject: string

Returns:
  - *User: Created entity
  - error: ErrDuplicateSubject or persistence failures
*/
func (directory *PostgresUserDirectory) Create(ctx context.Context, displayName, email, subject string) (*User, error) {
	const query = `
		INSERT INTO account (displayname, email, subject)
		VALUES ($1, $2, $3)
		RETURNING id, displayname, email, subject, createdat`

	user := &User{}
	err := directory.pool.QueryRow(ctx, query, displayName, email, subject).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Subject,
		&user.CreatedAt,
	)

	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateSubject
		}
		return nil, fmt.Errorf("postgres_directory_create_failed: %w", err)
	}

	return user, nil
}

// interface guard
var _ UserDirectory = (*PostgresUserDirectory)(nil)
