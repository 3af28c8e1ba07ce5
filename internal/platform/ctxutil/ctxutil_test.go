// Copyright (c) 2026 Filedrop. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filedrop-app/filedrop/internal/platform/ctxutil"
	"github.com/filedrop-app/filedrop/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Session verifies that session claims can be stored in context.
*/
func TestContext_Session(t *testing.T) {
	ctx := context.Background()
	claims := &sec.SessionClaims{
		Email:       "tai@filedrop.app",
		DisplayName: "Tai",
	}
	claims.Subject = "42"

	// 1. Initially should be nil (anonymous request)
	assert.Nil(t, ctxutil.GetSession(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSession(ctx, claims)
	retrieved := ctxutil.GetSession(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "42", retrieved.Subject)
	assert.Equal(t, "tai@filedrop.app", retrieved.Email)
}

/*
TestContext_Credential verifies round-tripping of the raw bearer credential.
*/
func TestContext_Credential(t *testing.T) {
	ctx := context.Background()
	credential := "eyJhbGciOiJIUzI1NiJ9.payload.signature"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetCredential(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithCredential(ctx, credential)
	assert.Equal(t, credential, ctxutil.GetCredential(ctx))
}
