// Copyright (c) 2026 Filedrop. All rights reserved.

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop-app/filedrop/internal/auth"
	"github.com/filedrop-app/filedrop/internal/platform/apperr"
)

/*
TestGoogleVerifier_Success verifies the happy path against a fake tokeninfo
endpoint, including how the token travels as a query parameter.
*/
func TestGoogleVerifier_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodGet, request.Method)
		assert.Equal(t, "provider-token-123", request.URL.Query().Get("id_token"))

		_ = json.NewEncoder(writer).Encode(map[string]string{
			"sub":   "google-subject-1",
			"email": "tai@filedrop.app",
			"name":  "Tai",
		})
	}))
	defer server.Close()

	verifier := auth.NewGoogleVerifier(server.URL)

	assertion, err := verifier.Verify(context.Background(), "provider-token-123")
	require.NoError(t, err)

	assert.Equal(t, "google-subject-1", assertion.Subject)
	assert.Equal(t, "tai@filedrop.app", assertion.Email)
	assert.Equal(t, "Tai", assertion.DisplayName)
}

/*
TestGoogleVerifier_Rejections drives every provider-side failure mode and
asserts each collapses to the single IDENTITY_INVALID code.
*/
func TestGoogleVerifier_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"provider_rejects_token",
			func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(http.StatusBadRequest)
			},
		},
		{
			"provider_server_error",
			func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			"malformed_payload",
			func(writer http.ResponseWriter, request *http.Request) {
				_, _ = writer.Write([]byte("not json at all"))
			},
		},
		{
			"missing_subject",
			func(writer http.ResponseWriter, request *http.Request) {
				_ = json.NewEncoder(writer).Encode(map[string]string{"email": "tai@filedrop.app"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			verifier := auth.NewGoogleVerifier(server.URL)

			assertion, err := verifier.Verify(context.Background(), "whatever")
			require.Error(t, err)
			assert.Nil(t, assertion)
			assert.True(t, apperr.HasCode(err, auth.CodeIdentityInvalid))
		})
	}
}

/*
TestGoogleVerifier_ProviderUnreachable points the verifier at a closed
server; transport failure must be a rejection, never a retry.
*/
func TestGoogleVerifier_ProviderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	verifier := auth.NewGoogleVerifier(server.URL)

	assertion, err := verifier.Verify(context.Background(), "whatever")
	require.Error(t, err)
	assert.Nil(t, assertion)
	assert.True(t, apperr.HasCode(err, auth.CodeIdentityInvalid))
}
