// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// # Identity Verification

// IdentityVerifier validates an externally-issued identity token and
// extracts a stable subject identifier, display name, and email.
type IdentityVerifier interface {

	/*
		Verify sends the raw token to the identity provider for validation.

		Parameters:
		  - ctx: context.Context
		  - rawToken: string (Opaque provider-issued token)

		Returns:
		  - *IdentityAssertion: Verified identity
		  - error: ErrIdentityInvalid on any non-success response, malformed
		    payload, or transport failure (fail-closed, no retry)
	*/
	Verify(ctx context.Context, rawToken string) (*IdentityAssertion, error)
}

// GoogleVerifier implements IdentityVerifier against Google's tokeninfo
// endpoint. Every login re-verifies; there is no caching.
type GoogleVerifier struct {
	endpoint   string
	httpClient *http.Client
}

// NewGoogleVerifier creates a verifier for the given tokeninfo endpoint URL.
//
// The endpoint is injectable so tests can point it at a local fake.
func NewGoogleVerifier(endpoint string) *GoogleVerifier {
	return &GoogleVerifier{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: verifyTimeout,
		},
	}
}

// tokenInfoResponse mirrors the provider's verification payload.
// Extra fields (picture, audience, locale) are ignored.
type tokenInfoResponse struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

/*
Verify validates the raw token against the provider's verification endpoint.

Description: One outbound GET per invocation. Any non-2xx status, malformed
JSON, or missing subject is an authentication rejection, not a transient
fault — verification failure must be fail-closed.

Parameters:
  - ctx: context.Context
  - rawToken: string

Returns:
  - *IdentityAssertion: Subject, email, and display name from the provider
  - error: ErrIdentityInvalid (cause retained for server-side logs)
*/
func (verifier *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*IdentityAssertion, error) {

	// Build the verification URL with the token as a query parameter
	verifyURL := fmt.Sprintf("%s?id_token=%s", verifier.endpoint, url.QueryEscape(rawToken))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, ErrIdentityInvalid.WithCause(err)
	}

	// One network call, no retry
	response, err := verifier.httpClient.Do(request)
	if err != nil {
		return nil, ErrIdentityInvalid.WithCause(err)
	}
	defer func() { _ = response.Body.Close() }()

	// Any non-2xx response is a rejection
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, ErrIdentityInvalid.WithCause(fmt.Errorf("auth: tokeninfo returned status %d", response.StatusCode))
	}

	// Decode the provider payload
	var payload tokenInfoResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, ErrIdentityInvalid.WithCause(fmt.Errorf("auth: malformed tokeninfo payload: %w", err))
	}

	// A verified identity without a stable subject is unusable
	if payload.Subject == "" {
		return nil, ErrIdentityInvalid.WithCause(fmt.Errorf("auth: tokeninfo payload missing subject"))
	}

	return &IdentityAssertion{
		Subject:     payload.Subject,
		Email:       payload.Email,
		DisplayName: payload.Name,
	}, nil
}

// interface guard
var _ IdentityVerifier = (*GoogleVerifier)(nil)
