// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Authority is the token issuing service the SDK authenticates against. It
// is also the time reference: signature timestamps and token expiry checks
// use its clock, never the local one.
type Authority interface {
	// LinkID returns the partner identifier the secret key belongs to.
	LinkID() string

	// SecretKey returns the base64url encoded shared secret.
	SecretKey() string

	// ServerTime returns the current time according to the authority.
	ServerTime(ctx context.Context) (time.Time, error)

	// IssueToken mints a session token for accessID. forwardIP is empty to
	// keep the IP restriction registered for the partner, or "*" to lift it.
	IssueToken(
		ctx context.Context,
		serviceID string,
		accessID string,
		scopes []string,
		forwardIP string,
	) (*oauth2.Token, error)
}
