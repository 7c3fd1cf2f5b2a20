// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TestingAuthority is an in-memory Authority for tests. It mints tokens
// valid for TTL on its own clock, which tests move with Advance.
type TestingAuthority struct {
	ID     string
	Secret string
	TTL    time.Duration

	// IssueErr, when set, is returned by IssueToken instead of a token.
	IssueErr error
	// IssueDelay holds IssueToken before it returns.
	IssueDelay time.Duration

	mu            sync.Mutex
	now           time.Time
	issued        int
	lastForwardIP string
	lastScopes    []string
}

// NewTestingAuthority returns a TestingAuthority whose tokens live for one
// hour and whose clock starts at a fixed instant.
func NewTestingAuthority(linkID, secretKey string) *TestingAuthority {
	return &TestingAuthority{
		ID:     linkID,
		Secret: secretKey,
		TTL:    time.Hour,
		now:    time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (o *TestingAuthority) LinkID() string    { return o.ID }
func (o *TestingAuthority) SecretKey() string { return o.Secret }

func (o *TestingAuthority) ServerTime(ctx context.Context) (time.Time, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now, nil
}

// Advance moves the authority clock forward by d.
func (o *TestingAuthority) Advance(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now = o.now.Add(d)
}

func (o *TestingAuthority) IssueToken(
	ctx context.Context,
	serviceID string,
	accessID string,
	scopes []string,
	forwardIP string,
) (*oauth2.Token, error) {
	if o.IssueDelay > 0 {
		select {
		case <-time.After(o.IssueDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastForwardIP = forwardIP
	o.lastScopes = append([]string(nil), scopes...)

	if o.IssueErr != nil {
		return nil, o.IssueErr
	}

	o.issued++

	return &oauth2.Token{
		AccessToken: fmt.Sprintf("%s-%s-%d", serviceID, accessID, o.issued),
		TokenType:   "Bearer",
		Expiry:      o.now.Add(o.TTL),
	}, nil
}

// Issued returns how many tokens were minted so far.
func (o *TestingAuthority) Issued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.issued
}

// LastForwardIP returns the forwardIP of the latest IssueToken call.
func (o *TestingAuthority) LastForwardIP() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastForwardIP
}

// LastScopes returns the scopes of the latest IssueToken call.
func (o *TestingAuthority) LastScopes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lastScopes...)
}
