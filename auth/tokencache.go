// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/common"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ForwardAnyIP is the forwarded address sent to the authority when the IP
// restriction is lifted.
const ForwardAnyIP = "*"

// TokenCache keeps one session token per account and refreshes it once the
// authority's clock says it has expired.
//
// A TokenCache is safe for concurrent use. Concurrent callers asking for the
// same account while a refresh is in flight share that refresh, so at most
// one issuance is outstanding per account. Different accounts never wait on
// each other.
type TokenCache struct {
	authority Authority
	serviceID string
	logger    hclog.Logger

	mu         sync.RWMutex
	tokens     map[string]*oauth2.Token
	scopes     []string
	ipRestrict bool

	group singleflight.Group
}

// NewTokenCache returns an empty cache issuing tokens for serviceID with the
// given scopes. IP restriction is on.
func NewTokenCache(
	authority Authority,
	serviceID string,
	scopes []string,
	logger hclog.Logger,
) *TokenCache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &TokenCache{
		authority:  authority,
		serviceID:  serviceID,
		logger:     logger,
		tokens:     make(map[string]*oauth2.Token),
		scopes:     append([]string(nil), scopes...),
		ipRestrict: true,
	}
}

// SetIPRestriction toggles the IP restriction asked for on the next
// issuance. Tokens already cached are kept.
func (o *TokenCache) SetIPRestriction(on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ipRestrict = on
}

func (o *TokenCache) IPRestriction() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ipRestrict
}

// AddScope appends scope to the scopes requested on the next issuance.
// Duplicates are ignored.
func (o *TokenCache) AddScope(scope string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range o.scopes {
		if s == scope {
			return
		}
	}
	o.scopes = append(o.scopes, scope)
}

// Scopes returns a copy of the configured scopes.
func (o *TokenCache) Scopes() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.scopes...)
}

// Token returns a valid session token for accountID, issuing a new one when
// none is cached or the cached one has expired according to the authority.
// Failures are reported as *common.AuthError.
func (o *TokenCache) Token(ctx context.Context, accountID string) (*oauth2.Token, error) {
	if accountID == "" {
		return nil, common.NewValidationError("accountID", "account id is required")
	}

	ch := o.group.DoChan(accountID, func() (interface{}, error) {
		// the refresh outlives a single caller giving up
		return o.refresh(context.WithoutCancel(ctx), accountID)
	})

	select {
	case <-ctx.Done():
		return nil, common.NewAuthError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	}
}

func (o *TokenCache) refresh(ctx context.Context, accountID string) (*oauth2.Token, error) {
	o.mu.RLock()
	cached := o.tokens[accountID]
	scopes := append([]string(nil), o.scopes...)
	ipRestrict := o.ipRestrict
	o.mu.RUnlock()

	if cached != nil {
		now, err := o.authority.ServerTime(ctx)
		if err != nil {
			return nil, common.NewAuthError(err)
		}

		if cached.Expiry.After(now) {
			return cached, nil
		}

		o.logger.Debug("session token expired", "account", accountID, "expiry", cached.Expiry)
	}

	forwardIP := ""
	if !ipRestrict {
		forwardIP = ForwardAnyIP
	}

	tok, err := o.authority.IssueToken(ctx, o.serviceID, accountID, scopes, forwardIP)
	if err != nil {
		return nil, common.NewAuthError(err)
	}

	if tok == nil || tok.AccessToken == "" {
		return nil, common.NewAuthError(errors.New("empty session token"))
	}

	o.mu.Lock()
	o.tokens[accountID] = tok
	o.mu.Unlock()

	o.logger.Debug("session token issued", "account", accountID, "expiry", tok.Expiry)

	return tok, nil
}
