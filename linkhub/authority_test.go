// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package linkhub

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLinkID    = "TESTER"
	testSecretKey = "c2VjcmV0LWtleS1mb3ItdGVzdHM"
	testURL       = "http://auth.linkhub.example"
	testTime      = "2026-01-02T03:04:05Z"
	testTokenBody = `{
		"session_token": "c2Vzc2lvbi10b2tlbg",
		"expiration": "2026-01-02T03:34:05.123Z",
		"serviceID": "KAKAOCERT",
		"linkID": "TESTER",
		"usercode": "1234567890",
		"ipaddress": "192.0.2.1",
		"scope": ["member", "310", "320", "330"]
	}`
)

var testScopes = []string{"member", "310", "320", "330"}

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newTestAuthority(t *testing.T, mode transport.Mode, h http.Handler) *Authority {
	dial, teardown := common.NewTestingDialer(h)
	t.Cleanup(teardown)

	tr, err := transport.New(mode, transport.Options{DialContext: dial, Timeout: 5 * time.Second})
	require.NoError(t, err)

	a, err := New(Config{
		LinkID:    testLinkID,
		SecretKey: testSecretKey,
		URL:       testURL,
		Transport: tr,
	})
	require.NoError(t, err)

	return a
}

func tokenHandler(t *testing.T, captured *capturedRequest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TimePath:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(testTime))
		case "/KAKAOCERT/Token":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*captured = capturedRequest{
				method: r.Method,
				path:   r.URL.Path,
				header: r.Header.Clone(),
				body:   body,
			}
			w.Header().Set("Content-Type", "application/json;charset=utf-8")
			_, _ = w.Write([]byte(testTokenBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestNew_errors(t *testing.T) {
	_, err := New(Config{SecretKey: testSecretKey})
	assert.EqualError(t, err, "missing link id")

	_, err = New(Config{LinkID: testLinkID})
	assert.EqualError(t, err, "missing secret key")

	_, err = New(Config{LinkID: testLinkID, SecretKey: testSecretKey, URL: "auth.linkhub.co.kr"})
	assert.EqualError(t, err, `URI is not absolute: "auth.linkhub.co.kr"`)
}

func TestNew_defaults(t *testing.T) {
	a, err := New(Config{LinkID: testLinkID, SecretKey: testSecretKey})
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, a.EndPointURI.String())
	assert.IsType(t, &transport.Buffered{}, a.Transport)
	assert.Equal(t, testLinkID, a.LinkID())
	assert.Equal(t, testSecretKey, a.SecretKey())
}

func TestAuthority_ServerTime(t *testing.T) {
	for _, mode := range []transport.Mode{transport.ModeBuffered, transport.ModeStream} {
		a := newTestAuthority(t, mode, tokenHandler(t, &capturedRequest{}))

		now, err := a.ServerTime(context.Background())
		require.NoError(t, err, mode)
		assert.Equal(t, time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC), now, mode)
	}
}

func TestAuthority_ServerTime_json_string(t *testing.T) {
	a := newTestAuthority(t, transport.ModeBuffered, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"` + testTime + `"`))
	}))

	now, err := a.ServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testTime, now.Format(time.RFC3339))
}

func TestAuthority_ServerTime_garbage(t *testing.T) {
	a := newTestAuthority(t, transport.ModeBuffered, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("teatime"))
	}))

	_, err := a.ServerTime(context.Background())

	var decErr *common.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, []byte("teatime"), decErr.Body)
}

func TestAuthority_ServerTime_local(t *testing.T) {
	local := time.Date(2026, time.March, 4, 5, 6, 7, 890, time.FixedZone("KST", 9*3600))

	a, err := New(Config{
		LinkID:       testLinkID,
		SecretKey:    testSecretKey,
		UseLocalTime: true,
		Now:          func() time.Time { return local },
	})
	require.NoError(t, err)

	now, err := a.ServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 3, 20, 6, 7, 0, time.UTC), now)
}

func TestAuthority_IssueToken(t *testing.T) {
	for _, mode := range []transport.Mode{transport.ModeBuffered, transport.ModeStream} {
		var captured capturedRequest
		a := newTestAuthority(t, mode, tokenHandler(t, &captured))

		tok, err := a.IssueToken(context.Background(), "KAKAOCERT", "1234567890", testScopes, "")
		require.NoError(t, err, mode)

		assert.Equal(t, "c2Vzc2lvbi10b2tlbg", tok.AccessToken)
		assert.Equal(t, "Bearer", tok.Type())
		assert.Equal(t, time.Date(2026, time.January, 2, 3, 34, 5, 123000000, time.UTC), tok.Expiry)
		assert.Equal(t, "192.0.2.1", tok.Extra("ipaddress"))
		assert.Equal(t, "1234567890", tok.Extra("usercode"))

		assert.Equal(t, http.MethodPost, captured.method)
		assert.JSONEq(t,
			`{"access_id":"1234567890","scope":["member","310","320","330"]}`,
			string(captured.body),
		)
		assert.Equal(t, testTime, captured.header.Get("x-lh-date"))
		assert.Equal(t, "2.0", captured.header.Get("x-lh-version"))
		assert.Empty(t, captured.header.Values("x-lh-forwarded"))
		assert.Equal(t, "LINKHUB TESTER xHrzYJWVFQcnS5BXFvN/U7Zab4U=", captured.header.Get("Authorization"))
		assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	}
}

func TestAuthority_IssueToken_forwarded(t *testing.T) {
	var captured capturedRequest
	a := newTestAuthority(t, transport.ModeBuffered, tokenHandler(t, &captured))

	_, err := a.IssueToken(context.Background(), "KAKAOCERT", "1234567890", testScopes, "*")
	require.NoError(t, err)

	assert.Equal(t, "*", captured.header.Get("x-lh-forwarded"))
	assert.Equal(t, "LINKHUB TESTER MegvCzd7Ztn7S9o/1Re+zgtObFg=", captured.header.Get("Authorization"))
}

func TestAuthority_IssueToken_rejected(t *testing.T) {
	a := newTestAuthority(t, transport.ModeBuffered, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == TimePath {
			_, _ = w.Write([]byte(testTime))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":-11111000,"message":"unregistered link id"}`))
	}))

	_, err := a.IssueToken(context.Background(), "KAKAOCERT", "1234567890", testScopes, "")

	var trErr *common.TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, http.StatusUnauthorized, trErr.StatusCode)
	assert.Equal(t, int64(-11111000), trErr.Code)
	assert.Equal(t, "unregistered link id", trErr.Message)
}

func TestAuthority_IssueToken_missing_session_token(t *testing.T) {
	a := newTestAuthority(t, transport.ModeBuffered, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == TimePath {
			_, _ = w.Write([]byte(testTime))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"expiration":"2026-01-02T03:34:05Z"}`))
	}))

	_, err := a.IssueToken(context.Background(), "KAKAOCERT", "1234567890", testScopes, "")

	var decErr *common.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.ErrorContains(t, err, "expiration")
}
