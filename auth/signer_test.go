// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLinkID    = "TESTER"
	testSecretKey = "c2VjcmV0LWtleS1mb3ItdGVzdHM"
	testTimestamp = "2026-01-02T03:04:05Z"
	testBody      = `{"receiverHP":"01012341234"}`
)

func TestDecodeSecretKey(t *testing.T) {
	key, err := DecodeSecretKey(testSecretKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-key-for-tests"), key)

	// padded form decodes the same
	key, err = DecodeSecretKey(testSecretKey + "=")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-key-for-tests"), key)

	// url-safe alphabet
	key, err = DecodeSecretKey("-_-__g")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfb, 0xff, 0xbf, 0xfe}, key)

	_, err = DecodeSecretKey("not*base64")
	assert.ErrorContains(t, err, "malformed secret key")

	_, err = DecodeSecretKey("")
	assert.EqualError(t, err, "missing secret key")
}

func TestContentMD5(t *testing.T) {
	assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", ContentMD5(nil))
	assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", ContentMD5([]byte{}))
	assert.Equal(t, "Hy+mO8ucdA9eRBg7CVjSQw==", ContentMD5([]byte(testBody)))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, time.January, 2, 12, 4, 5, 0, time.FixedZone("KST", 9*3600))
	assert.Equal(t, testTimestamp, FormatTimestamp(ts))
}

func TestNewSigner_errors(t *testing.T) {
	_, err := NewSigner("", testSecretKey)
	assert.EqualError(t, err, "missing link id")

	_, err = NewSigner(testLinkID, "")
	assert.EqualError(t, err, "missing secret key")
}

func TestSigner_Sign(t *testing.T) {
	s, err := NewSigner(testLinkID, testSecretKey)
	require.NoError(t, err)

	sig := s.Sign("POST", []byte(testBody), testTimestamp, "2.0")
	assert.Equal(t, "+cbMMJkOFVjwNKJ+eWdK8KxBH08=", sig)

	// method case is normalised
	assert.Equal(t, sig, s.Sign("post", []byte(testBody), testTimestamp, "2.0"))
}

func TestSigner_Sign_deterministic(t *testing.T) {
	s, err := NewSigner(testLinkID, testSecretKey)
	require.NoError(t, err)

	a := s.Sign("POST", []byte(testBody), testTimestamp, "2.0")
	b := s.Sign("POST", []byte(testBody), testTimestamp, "2.0")
	assert.Equal(t, a, b)
}

func TestSigner_Sign_avalanche(t *testing.T) {
	s, err := NewSigner(testLinkID, testSecretKey)
	require.NoError(t, err)

	base := s.Sign("POST", []byte(testBody), testTimestamp, "2.0")

	tweaked := []byte(testBody)
	tweaked[len(tweaked)-3] = '5'

	assert.NotEqual(t, base, s.Sign("POST", tweaked, testTimestamp, "2.0"))
	assert.NotEqual(t, base, s.Sign("POST", []byte(testBody), "2026-01-02T03:04:06Z", "2.0"))
	assert.NotEqual(t, base, s.Sign("POST", []byte(testBody), testTimestamp, "1.0"))
	assert.NotEqual(t, base, s.Sign("GET", []byte(testBody), testTimestamp, "2.0"))

	other, err := NewSigner(testLinkID, "b3RoZXIta2V5")
	require.NoError(t, err)
	assert.NotEqual(t, base, other.Sign("POST", []byte(testBody), testTimestamp, "2.0"))
}

func TestSigner_Headers(t *testing.T) {
	s, err := NewSigner(testLinkID, testSecretKey)
	require.NoError(t, err)

	h := s.Headers("POST", []byte(testBody), testTimestamp, "2.0")

	require.Len(t, h, 3)
	assert.Equal(t, testTimestamp, h.Get(HeaderDate))
	assert.Equal(t, "2.0", h.Get(HeaderVersion))
	assert.Equal(t, "TESTER +cbMMJkOFVjwNKJ+eWdK8KxBH08=", h.Get(HeaderAuth))
	assert.Equal(t, testLinkID, s.LinkID())
}
