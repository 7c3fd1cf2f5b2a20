// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linkhub-go/kakaocert/transport"
)

const (
	HeaderDate    = "x-lh-date"
	HeaderVersion = "x-lh-version"
	HeaderAuth    = "x-kc-auth"

	// TimestampLayout is the UTC form of the x-lh-date header.
	TimestampLayout = "2006-01-02T15:04:05Z"
)

// FormatTimestamp renders t the way the x-lh-date header carries it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DecodeSecretKey decodes a base64url secret key into the raw HMAC key.
// Padding is optional.
func DecodeSecretKey(secretKey string) ([]byte, error) {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(strings.TrimSpace(secretKey))

	key, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(std, "="))
	if err != nil {
		return nil, fmt.Errorf("malformed secret key: %w", err)
	}

	if len(key) == 0 {
		return nil, errors.New("missing secret key")
	}

	return key, nil
}

// ContentMD5 returns base64(MD5(body)). An empty body digests to the MD5 of
// the empty string.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HMACSHA1 returns base64(HMAC-SHA1(target, key)).
func HMACSHA1(key []byte, target string) string {
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(target))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Signer computes the request signature of service calls. It holds no
// mutable state and is safe for concurrent use.
type Signer struct {
	linkID string
	key    []byte
}

// NewSigner decodes secretKey once and returns a Signer for linkID.
func NewSigner(linkID, secretKey string) (*Signer, error) {
	if linkID == "" {
		return nil, errors.New("missing link id")
	}

	key, err := DecodeSecretKey(secretKey)
	if err != nil {
		return nil, err
	}

	return &Signer{linkID: linkID, key: key}, nil
}

// LinkID returns the partner identifier put in the x-kc-auth header.
func (o *Signer) LinkID() string {
	return o.linkID
}

// Sign returns the signature of a call: the HMAC-SHA1 of the method, the body
// digest, the timestamp and the API version, each terminated by a line feed.
func (o *Signer) Sign(method string, body []byte, timestamp, version string) string {
	var target strings.Builder

	for _, line := range []string{strings.ToUpper(method), ContentMD5(body), timestamp, version} {
		target.WriteString(line)
		target.WriteByte('\n')
	}

	return HMACSHA1(o.key, target.String())
}

// Headers returns the x-lh-date, x-lh-version and x-kc-auth headers of a
// call.
func (o *Signer) Headers(method string, body []byte, timestamp, version string) transport.Header {
	return transport.Header{
		{Name: HeaderDate, Value: timestamp},
		{Name: HeaderVersion, Value: version},
		{Name: HeaderAuth, Value: o.linkID + " " + o.Sign(method, body, timestamp, version)},
	}
}
