// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

// Package linkhub implements auth.Authority on top of the Linkhub token
// service, which mints the session tokens of every Linkhub product and acts
// as the reference clock for request signatures.
package linkhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/auth"
	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/transport"
	"golang.org/x/oauth2"
)

const (
	DefaultURL = "https://auth.linkhub.co.kr"

	// APIVersion is the protocol version announced in x-lh-version.
	APIVersion = "2.0"

	HeaderForwarded = "x-lh-forwarded"

	// AuthScheme prefixes the Authorization header of token requests.
	AuthScheme = "LINKHUB"

	TimePath = "/Time"
)

// Config holds the parameters of an Authority. Only LinkID and SecretKey
// are mandatory.
type Config struct {
	LinkID    string
	SecretKey string

	// URL of the token service, DefaultURL when empty.
	URL string

	// UseLocalTime makes ServerTime return the local clock instead of
	// asking the token service.
	UseLocalTime bool

	// Transport defaults to a buffered transport with default options.
	Transport transport.Transport

	Logger hclog.Logger

	// Now is the local clock, time.Now when nil.
	Now func() time.Time
}

// Authority is the Linkhub token service client. It is safe for concurrent
// use.
type Authority struct {
	EndPointURI *url.URL
	Transport   transport.Transport

	linkID       string
	secretKey    string
	key          []byte
	useLocalTime bool
	now          func() time.Time
	logger       hclog.Logger
}

var _ auth.Authority = (*Authority)(nil)

// New returns an Authority for cfg.
func New(cfg Config) (*Authority, error) {
	if cfg.LinkID == "" {
		return nil, errors.New("missing link id")
	}

	key, err := auth.DecodeSecretKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	o := Authority{
		Transport:    cfg.Transport,
		linkID:       cfg.LinkID,
		secretKey:    cfg.SecretKey,
		key:          key,
		useLocalTime: cfg.UseLocalTime,
		now:          cfg.Now,
		logger:       cfg.Logger,
	}

	uri := cfg.URL
	if uri == "" {
		uri = DefaultURL
	}

	if err := o.SetEndpointURI(uri); err != nil {
		return nil, err
	}

	if o.Transport == nil {
		o.Transport = transport.NewBuffered(transport.Options{Logger: cfg.Logger})
	}

	if o.now == nil {
		o.now = time.Now
	}

	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}

	return &o, nil
}

// SetEndpointURI sets the base URI of the token service.
func (o *Authority) SetEndpointURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("malformed URI: %w", err)
	}

	if !u.IsAbs() {
		return fmt.Errorf("URI is not absolute: %q", uri)
	}

	o.EndPointURI = u

	return nil
}

func (o *Authority) LinkID() string {
	return o.linkID
}

func (o *Authority) SecretKey() string {
	return o.secretKey
}

// ServerTime returns the token service clock, truncated to the second.
func (o *Authority) ServerTime(ctx context.Context) (time.Time, error) {
	if o.useLocalTime {
		return o.now().UTC().Truncate(time.Second), nil
	}

	uri, err := common.ResolveReference(o.EndPointURI.String(), TimePath)
	if err != nil {
		return time.Time{}, err
	}

	res, err := o.Transport.Execute(ctx, &transport.Request{Method: http.MethodGet, URL: uri})
	if err != nil {
		return time.Time{}, err
	}

	return parseServerTime(res)
}

// parseServerTime accepts the bare timestamp the service normally answers
// with, as well as the same timestamp as a JSON string.
func parseServerTime(res *transport.Response) (time.Time, error) {
	text := strings.TrimSpace(string(res.Body))

	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal([]byte(text), &text); err != nil {
			return time.Time{}, common.NewDecodeError(res.ContentType, res.Body, err)
		}
	}

	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, common.NewDecodeError(res.ContentType, res.Body, err)
	}

	return t.UTC(), nil
}

type tokenRequest struct {
	AccessID string   `json:"access_id"`
	Scope    []string `json:"scope"`
}

type tokenResponse struct {
	SessionToken string   `json:"session_token"`
	Expiration   string   `json:"expiration"`
	ServiceID    string   `json:"serviceID"`
	LinkID       string   `json:"linkID"`
	UserCode     string   `json:"usercode"`
	IPAddress    string   `json:"ipaddress"`
	Scope        []string `json:"scope"`
}

// IssueToken asks the token service for a session token of serviceID on
// behalf of accessID. The remaining fields of the answer (serviceID, linkID,
// usercode, ipaddress, scope) are available through Token.Extra.
func (o *Authority) IssueToken(
	ctx context.Context,
	serviceID string,
	accessID string,
	scopes []string,
	forwardIP string,
) (*oauth2.Token, error) {
	if scopes == nil {
		scopes = []string{}
	}

	body, err := json.Marshal(tokenRequest{AccessID: accessID, Scope: scopes})
	if err != nil {
		return nil, err
	}

	path := "/" + serviceID + "/Token"

	uri, err := common.ResolveReference(o.EndPointURI.String(), path)
	if err != nil {
		return nil, err
	}

	now, err := o.ServerTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading server time: %w", err)
	}
	date := auth.FormatTimestamp(now)

	header := transport.Header{
		{Name: auth.HeaderDate, Value: date},
		{Name: auth.HeaderVersion, Value: APIVersion},
	}
	if forwardIP != "" {
		header.Add(HeaderForwarded, forwardIP)
	}
	header.Add("Authorization", AuthScheme+" "+o.linkID+" "+o.sign(body, date, forwardIP, path))
	header.Add("Content-Type", common.JSONMediaType)

	o.logger.Debug("requesting session token", "service", serviceID, "forwarded", forwardIP != "")

	res, err := o.Transport.Execute(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    uri,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return tokenFromResponse(res)
}

// sign computes the token request signature. Unlike service calls the
// target also covers the forwarded address and the request path, and does
// not end with a line feed.
func (o *Authority) sign(body []byte, date, forwardIP, path string) string {
	lines := []string{http.MethodPost, auth.ContentMD5(body), date}
	if forwardIP != "" {
		lines = append(lines, forwardIP)
	}
	lines = append(lines, APIVersion, path)

	return auth.HMACSHA1(o.key, strings.Join(lines, "\n"))
}

func tokenFromResponse(res *transport.Response) (*oauth2.Token, error) {
	payload, err := transport.Decode(res)
	if err != nil {
		return nil, err
	}

	extra, ok := payload.Value.(map[string]interface{})
	if !ok {
		return nil, common.NewDecodeError(res.ContentType, res.Body, errors.New("token response is not a JSON object"))
	}

	var tr tokenResponse
	if err := common.DecodeValue(extra, &tr); err != nil {
		return nil, common.NewDecodeError(res.ContentType, res.Body, err)
	}

	if tr.SessionToken == "" {
		return nil, common.NewDecodeError(res.ContentType, res.Body, errors.New("missing session_token"))
	}

	expiry, err := time.Parse(time.RFC3339Nano, tr.Expiration)
	if err != nil {
		return nil, common.NewDecodeError(res.ContentType, res.Body, fmt.Errorf("expiration: %w", err))
	}

	tok := &oauth2.Token{
		AccessToken: tr.SessionToken,
		TokenType:   "Bearer",
		Expiry:      expiry.UTC(),
	}

	return tok.WithExtra(extra), nil
}
