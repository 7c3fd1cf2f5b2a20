// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/auth"
	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/linkhub"
	"github.com/linkhub-go/kakaocert/transport"
)

const (
	// ServiceID identifies the service to the token authority.
	ServiceID = "KAKAOCERT"

	DefaultServiceURL = "https://kakaocert-api.linkhub.co.kr"

	// APIVersion is announced in the x-lh-version header of signed calls.
	APIVersion = "2.0"
)

// DefaultScopes returns the scopes every session token is requested with.
func DefaultScopes() []string {
	return []string{"member", "310", "320", "330"}
}

// Service is the primary interface to the Kakaocert API. It owns the
// session token cache of the accounts it is used for and is safe for
// concurrent use.
type Service struct {
	// Transport performs the HTTP exchanges.
	Transport transport.Transport

	// EndPointURI is the top-level service API URL. Individual operations
	// endpoints are relative to this.
	EndPointURI *url.URL

	Authority auth.Authority
	Tokens    *auth.TokenCache
	Signer    *auth.Signer

	Logger hclog.Logger
}

// NewService creates a Service authenticating against the Linkhub token
// service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	authority, err := linkhub.New(linkhub.Config{
		LinkID:       cfg.LinkID,
		SecretKey:    cfg.SecretKey,
		URL:          cfg.AuthURL,
		UseLocalTime: cfg.UseLocalTime,
		Transport:    tr,
		Logger:       named(cfg.Logger, "linkhub"),
	})
	if err != nil {
		return nil, err
	}

	return newService(cfg, authority, tr)
}

// NewServiceWithAuthority creates a Service on top of an arbitrary token
// authority. The link id and secret key are taken from authority.
func NewServiceWithAuthority(cfg Config, authority auth.Authority) (*Service, error) {
	if authority == nil {
		return nil, errors.New("no authority supplied")
	}

	cfg.LinkID = authority.LinkID()
	cfg.SecretKey = authority.SecretKey()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	return newService(cfg, authority, tr)
}

func newTransport(cfg Config) (transport.Transport, error) {
	var mode transport.Mode
	if err := mode.Set(string(cfg.Mode)); err != nil {
		return nil, err
	}

	opts := transport.Options{
		Timeout:     cfg.Timeout,
		DialContext: cfg.DialContext,
		Logger:      named(cfg.Logger, "transport"),
	}

	if len(cfg.CACerts) > 0 {
		tlsConfig, err := transport.NewTLSConfig(cfg.CACerts)
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = tlsConfig
	}

	return transport.New(mode, opts)
}

func newService(cfg Config, authority auth.Authority, tr transport.Transport) (*Service, error) {
	signer, err := auth.NewSigner(authority.LinkID(), authority.SecretKey())
	if err != nil {
		return nil, err
	}

	s := Service{
		Transport: tr,
		Authority: authority,
		Signer:    signer,
		Logger:    named(cfg.Logger, "service"),
	}

	s.Tokens = auth.NewTokenCache(authority, ServiceID, DefaultScopes(), named(cfg.Logger, "tokens"))
	s.Tokens.SetIPRestriction(cfg.ipRestrict())
	for _, scope := range cfg.Scopes {
		s.Tokens.AddScope(scope)
	}

	uri := cfg.ServiceURL
	if uri == "" {
		uri = DefaultServiceURL
	}

	if err := s.SetEndpointURI(uri); err != nil {
		return nil, err
	}

	return &s, nil
}

func named(logger hclog.Logger, name string) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger.Named(name)
}

// SetTransport replaces the transport used for service calls. The token
// authority keeps its own.
func (o *Service) SetTransport(tr transport.Transport) error {
	if tr == nil {
		return errors.New("no transport supplied")
	}
	o.Transport = tr
	return nil
}

// SetEndpointURI sets the URI of the Kakaocert API endpoint.
func (o *Service) SetEndpointURI(uri string) error {
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

// SetIPRestriction toggles the IP restriction of the session tokens issued
// from now on.
func (o *Service) SetIPRestriction(on bool) {
	o.Tokens.SetIPRestriction(on)
}

// AddScope adds scope to the session tokens issued from now on.
func (o *Service) AddScope(scope string) {
	o.Tokens.AddScope(scope)
}

// Call performs one authenticated exchange and returns the decoded
// response. uri is relative to EndPointURI. When accountID is not empty the
// call carries the bearer session token of that account. POST calls send
// payload as JSON and are signed, other calls have no body.
func (o *Service) Call(
	ctx context.Context,
	method string,
	uri string,
	accountID string,
	payload interface{},
) (*transport.Payload, error) {
	logger := o.logger().With("request_id", uuid.NewString())

	target, err := common.ResolveReference(o.EndPointURI.String(), uri)
	if err != nil {
		return nil, common.NewValidationError("uri", err.Error())
	}

	req := transport.Request{Method: method, URL: target}

	if accountID != "" {
		tok, err := o.Tokens.Token(ctx, accountID)
		if err != nil {
			logger.Debug("no session token", "error", err)
			return nil, err
		}
		req.Header.Add("Authorization", tok.Type()+" "+tok.AccessToken)
	}

	req.Header.Add("Content-Type", common.JSONMediaType)

	if method == http.MethodPost {
		body := []byte{}
		if payload != nil {
			if body, err = json.Marshal(payload); err != nil {
				return nil, common.NewValidationError("payload", err.Error())
			}
		}

		now, err := o.Authority.ServerTime(ctx)
		if err != nil {
			return nil, common.NewAuthError(err)
		}

		req.Header = append(req.Header, o.Signer.Headers(method, body, auth.FormatTimestamp(now), APIVersion)...)
		req.Body = body
	}

	logger.Debug("calling service", "method", method, "uri", uri)
	if logger.IsTrace() {
		names := make([]string, 0, len(req.Header))
		for _, f := range req.Header {
			names = append(names, f.Name)
		}
		logger.Trace("request headers", "names", names)
	}

	res, err := o.Transport.Execute(ctx, &req)
	if err != nil {
		logger.Debug("call failed", "error", err)
		return nil, err
	}

	return transport.Decode(res)
}

// request submits payload to uri and returns the receipt id the service
// assigned to it.
func (o *Service) request(ctx context.Context, uri, accountID string, payload validation.Validatable) (string, error) {
	if err := asValidationError(payload.Validate()); err != nil {
		return "", err
	}

	p, err := o.Call(ctx, http.MethodPost, uri, accountID, payload)
	if err != nil {
		return "", err
	}

	var receipt struct {
		ReceiptID string `json:"receiptId"`
	}

	if err := decodePayload(p, &receipt); err != nil {
		return "", err
	}

	if receipt.ReceiptID == "" {
		body, _ := json.Marshal(p.Value)
		return "", common.NewDecodeError(p.ContentType, body, errors.New("missing receiptId"))
	}

	return receipt.ReceiptID, nil
}

// result fetches the outcome of receiptID from uriPrefix+receiptID into out.
func (o *Service) result(ctx context.Context, uriPrefix, accountID, receiptID string, out interface{}) error {
	if err := validation.Validate(receiptID, validation.Required); err != nil {
		return common.NewValidationError("receiptID", "receipt id is required")
	}

	if err := validation.Validate(receiptID, validation.By(isPathSegment)); err != nil {
		return common.NewValidationError("receiptID", err.Error())
	}

	p, err := o.Call(ctx, http.MethodGet, uriPrefix+url.PathEscape(receiptID), accountID, nil)
	if err != nil {
		return err
	}

	return decodePayload(p, out)
}

// isPathSegment accepts values that stay a single segment once appended to
// a result path.
func isPathSegment(value interface{}) error {
	s, _ := value.(string)
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return errors.New("receipt id must not contain path separators or dot segments")
	}
	return nil
}

// decodePayload maps a JSON object onto a result structure. Fields missing
// from the response are left at their zero value.
func decodePayload(p *transport.Payload, out interface{}) error {
	if p.IsBinary() {
		return common.NewDecodeError(p.ContentType, p.Binary, errors.New("unexpected binary response"))
	}

	if _, ok := p.Value.(map[string]interface{}); !ok {
		body, _ := json.Marshal(p.Value)
		return common.NewDecodeError(p.ContentType, body, errors.New("response is not a JSON object"))
	}

	if err := common.DecodeValue(p.Value, out); err != nil {
		body, _ := json.Marshal(p.Value)
		return common.NewDecodeError(p.ContentType, body, err)
	}

	return nil
}

func (o *Service) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}
