// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/common"
)

// DefaultTimeout bounds a whole exchange when Options.Timeout is not set.
const DefaultTimeout = 10 * time.Second

// HeaderField is a single request header line.
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Duplicate names are allowed
// and kept in position.
type Header []HeaderField

// Add appends a header field.
func (h *Header) Add(name, value string) {
	*h = append(*h, HeaderField{Name: name, Value: value})
}

// Get returns the value of the first field named name (case insensitive),
// or "" if there is none.
func (h Header) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Lines renders the fields as "Name: Value" wire lines.
func (h Header) Lines() []string {
	lines := make([]string, 0, len(h))
	for _, f := range h {
		lines = append(lines, f.Name+": "+f.Value)
	}
	return lines
}

func (h Header) validate() error {
	for _, f := range h {
		if f.Name == "" || strings.ContainsAny(f.Name, " :\r\n") {
			return fmt.Errorf("invalid header name %q", f.Name)
		}
		if strings.ContainsAny(f.Value, "\r\n") {
			return fmt.Errorf("invalid value for header %q", f.Name)
		}
	}
	return nil
}

// Request is everything needed to perform one call.
type Request struct {
	Method string
	URL    string
	Header Header
	Body   []byte
}

// Response is a fully read response whose body has already been
// decompressed. Only 200 responses are returned by a Transport, every other
// status is turned into a *common.TransportError.
type Response struct {
	StatusCode  int
	Status      string
	ContentType string
	Body        []byte
}

// Transport executes requests against the service. Implementations must be
// safe for concurrent use.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Options configures the transports built by New.
type Options struct {
	// Timeout bounds one exchange, connection set-up included. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// TLSConfig is used for https URLs. nil means the system defaults.
	TLSConfig *tls.Config

	// DialContext replaces the default dialer, mostly for tests.
	DialContext common.DialFunc

	Logger hclog.Logger
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// New returns the Transport implementing mode.
func New(mode Mode, opts Options) (Transport, error) {
	switch mode {
	case ModeBuffered, "":
		return NewBuffered(opts), nil
	case ModeStream:
		return NewStream(opts), nil
	default:
		return nil, fmt.Errorf("unexpected Mode %q", mode)
	}
}
