// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/common"
)

// Buffered executes requests with net/http, one round trip per call, and
// reads the whole response before returning.
type Buffered struct {
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// NewBuffered instantiates a Buffered transport from opts.
func NewBuffered(opts Options) *Buffered {
	dial := opts.DialContext
	if dial == nil {
		dial = (&net.Dialer{Timeout: opts.timeout()}).DialContext
	}

	return &Buffered{
		HTTPClient: &http.Client{
			Timeout: opts.timeout(),
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				DialContext:     dial,
				TLSClientConfig: opts.TLSConfig,
				// decompression is handled by finish, on the raw bytes
				DisableCompression: true,
			},
		},
		Logger: opts.logger(),
	}
}

// Execute performs req and returns the decompressed 200 response.
func (o *Buffered) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Header.validate(); err != nil {
		return nil, common.NewNetworkError(err)
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, common.NewNetworkError(
			fmt.Errorf("%s %q, request creation failed: %w", req.Method, req.URL, err),
		)
	}

	for _, f := range req.Header {
		hreq.Header.Add(f.Name, f.Value)
	}
	hreq.Header.Set("Accept-Encoding", "gzip,deflate")

	logger := o.logger()
	logger.Debug("sending request", "mode", ModeBuffered, "method", req.Method, "url", req.URL)

	res, err := o.HTTPClient.Do(hreq)
	if err != nil {
		return nil, common.NewNetworkError(fmt.Errorf("%s %q: %w", req.Method, req.URL, err))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, common.NewNetworkError(fmt.Errorf("reading response body: %w", err))
	}

	return finish(
		logger,
		res.StatusCode,
		res.Status,
		res.Header.Get("Content-Type"),
		res.Header.Get("Content-Encoding"),
		raw,
	)
}

func (o *Buffered) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}
