// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
)

// DialFunc has the signature of net.Dialer.DialContext
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewTestingDialer starts an HTTP test server (with a configurable request
// handler) and returns a dial function that connects to it whatever address
// is asked for, so that production URLs can be used unchanged in tests. The
// server's shutdown switch is returned too.
func NewTestingDialer(handler http.Handler) (dial DialFunc, closerFn func()) {
	srv := httptest.NewServer(handler)

	dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, srv.Listener.Addr().String())
	}

	closerFn = srv.Close

	return
}

// NewTestingHTTPClient creates an HTTP test server and an http.Client wired
// to it.
func NewTestingHTTPClient(handler http.Handler) (cli *http.Client, closerFn func()) {
	dial, closerFn := NewTestingDialer(handler)

	cli = &http.Client{
		Transport: &http.Transport{
			DialContext: dial,
		},
	}

	return cli, closerFn
}
