// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http/httputil"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/common"
)

// Stream executes requests by writing HTTP/1.0 directly on a connection and
// parsing the status line and header block itself. The connection is closed
// after every exchange.
type Stream struct {
	Timeout     time.Duration
	TLSConfig   *tls.Config
	DialContext common.DialFunc
	Logger      hclog.Logger
}

// NewStream instantiates a Stream transport from opts.
func NewStream(opts Options) *Stream {
	return &Stream{
		Timeout:     opts.timeout(),
		TLSConfig:   opts.TLSConfig,
		DialContext: opts.DialContext,
		Logger:      opts.logger(),
	}
}

// Execute performs req and returns the decompressed 200 response.
func (o *Stream) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Header.validate(); err != nil {
		return nil, common.NewNetworkError(err)
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, common.NewNetworkError(fmt.Errorf("malformed URI: %w", err))
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	logger := o.logger()
	logger.Debug("sending request", "mode", ModeStream, "method", req.Method, "url", req.URL)

	conn, err := o.connect(ctx, u)
	if err != nil {
		return nil, common.NewNetworkError(fmt.Errorf("%s %q: %w", req.Method, req.URL, err))
	}
	defer conn.Close()

	// unblock reads and writes as soon as the context is done
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write(buildRequest(req, u)); err != nil {
		return nil, common.NewNetworkError(ctxErr(ctx, fmt.Errorf("writing request: %w", err)))
	}

	statusCode, status, header, raw, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		return nil, common.NewNetworkError(ctxErr(ctx, err))
	}

	return finish(
		logger,
		statusCode,
		status,
		header.Get("Content-Type"),
		header.Get("Content-Encoding"),
		raw,
	)
}

func (o *Stream) connect(ctx context.Context, u *url.URL) (net.Conn, error) {
	port := u.Port()
	switch u.Scheme {
	case "https":
		if port == "" {
			port = "443"
		}
	case "http":
		if port == "" {
			port = "80"
		}
	default:
		return nil, fmt.Errorf("unsupported URI scheme %q", u.Scheme)
	}

	dial := o.DialContext
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	conn, err := dial(ctx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return nil, err
	}

	if u.Scheme != "https" {
		return conn, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if o.TLSConfig != nil {
		cfg = o.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = u.Hostname()
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("TLS handshake: %w", err)
	}

	return tlsConn, nil
}

// buildRequest renders the request in HTTP/1.0 wire format. Header lines are
// joined with CRLF by hand, the way the service expects them.
func buildRequest(req *Request, u *url.URL) []byte {
	lines := []string{
		fmt.Sprintf("%s %s HTTP/1.0", req.Method, u.RequestURI()),
		"Host: " + u.Host,
		"Accept-Encoding: gzip,deflate",
		"Connection: close",
	}
	lines = append(lines, req.Header.Lines()...)
	if req.Body != nil {
		lines = append(lines, "Content-Length: "+strconv.Itoa(len(req.Body)))
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(lines, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.Write(req.Body)

	return buf.Bytes()
}

// readResponse reads the status line, the header block and the body off r.
func readResponse(r *bufio.Reader) (int, string, textproto.MIMEHeader, []byte, error) {
	tp := textproto.NewReader(r)

	line, err := tp.ReadLine()
	if err != nil {
		return 0, "", nil, nil, fmt.Errorf("reading status line: %w", err)
	}

	statusCode, status, err := parseStatusLine(line)
	if err != nil {
		return 0, "", nil, nil, err
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil && !(errors.Is(err, io.EOF) && header != nil) {
		return 0, "", nil, nil, fmt.Errorf("reading header block: %w", err)
	}

	var body io.Reader = r
	if strings.EqualFold(header.Get("Transfer-Encoding"), "chunked") {
		body = httputil.NewChunkedReader(r)
	} else if cl := header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return 0, "", nil, nil, fmt.Errorf("invalid Content-Length %q", cl)
		}
		body = io.LimitReader(r, n)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return 0, "", nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	return statusCode, status, header, raw, nil
}

// parseStatusLine splits "HTTP/1.1 200 OK" into 200 and "200 OK".
func parseStatusLine(line string) (int, string, error) {
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return 0, "", fmt.Errorf("malformed status line %q", line)
	}

	status = strings.TrimSpace(status)
	codeText, _, _ := strings.Cut(status, " ")

	code, err := strconv.Atoi(codeText)
	if err != nil || len(codeText) != 3 {
		return 0, "", fmt.Errorf("malformed status code in %q", line)
	}

	return code, status, nil
}

func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w (%v)", cerr, err)
	}
	return err
}

func (o *Stream) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}
