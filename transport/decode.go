// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/linkhub-go/kakaocert/common"
)

// gzipMagic is the member header of a deflate-compressed gzip stream.
var gzipMagic = []byte{0x1f, 0x8b, 0x08}

// Payload is a decoded response body: either the raw bytes of a binary
// document or a generic JSON value (map[string]interface{}, []interface{},
// string, json.Number, bool or nil).
type Payload struct {
	ContentType string
	Binary      []byte
	Value       interface{}
}

// IsBinary tells whether the payload is a binary document.
func (p *Payload) IsBinary() bool {
	return p.Binary != nil
}

// Decode classifies a response by content type. PDF documents are returned
// byte for byte, anything else must be JSON.
func Decode(res *Response) (*Payload, error) {
	p := Payload{ContentType: res.ContentType}

	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(res.ContentType)), common.PDFMediaType) {
		p.Binary = res.Body
		if p.Binary == nil {
			p.Binary = []byte{}
		}
		return &p, nil
	}

	if len(bytes.TrimSpace(res.Body)) == 0 {
		return &p, nil
	}

	if err := common.DecodeJSON(res.Body, &p.Value); err != nil {
		return nil, common.NewDecodeError(res.ContentType, res.Body, err)
	}

	return &p, nil
}

// decompress undoes the transfer compression of a body. gzip is detected by
// its magic prefix whatever the headers claim, deflate is only attempted when
// announced.
func decompress(body []byte, contentEncoding string) ([]byte, error) {
	if bytes.HasPrefix(body, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip header: %w", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return out, nil
	}

	if strings.EqualFold(strings.TrimSpace(contentEncoding), "deflate") {
		return inflate(body)
	}

	return body, nil
}

// inflate accepts both zlib-wrapped and raw deflate data, servers disagree on
// what "deflate" means.
func inflate(body []byte) ([]byte, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		out, err := io.ReadAll(zr)
		zr.Close()
		if err == nil {
			return out, nil
		}
	}

	fr := flate.NewReader(bytes.NewReader(body))
	defer fr.Close()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("deflate body: %w", err)
	}
	return out, nil
}

// finish turns what was read off the wire into a Response, shared by both
// transports so that they behave identically past the I/O.
func finish(
	logger hclog.Logger,
	statusCode int,
	status string,
	contentType string,
	contentEncoding string,
	raw []byte,
) (*Response, error) {
	body, err := decompress(raw, contentEncoding)

	logger.Debug("response received", "status", statusCode, "content_type", contentType, "bytes", len(body))

	if statusCode != http.StatusOK {
		if err != nil {
			// the status is what matters, the raw body is kept as the message
			logger.Debug("undecodable error body", "error", err)
			body = raw
		}
		return nil, common.NewStatusError(statusCode, contentType, body)
	}

	if err != nil {
		return nil, common.NewDecodeError(contentType, raw, err)
	}

	return &Response{
		StatusCode:  statusCode,
		Status:      status,
		ContentType: contentType,
		Body:        body,
	}, nil
}
