// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// JSONMediaType is sent as Content-Type on every call. The service is
	// not picky about casing.
	JSONMediaType = "application/json"

	// PDFMediaType prefixes the content type of binary document responses.
	PDFMediaType = "application/pdf"
)

// ResolveReference resolves referenceURI against baseURI, leaving absolute
// references untouched.
func ResolveReference(baseURI, referenceURI string) (string, error) {
	u, err := url.Parse(referenceURI)
	if err != nil {
		return "", fmt.Errorf("parsing reference URI: %w", err)
	}

	if u.IsAbs() {
		return referenceURI, nil
	}

	base, err := url.Parse(baseURI)
	if err != nil {
		return "", fmt.Errorf("parsing base URI: %w", err)
	}

	// keep any path prefix of the base, service URIs are all rooted
	base.Path = strings.TrimSuffix(base.Path, "/") + "/"
	u.Path = strings.TrimPrefix(u.Path, "/")
	u.RawPath = strings.TrimPrefix(u.RawPath, "/")

	return base.ResolveReference(u).String(), nil
}

// DecodeJSON decodes a single JSON document from body into v. Numbers are
// kept as json.Number so that large integer codes survive untouched.
func DecodeJSON(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// trailing garbage means the body was not one JSON document
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON document")
	}

	return nil
}

// DecodeValue copies a generic JSON value, as produced by DecodeJSON, into
// the struct pointed to by out. Fields are matched on their json tags.
// Missing fields keep their zero value and numbers are accepted in place of
// strings and vice versa. Embedded structs are flattened, as encoding/json
// does.
func DecodeValue(in interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return dec.Decode(in)
}
