// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Mode is the enumeration of the supported ways of talking to the service.
// It implements the pflag.Value interface so that it can be set from the
// command line.
type Mode string

const (
	// ModeBuffered uses net/http.
	ModeBuffered Mode = "buffered"
	// ModeStream writes HTTP/1.0 by hand over a plain (or TLS) connection,
	// for hosts where the net/http stack is unavailable or intercepted.
	ModeStream Mode = "stream"
)

var _ pflag.Value = (*Mode)(nil)

// String representation of the Mode
func (o *Mode) String() string {
	return string(*o)
}

// Set the value of the Mode
func (o *Mode) Set(v string) error {
	switch v {
	case "", "buffered", "curl":
		*o = ModeBuffered
	case "stream":
		*o = ModeStream
	default:
		return fmt.Errorf("unexpected Mode %q", v)
	}

	return nil
}

// Type returns the string representing the type name (used by pflag).
func (o *Mode) Type() string {
	return "Mode"
}
