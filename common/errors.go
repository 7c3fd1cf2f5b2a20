// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/moogar0880/problems"
)

// UnknownErrorCode is the code reported when a failure carries no service
// supplied code, e.g. an error body that is not the usual {code, message}
// JSON object.
const UnknownErrorCode int64 = -99999999

// ServiceError is the code and message pair every failure surfaced by this
// module carries. The more specific error types embed it.
type ServiceError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e ServiceError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// ErrorCode returns the code of the error
func (e ServiceError) ErrorCode() int64 {
	return e.Code
}

// ErrorMessage returns the human readable message of the error
func (e ServiceError) ErrorMessage() string {
	return e.Message
}

// ValidationError reports a caller mistake detected before any network
// activity.
type ValidationError struct {
	ServiceError
	Field string
}

// NewValidationError returns a ValidationError for the named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		ServiceError: ServiceError{Code: UnknownErrorCode, Message: message},
		Field:        field,
	}
}

// AuthError reports a failure to obtain a session token from the token
// authority.
type AuthError struct {
	ServiceError
	Err error
}

func (e *AuthError) Error() string {
	return "token issuance failed: " + e.ServiceError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError wraps err, keeping the code and message of any ServiceError
// found in its chain.
func NewAuthError(err error) *AuthError {
	ae := &AuthError{
		ServiceError: ServiceError{Code: UnknownErrorCode, Message: err.Error()},
		Err:          err,
	}

	var c coder
	if errors.As(err, &c) {
		ae.Code = c.ErrorCode()
		ae.Message = c.ErrorMessage()
	}

	return ae
}

// TransportError reports either a network level failure (Err is set,
// StatusCode is zero) or a response with an unexpected HTTP status.
type TransportError struct {
	ServiceError
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return "request failed: " + e.ServiceError.Error()
	}
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.ServiceError.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a failure that prevented a response from being
// received.
func NewNetworkError(err error) *TransportError {
	return &TransportError{
		ServiceError: ServiceError{Code: UnknownErrorCode, Message: err.Error()},
		Err:          err,
	}
}

// NewStatusError builds the error for a response whose status is not 200,
// from the already decompressed response body.
func NewStatusError(statusCode int, contentType string, body []byte) *TransportError {
	return &TransportError{
		ServiceError: *ParseServiceError(contentType, body),
		StatusCode:   statusCode,
	}
}

// DecodeError reports a response body that could not be interpreted. The
// raw body is kept so that no data is lost.
type DecodeError struct {
	ServiceError
	ContentType string
	Body        []byte
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode %q response: %s", e.ContentType, e.ServiceError.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError wraps err, keeping the offending body.
func NewDecodeError(contentType string, body []byte, err error) *DecodeError {
	return &DecodeError{
		ServiceError: ServiceError{Code: UnknownErrorCode, Message: string(body)},
		ContentType:  contentType,
		Body:         body,
		Err:          err,
	}
}

// ParseServiceError extracts the code and message from an error response
// body. A {code, message} JSON object is used as is, a problem+json document
// is mapped onto its status and detail, and anything else becomes the
// message verbatim with UnknownErrorCode.
func ParseServiceError(contentType string, body []byte) *ServiceError {
	if isProblem(contentType) {
		if se, ok := parseProblem(body); ok {
			return se
		}
	}

	var decoded struct {
		Code    *json.Number `json:"code"`
		Message *string      `json:"message"`
	}

	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Message != nil {
		se := &ServiceError{Code: UnknownErrorCode, Message: *decoded.Message}
		if decoded.Code != nil {
			if code, err := decoded.Code.Int64(); err == nil {
				se.Code = code
			}
		}
		return se
	}

	return &ServiceError{Code: UnknownErrorCode, Message: string(body)}
}

// ErrorCode returns the code carried by err, or UnknownErrorCode and false
// when err was not produced by this module.
func ErrorCode(err error) (int64, bool) {
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode(), true
	}
	return UnknownErrorCode, false
}

type coder interface {
	error
	ErrorCode() int64
	ErrorMessage() string
}

func isProblem(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), problems.ProblemMediaType)
}

// parseProblem maps an RFC 7807 document, as returned by the service
// gateway, onto the module error shape.
func parseProblem(body []byte) (*ServiceError, bool) {
	var prob problems.DefaultProblem

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&prob); err != nil {
		return nil, false
	}

	msg := prob.Detail
	if msg == "" {
		msg = prob.ProblemTitle()
	}

	return &ServiceError{Code: int64(prob.ProblemStatus()), Message: msg}, true
}
