// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/linkhub-go/kakaocert/common"
)

const (
	VerifyAuthRequestPath = "/SignIdentity/Request"
	VerifyAuthResultPath  = "/SignIdentity/"
)

// RequestVerifyAuth asks the receiver to prove their identity.
type RequestVerifyAuth struct {
	RequestCommon
	Token string `json:"Token"`
}

func (o *RequestVerifyAuth) Validate() error {
	return validation.ValidateStruct(o,
		append(o.fieldRules(), validation.Field(&o.Token, validation.Required))...,
	)
}

type ResultVerifyAuth struct {
	ResultCommon
	ReturnToken string `json:"returnToken"`
}

// RequestVerifyAuth submits an identity verification request on behalf of
// clientCode and returns its receipt id.
func (o *Service) RequestVerifyAuth(ctx context.Context, clientCode string, req *RequestVerifyAuth) (string, error) {
	if req == nil {
		return "", common.NewValidationError("request", "request is required")
	}
	return o.request(ctx, VerifyAuthRequestPath, clientCode, req)
}

func (o *Service) GetVerifyAuthResult(ctx context.Context, clientCode, receiptID string) (*ResultVerifyAuth, error) {
	var res ResultVerifyAuth
	if err := o.result(ctx, VerifyAuthResultPath, clientCode, receiptID, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
