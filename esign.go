// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/linkhub-go/kakaocert/common"
)

const (
	ESignRequestPath = "/SignToken/Request"
	ESignResultPath  = "/SignToken/"
)

// RequestESign asks the receiver to sign Token with their KakaoTalk
// certificate.
type RequestESign struct {
	RequestCommon
	Token string `json:"Token"`
}

func (o *RequestESign) Validate() error {
	return validation.ValidateStruct(o,
		append(o.fieldRules(), validation.Field(&o.Token, validation.Required))...,
	)
}

// ResultESign is the outcome of an electronic signature request. SignedData
// is only set once the receiver has signed.
type ResultESign struct {
	ResultCommon
	SignedData string `json:"signedData"`
}

// RequestESign submits an electronic signature request on behalf of
// clientCode and returns its receipt id.
func (o *Service) RequestESign(ctx context.Context, clientCode string, req *RequestESign) (string, error) {
	if req == nil {
		return "", common.NewValidationError("request", "request is required")
	}
	return o.request(ctx, ESignRequestPath, clientCode, req)
}

// GetESignResult returns the current state of the electronic signature
// request identified by receiptID.
func (o *Service) GetESignResult(ctx context.Context, clientCode, receiptID string) (*ResultESign, error) {
	var res ResultESign
	if err := o.result(ctx, ESignResultPath, clientCode, receiptID, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
