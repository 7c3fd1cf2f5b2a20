// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/linkhub-go/kakaocert/common"
)

const (
	CMSRequestPath = "/SignDirectDebit/Request"
	CMSResultPath  = "/SignDirectDebit/"
)

// RequestCMS asks the receiver to consent to direct debits from a bank
// account.
type RequestCMS struct {
	RequestCommon

	BankAccountName string `json:"BankAccountName"`
	BankAccountNum  string `json:"BankAccountNum"`
	BankCode        string `json:"BankCode"`
	ClientUserID    string `json:"ClientUserID"`
}

func (o *RequestCMS) Validate() error {
	return validation.ValidateStruct(o,
		append(o.fieldRules(),
			validation.Field(&o.BankAccountName, validation.Required),
			validation.Field(&o.BankAccountNum, validation.Required),
			validation.Field(&o.BankCode, validation.Required),
			validation.Field(&o.ClientUserID, validation.Required),
		)...,
	)
}

type ResultCMS struct {
	ResultCommon
	SignedData string `json:"signedData"`

	BankAccountName string `json:"bankAccountName"`
	BankAccountNum  string `json:"bankAccountNum"`
	BankCode        string `json:"bankCode"`
	ClientUserID    string `json:"clientUserID"`
}

// RequestCMS submits a direct debit consent request on behalf of
// clientCode and returns its receipt id.
func (o *Service) RequestCMS(ctx context.Context, clientCode string, req *RequestCMS) (string, error) {
	if req == nil {
		return "", common.NewValidationError("request", "request is required")
	}
	return o.request(ctx, CMSRequestPath, clientCode, req)
}

func (o *Service) GetCMSResult(ctx context.Context, clientCode, receiptID string) (*ResultCMS, error) {
	var res ResultCMS
	if err := o.result(ctx, CMSResultPath, clientCode, receiptID, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
