// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// State is the progress of a request as reported by the result endpoints.
type State int

const (
	StateWaiting State = iota
	StateCompleted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateCompleted:
		return "completed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// RequestCommon holds the fields shared by every kind of request: who is
// asked, through which call center, and what the KakaoTalk message says.
type RequestCommon struct {
	CallCenterNum    string `json:"CallCenterNum"`
	ExpiresIn        int    `json:"Expires_in"`
	PayLoad          string `json:"PayLoad,omitempty"`
	ReceiverBirthDay string `json:"ReceiverBirthDay"`
	ReceiverHP       string `json:"ReceiverHP"`
	ReceiverName     string `json:"ReceiverName"`
	SubClientID      string `json:"SubClientID,omitempty"`
	TMSMessage       string `json:"TMSMessage,omitempty"`
	TMSTitle         string `json:"TMSTitle"`

	AllowSimpleRegistYN bool `json:"isAllowSimpleRegistYN"`
	VerifyNameYN        bool `json:"isVerifyNameYN"`
}

func (o *RequestCommon) fieldRules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&o.CallCenterNum, validation.Required),
		validation.Field(&o.ExpiresIn, validation.Required, validation.Min(1)),
		validation.Field(&o.ReceiverBirthDay, validation.Required, validation.Length(8, 8)),
		validation.Field(&o.ReceiverHP, validation.Required),
		validation.Field(&o.ReceiverName, validation.Required),
		validation.Field(&o.TMSTitle, validation.Required),
	}
}

// ResultCommon holds the fields shared by every kind of result.
type ResultCommon struct {
	ReceiptID        string `json:"receiptID"`
	RegDT            string `json:"regDT"`
	State            State  `json:"state"`
	ReceiverHP       string `json:"receiverHP"`
	ReceiverName     string `json:"receiverName"`
	ReceiverBirthday string `json:"receiverBirthday"`
	ExpiresIn        int    `json:"expires_in"`
	CallCenterNum    string `json:"callCenterNum"`
	Token            string `json:"token"`

	AllowSimpleRegistYN bool `json:"allowSimpleRegistYN"`
	VerifyNameYN        bool `json:"verifyNameYN"`

	PayLoad    string `json:"payload"`
	RequestDT  string `json:"requestDT"`
	ExpireDT   string `json:"expireDT"`
	ClientCode string `json:"clientCode"`
	ClientName string `json:"clientName"`
	TMSTitle   string `json:"tmstitle"`
	TMSMessage string `json:"tmsmessage"`

	SubClientName string `json:"subClientName"`
	SubClientCode string `json:"subClientCode"`
	ViewDT        string `json:"viewDT"`
	CompleteDT    string `json:"completeDT"`
	VerifyDT      string `json:"verifyDT"`
}
