// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

/*
Package kakaocert is a client for the Kakaocert API: electronic signature,
identity verification and direct debit consent requests delivered to the
receiver through KakaoTalk.

Service

A Service is created from a Config holding the partner credentials:

	svc, err := kakaocert.NewService(kakaocert.Config{
		LinkID:    "TESTER",
		SecretKey: "SwWxqU+0TErBXy/9TVjIPEnI0VTUMMSQZtJf3Ed8q3I=",
	})

The secret key is never sent over the wire. It signs every POST request and
every session token request made to the Linkhub token service.

Requests are submitted on behalf of a client code, the registration number
of the corporate account being billed. The session token of each client
code is obtained on first use and kept until the token service clock says
it has expired:

	receiptID, err := svc.RequestESign(ctx, "1234567890", &kakaocert.RequestESign{
		RequestCommon: kakaocert.RequestCommon{
			CallCenterNum:    "1600-8536",
			ExpiresIn:        60,
			ReceiverBirthDay: "19700101",
			ReceiverHP:       "01012341234",
			ReceiverName:     "Hong Gildong",
			TMSTitle:         "Contract signature",
		},
		Token: "contract-2026-0001",
	})

	res, err := svc.GetESignResult(ctx, "1234567890", receiptID)
	if err == nil && res.State == kakaocert.StateCompleted {
		fmt.Println(res.SignedData)
	}

Transport

Two transports are available. The default, buffered, uses net/http. The
stream transport speaks HTTP/1.0 over a plain connection and is meant for
environments where the standard client misbehaves:

	cfg.Mode = transport.ModeStream

Errors

Every error returned by a Service carries a code and a message, see
common.ErrorCode. The concrete type tells where the failure happened:
*common.ValidationError before any I/O, *common.AuthError while obtaining a
session token, *common.TransportError for network failures and non-200
answers, *common.DecodeError for unexpected response bodies.
*/
package kakaocert
