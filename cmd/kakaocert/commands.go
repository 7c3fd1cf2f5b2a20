// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/linkhub-go/kakaocert"
	"github.com/spf13/cobra"
)

// kind describes one request family of the API: how to submit a request and
// how to fetch its result.
type kind struct {
	name    string
	short   string
	newReq  func() interface{}
	request func(ctx context.Context, svc *kakaocert.Service, corp string, req interface{}) (string, error)
	result  func(ctx context.Context, svc *kakaocert.Service, corp, receiptID string) (interface{}, error)
}

func newESignCmd(a *app) *cobra.Command {
	return newKindCmd(a, kind{
		name:   "esign",
		short:  "Electronic signature requests",
		newReq: func() interface{} { return &kakaocert.RequestESign{} },
		request: func(ctx context.Context, svc *kakaocert.Service, corp string, req interface{}) (string, error) {
			return svc.RequestESign(ctx, corp, req.(*kakaocert.RequestESign))
		},
		result: func(ctx context.Context, svc *kakaocert.Service, corp, receiptID string) (interface{}, error) {
			return svc.GetESignResult(ctx, corp, receiptID)
		},
	})
}

func newVerifyAuthCmd(a *app) *cobra.Command {
	return newKindCmd(a, kind{
		name:   "verifyauth",
		short:  "Identity verification requests",
		newReq: func() interface{} { return &kakaocert.RequestVerifyAuth{} },
		request: func(ctx context.Context, svc *kakaocert.Service, corp string, req interface{}) (string, error) {
			return svc.RequestVerifyAuth(ctx, corp, req.(*kakaocert.RequestVerifyAuth))
		},
		result: func(ctx context.Context, svc *kakaocert.Service, corp, receiptID string) (interface{}, error) {
			return svc.GetVerifyAuthResult(ctx, corp, receiptID)
		},
	})
}

func newCMSCmd(a *app) *cobra.Command {
	return newKindCmd(a, kind{
		name:   "cms",
		short:  "Direct debit consent requests",
		newReq: func() interface{} { return &kakaocert.RequestCMS{} },
		request: func(ctx context.Context, svc *kakaocert.Service, corp string, req interface{}) (string, error) {
			return svc.RequestCMS(ctx, corp, req.(*kakaocert.RequestCMS))
		},
		result: func(ctx context.Context, svc *kakaocert.Service, corp, receiptID string) (interface{}, error) {
			return svc.GetCMSResult(ctx, corp, receiptID)
		},
	})
}

func newKindCmd(a *app, k kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   k.name,
		Short: k.short,
	}

	var corp, file string

	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Submit a request read as JSON from --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := k.newReq()
			if err := readJSON(cmd, file, req); err != nil {
				return err
			}

			receiptID, err := k.request(cmd.Context(), a.svc, corp, req)
			if err != nil {
				return err
			}

			return a.print(cmd.OutOrStdout(), map[string]string{"receiptId": receiptID})
		},
	}
	requestCmd.Flags().StringVarP(&file, "file", "f", "-", `request JSON file, "-" for stdin`)

	resultCmd := &cobra.Command{
		Use:   "result RECEIPT_ID",
		Short: "Fetch the result of a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := k.result(cmd.Context(), a.svc, corp, args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), res)
		},
	}

	for _, c := range []*cobra.Command{requestCmd, resultCmd} {
		c.Flags().StringVar(&corp, "corp", "", "client code the request is made for")
		_ = c.MarkFlagRequired("corp")
	}

	cmd.AddCommand(requestCmd, resultCmd)

	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	var corp, file, out string

	cmd := &cobra.Command{
		Use:   "call METHOD URI",
		Short: "Perform a raw authenticated call",
		Long: `Perform a raw authenticated call. POST bodies are read from --file.
Binary answers (PDF documents) are written to --out, or to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])

			var payload interface{}
			if method == "POST" && file != "" {
				var body json.RawMessage
				if err := readJSON(cmd, file, &body); err != nil {
					return err
				}
				payload = body
			}

			p, err := a.svc.Call(cmd.Context(), method, args[1], corp, payload)
			if err != nil {
				return err
			}

			if !p.IsBinary() {
				return a.print(cmd.OutOrStdout(), p.Value)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(p.Binary)
				return err
			}

			return os.WriteFile(out, p.Binary, 0o600)
		},
	}

	cmd.Flags().StringVar(&corp, "corp", "", "client code the call is made for")
	cmd.Flags().StringVarP(&file, "file", "f", "", `POST body JSON file, "-" for stdin`)
	cmd.Flags().StringVar(&out, "out", "", "file receiving binary answers")

	return cmd
}

func readJSON(cmd *cobra.Command, file string, v interface{}) error {
	var r io.Reader

	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}

	return nil
}
