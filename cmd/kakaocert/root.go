// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert"
	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/transport"
	"github.com/spf13/cobra"
)

type app struct {
	// dial is handed to the service, tests use it to reach their server.
	dial common.DialFunc

	configFile string
	verbose    bool
	output     string
	mode       transport.Mode

	svc *kakaocert.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "kakaocert",
		Short:         "Kakaocert API client",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (default ./kakaocert.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")
	flags.StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")

	flags.String("link-id", "", "partner link id")
	flags.String("secret-key", "", "partner secret key")
	flags.Bool("ip-restrict", true, "keep the IP restriction of session tokens")
	flags.Var(&a.mode, "mode", "transport: buffered or stream")
	flags.Duration("timeout", transport.DefaultTimeout, "timeout of one HTTP exchange")
	flags.String("service-url", "", "Kakaocert API base URL")
	flags.String("auth-url", "", "Linkhub token service base URL")
	flags.StringSlice("ca-cert", nil, "extra trusted CA certificate (PEM), repeatable")
	flags.Bool("use-local-time", false, "use the local clock instead of the token service time")
	flags.StringSlice("scope", nil, "extra session token scope, repeatable")

	root.AddCommand(
		newESignCmd(a),
		newVerifyAuthCmd(a),
		newCMSCmd(a),
		newCallCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.output {
	case "json", "yaml":
	default:
		return fmt.Errorf("unexpected output format %q", a.output)
	}

	cfg, err := loadConfig(cmd, a.configFile)
	if err != nil {
		return err
	}

	level := hclog.Warn
	if a.verbose {
		level = hclog.Debug
	}

	cfg.Logger = hclog.New(&hclog.LoggerOptions{
		Name:   "kakaocert",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
	cfg.DialContext = a.dial

	a.svc, err = kakaocert.NewService(cfg)

	return err
}
