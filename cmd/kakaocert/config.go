// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/linkhub-go/kakaocert"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = "kakaocert"

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"link-id":        "link_id",
	"secret-key":     "secret_key",
	"ip-restrict":    "ip_restrict",
	"mode":           "mode",
	"timeout":        "timeout",
	"service-url":    "service_url",
	"auth-url":       "auth_url",
	"ca-cert":        "ca_certs",
	"use-local-time": "use_local_time",
	"scope":          "scopes",
}

// loadConfig merges, by increasing precedence, the configuration file, the
// KAKAOCERT_* environment variables and the command line flags.
func loadConfig(cmd *cobra.Command, configFile string) (kakaocert.Config, error) {
	var cfg kakaocert.Config

	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// no configuration file is fine, a broken one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(configName)
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return cfg, err
		}
	}

	// only what was actually set reaches Configure, which owns the defaults
	settings := make(map[string]interface{})
	for _, key := range v.AllKeys() {
		if v.IsSet(key) {
			settings[key] = v.Get(key)
		}
	}

	if err := cfg.Configure(settings); err != nil {
		return cfg, err
	}

	return cfg, nil
}
