// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package kakaocert

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/linkhub-go/kakaocert/auth"
	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/transport"
	"github.com/mitchellh/mapstructure"
)

// Config carries everything needed to build a Service. The zero values of
// the optional fields select the production defaults.
type Config struct {
	LinkID    string `mapstructure:"link_id" json:"link_id"`
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`

	// IPRestrict defaults to true when nil.
	IPRestrict *bool `mapstructure:"ip_restrict" json:"ip_restrict"`

	Mode    transport.Mode `mapstructure:"mode" json:"mode"`
	Timeout time.Duration  `mapstructure:"timeout" json:"timeout"`

	ServiceURL string `mapstructure:"service_url" json:"service_url"`
	AuthURL    string `mapstructure:"auth_url" json:"auth_url"`

	// CACerts lists PEM files trusted on top of the system roots.
	CACerts []string `mapstructure:"ca_certs" json:"ca_certs"`

	UseLocalTime bool `mapstructure:"use_local_time" json:"use_local_time"`

	// Scopes are requested in addition to DefaultScopes.
	Scopes []string `mapstructure:"scopes" json:"scopes"`

	Logger hclog.Logger `mapstructure:"-" json:"-"`

	// DialContext overrides the dialer of both the service and the token
	// authority connections.
	DialContext common.DialFunc `mapstructure:"-" json:"-"`
}

// Configure fills o from a generic map, as read from a configuration file,
// and validates the result. Unknown keys are rejected.
func (o *Config) Configure(cfg map[string]interface{}) error {
	decoded := struct {
		Config `mapstructure:",squash"`
		Rest   map[string]interface{} `mapstructure:",remain"`
	}{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(cfg); err != nil {
		return err
	}

	if len(decoded.Rest) > 0 {
		var unexpected []string
		for k := range decoded.Rest {
			unexpected = append(unexpected, k)
		}
		sort.Strings(unexpected)
		return fmt.Errorf("unexpected fields in config: %s",
			strings.Join(unexpected, ", "))
	}

	decoded.Config.Logger = o.Logger
	decoded.Config.DialContext = o.DialContext
	*o = decoded.Config

	return o.Validate()
}

// Validate checks the configuration without touching the network.
func (o Config) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.LinkID, validation.Required),
		validation.Field(&o.SecretKey, validation.Required, validation.By(isSecretKey)),
		validation.Field(&o.Mode, validation.By(isMode)),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&o.ServiceURL, validation.By(isAbsoluteURL)),
		validation.Field(&o.AuthURL, validation.By(isAbsoluteURL)),
		validation.Field(&o.Scopes, validation.Each(validation.Required)),
	)

	return asValidationError(err)
}

func (o Config) ipRestrict() bool {
	return o.IPRestrict == nil || *o.IPRestrict
}

func isSecretKey(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := auth.DecodeSecretKey(s); err != nil {
		return errors.New("must be base64url encoded")
	}
	return nil
}

func isMode(value interface{}) error {
	m, _ := value.(transport.Mode)
	return new(transport.Mode).Set(string(m))
}

func isAbsoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// asValidationError folds ozzo errors into a single *common.ValidationError
// named after the first offending field.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	for k := range errs {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	return common.NewValidationError(fields[0], errs.Error())
}
