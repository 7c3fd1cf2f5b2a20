// Copyright 2026 Contributors to the Kakaocert Go SDK project.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linkhub-go/kakaocert"
	"github.com/linkhub-go/kakaocert/common"
	"github.com/linkhub-go/kakaocert/transport"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecretKey = "c2VjcmV0LWtleS1mb3ItdGVzdHM"
	testReceiptID = "020010914420500001"
)

// executeCommand runs a fresh root command and returns what it wrote to
// stdout.
func executeCommand(t *testing.T, a *app, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		root.SetIn(stdin)
	}

	err := root.Execute()

	return out.String(), err
}

func fakeKakaocert(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/Time", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("2026-01-02T03:04:05Z"))
	})
	mux.HandleFunc("/KAKAOCERT/Token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_token":"c2Vzc2lvbg","expiration":"2026-01-02T03:34:05Z"}`))
	})
	mux.HandleFunc(kakaocert.ESignRequestPath, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"ReceiverName":"Hong Gildong"`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"receiptId":"` + testReceiptID + `"}`))
	})
	mux.HandleFunc(kakaocert.ESignResultPath+testReceiptID, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"receiptID":"` + testReceiptID + `","state":1,"signedData":"c2lnbmVk"}`))
	})
	mux.HandleFunc("/SignToken/"+testReceiptID+"/PDF", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 document"))
	})

	return mux
}

func newTestApp(t *testing.T) *app {
	dial, teardown := common.NewTestingDialer(fakeKakaocert(t))
	t.Cleanup(teardown)

	t.Setenv("KAKAOCERT_LINK_ID", "TESTER")
	t.Setenv("KAKAOCERT_SECRET_KEY", testSecretKey)
	t.Setenv("KAKAOCERT_SERVICE_URL", "http://kakaocert.example")
	t.Setenv("KAKAOCERT_AUTH_URL", "http://auth.linkhub.example")

	return &app{dial: dial}
}

const testRequest = `{
	"CallCenterNum": "1600-8536",
	"Expires_in": 60,
	"ReceiverBirthDay": "19700101",
	"ReceiverHP": "01012341234",
	"ReceiverName": "Hong Gildong",
	"TMSTitle": "Contract signature",
	"Token": "contract-2026-0001"
}`

func TestESign_request(t *testing.T) {
	a := newTestApp(t)

	out, err := executeCommand(t, a, strings.NewReader(testRequest),
		"esign", "request", "--corp", "1234567890", "--mode", "stream")
	require.NoError(t, err)

	assert.JSONEq(t, `{"receiptId":"`+testReceiptID+`"}`, out)
	assert.IsType(t, &transport.Stream{}, a.svc.Transport)
}

func TestESign_result_yaml(t *testing.T) {
	a := newTestApp(t)

	out, err := executeCommand(t, a, nil,
		"esign", "result", testReceiptID, "--corp", "1234567890", "-o", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "receiptID: ")
	assert.Contains(t, out, testReceiptID)
	assert.Contains(t, out, "state: 1")
	assert.Contains(t, out, "signedData: c2lnbmVk")
}

func TestESign_result_missing_corp(t *testing.T) {
	a := newTestApp(t)

	_, err := executeCommand(t, a, nil, "esign", "result", testReceiptID)
	assert.ErrorContains(t, err, `required flag(s) "corp" not set`)
}

func TestCall_pdf(t *testing.T) {
	a := newTestApp(t)
	dest := filepath.Join(t.TempDir(), "doc.pdf")

	_, err := executeCommand(t, a, nil,
		"call", "get", "/SignToken/"+testReceiptID+"/PDF", "--corp", "1234567890", "--out", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 document", string(data))
}

func TestOutput_unexpected(t *testing.T) {
	a := newTestApp(t)

	_, err := executeCommand(t, a, nil, "esign", "result", testReceiptID, "--corp", "1", "-o", "xml")
	assert.EqualError(t, err, `unexpected output format "xml"`)
}

func TestLoadConfig_file_env_and_flags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kakaocert.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
link_id: FROMFILE
secret_key: `+testSecretKey+`
mode: stream
timeout: 3s
scopes:
  - "340"
`), 0o600))

	t.Setenv("KAKAOCERT_LINK_ID", "FROMENV")

	cmd := newRootCmd(&app{})
	var cfg kakaocert.Config

	sub := &cobra.Command{
		Use: "probe",
		RunE: func(c *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(c, file)
			return err
		},
	}
	cmd.AddCommand(sub)
	// the probe skips the service set-up of the real commands
	cmd.PersistentPreRunE = nil
	cmd.SetArgs([]string{"probe", "--timeout", "7s", "--ip-restrict=false"})
	cmd.SetOut(io.Discard)

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "FROMENV", cfg.LinkID)
	assert.Equal(t, testSecretKey, cfg.SecretKey)
	assert.Equal(t, transport.ModeStream, cfg.Mode)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"340"}, cfg.Scopes)
	require.NotNil(t, cfg.IPRestrict)
	assert.False(t, *cfg.IPRestrict)
}

func TestLoadConfig_unexpected_key(t *testing.T) {
	file := filepath.Join(t.TempDir(), "kakaocert.yaml")
	require.NoError(t, os.WriteFile(file, []byte("link_id: X\nsecret_key: "+testSecretKey+"\npassword: nope\n"), 0o600))

	_, err := executeCommand(t, &app{}, nil, "--config", file, "esign", "result", testReceiptID, "--corp", "1")
	assert.EqualError(t, err, "unexpected fields in config: password")
}
