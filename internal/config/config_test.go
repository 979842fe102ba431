package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
store:
  baseURL: "https://demo.firebaseio.com"
ledger:
  rpcURL: "http://localhost:8545"
  contractAddress: "0x1111111111111111111111111111111111111111"
  privateKey: "${TEST_EFIR_KEY}"
auth:
  jwtSecret: "s3cret"
`

func TestLoadExpandsEnvSecrets(t *testing.T) {
	t.Setenv("TEST_EFIR_KEY", "deadbeef")

	conf, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Ledger.PrivateKey != "deadbeef" {
		t.Fatalf("expected env-expanded key, got %q", conf.Ledger.PrivateKey)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_EFIR_KEY", "deadbeef")

	conf, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Server.Listen != ":3000" {
		t.Fatalf("default listen: %q", conf.Server.Listen)
	}
	if conf.Ledger.GasLimit != 500000 {
		t.Fatalf("default gas limit: %d", conf.Ledger.GasLimit)
	}
	if conf.Auth.OTPTTLSeconds != 300 {
		t.Fatalf("default otp ttl: %d", conf.Auth.OTPTTLSeconds)
	}
}

func TestLoadRejectsMissingSigner(t *testing.T) {
	// An unset env var expands to empty, which must fail validation rather
	// than start the service without a signing identity.
	os.Unsetenv("TEST_EFIR_KEY")

	_, err := Load(writeConfig(t, minimalConfig))
	if err == nil {
		t.Fatal("expected validation error for empty private key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
