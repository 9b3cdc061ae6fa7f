package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CROPTRACE_CONFIG", "")
	t.Setenv("CHAINCODE_ID", "")
	t.Setenv("CHAINCODE_SERVER_ADDRESS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ExternalService())
	assert.Equal(t, "info", cfg.Log.Spec)
	assert.False(t, cfg.Chaincode.TLS.Enabled)
}

func TestLoad_StandardChaincodeEnv(t *testing.T) {
	t.Setenv("CROPTRACE_CONFIG", "")
	t.Setenv("CHAINCODE_ID", "croptrace_1.0:abc123")
	t.Setenv("CHAINCODE_SERVER_ADDRESS", "0.0.0.0:9999")
	t.Setenv("CROPTRACE_LOG_SPEC", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ExternalService())
	assert.Equal(t, "croptrace_1.0:abc123", cfg.Chaincode.ID)
	assert.Equal(t, "0.0.0.0:9999", cfg.Chaincode.Address)
	assert.Equal(t, "debug", cfg.Log.Spec)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croptrace.yaml")
	content := []byte(`chaincode:
  id: croptrace_1.0:def456
  address: 127.0.0.1:7052
  tls:
    enabled: true
    cert: /etc/croptrace/tls/server.crt
    key: /etc/croptrace/tls/server.key
log:
  spec: croptrace.cropcontract=debug:info
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CROPTRACE_CONFIG", path)
	t.Setenv("CHAINCODE_ID", "")
	t.Setenv("CHAINCODE_SERVER_ADDRESS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "croptrace_1.0:def456", cfg.Chaincode.ID)
	assert.Equal(t, "127.0.0.1:7052", cfg.Chaincode.Address)
	assert.True(t, cfg.Chaincode.TLS.Enabled)
	assert.Equal(t, "/etc/croptrace/tls/server.key", cfg.Chaincode.TLS.Key)
	assert.Equal(t, "croptrace.cropcontract=debug:info", cfg.Log.Spec)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CROPTRACE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"peer launched", Config{}, false},
		{"service without id", Config{Chaincode: ChaincodeConfig{Address: ":9999"}}, true},
		{"service", Config{Chaincode: ChaincodeConfig{ID: "cc:1", Address: ":9999"}}, false},
		{"tls without address", Config{Chaincode: ChaincodeConfig{TLS: TLSConfig{Enabled: true, Cert: "c", Key: "k"}}}, true},
		{"tls without key", Config{Chaincode: ChaincodeConfig{ID: "cc:1", Address: ":9999", TLS: TLSConfig{Enabled: true, Cert: "c"}}}, true},
		{"tls", Config{Chaincode: ChaincodeConfig{ID: "cc:1", Address: ":9999", TLS: TLSConfig{Enabled: true, Cert: "c", Key: "k"}}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
