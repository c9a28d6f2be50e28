package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/azrulhm/eplingest/config"
)

type fakeConfig struct {
	cfg *config.Config
}

func (f *fakeConfig) Config() *config.Config {
	return f.cfg
}

func TestConfigHandler_RedactsVaultToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Vault.URL = "https://myvault.vault.azure.net"
	cfg.Vault.Token = "super-secret-token"

	rec := httptest.NewRecorder()
	NewConfigHandler(&fakeConfig{cfg: cfg}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "super-secret-token")

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "REDACTED", decoded.Vault.Token)
	assert.Equal(t, "https://myvault.vault.azure.net", decoded.Vault.URL)
}
