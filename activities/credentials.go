package activities

import (
	"context"
	"log/slog"

	"github.com/azrulhm/eplingest/store"
	"github.com/azrulhm/eplingest/vault"
)

// SecretNames lists the vault secrets holding the upload service principal.
type SecretNames struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// VaultCredentials resolves the upload service principal from a Key Vault.
type VaultCredentials struct {
	client  *vault.Client
	secrets SecretNames
	logger  *slog.Logger
}

// NewVaultCredentials creates a resolver reading the named secrets.
func NewVaultCredentials(client *vault.Client, secrets SecretNames, logger *slog.Logger) *VaultCredentials {
	return &VaultCredentials{
		client:  client,
		secrets: secrets,
		logger:  logger.With("component", "credentials"),
	}
}

// ResolveCredentials fetches the three service principal secrets. Any
// missing secret fails the resolution; there is no partial principal.
func (v *VaultCredentials) ResolveCredentials(ctx context.Context) (store.Credentials, error) {
	clientID, err := v.client.Secret(ctx, v.secrets.ClientID)
	if err != nil {
		return store.Credentials{}, err
	}
	clientSecret, err := v.client.Secret(ctx, v.secrets.ClientSecret)
	if err != nil {
		return store.Credentials{}, err
	}
	tenantID, err := v.client.Secret(ctx, v.secrets.TenantID)
	if err != nil {
		return store.Credentials{}, err
	}

	v.logger.Debug("resolved service principal", "client_id_secret", v.secrets.ClientID)
	return store.Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TenantID:     tenantID,
	}, nil
}
