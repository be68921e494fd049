package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainops-dev/testnet-funder/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	v := NewConfigValidator()
	assert.NoError(t, v.ValidateConfig(config.DefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Schema)
		wantErr string
	}{
		{
			name:    "empty faucet endpoint",
			mutate:  func(c *config.Schema) { c.Faucet.Endpoint = "" },
			wantErr: "faucet.endpoint",
		},
		{
			name:    "bad endpoint scheme",
			mutate:  func(c *config.Schema) { c.Faucet.Endpoint = "ftp://faucet" },
			wantErr: "faucet.endpoint",
		},
		{
			name:    "no networks",
			mutate:  func(c *config.Schema) { c.Networks = nil },
			wantErr: "at least one network",
		},
		{
			name:    "zero chain id",
			mutate:  func(c *config.Schema) { c.Networks[0].ChainID = 0 },
			wantErr: "chain id",
		},
		{
			name:    "missing symbol",
			mutate:  func(c *config.Schema) { c.Networks[0].Symbol = "" },
			wantErr: "symbol",
		},
		{
			name:    "missing rpc address",
			mutate:  func(c *config.Schema) { c.Networks[0].HttpAddr = "" },
			wantErr: "HTTP address",
		},
		{
			name: "duplicate network name",
			mutate: func(c *config.Schema) {
				c.Networks[1].Name = c.Networks[0].Name
			},
			wantErr: "duplicate network name",
		},
		{
			name:    "zero max attempts",
			mutate:  func(c *config.Schema) { c.Faucet.MaxAttempts = 0 },
			wantErr: "maxAttempts",
		},
		{
			name:    "inverted pre-delay bounds",
			mutate:  func(c *config.Schema) { c.Faucet.MinPreDelay = 20 },
			wantErr: "minPreDelay",
		},
		{
			name:    "zero daily quota",
			mutate:  func(c *config.Schema) { c.Faucet.MaxClaimsPerDay = 0 },
			wantErr: "maxClaimsPerDay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			err := NewConfigValidator().ValidateConfig(cfg)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidationErrorsAggregate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Faucet.Endpoint = ""
	cfg.Networks[0].ChainID = -1

	err := NewConfigValidator().ValidateConfig(cfg)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "faucet.endpoint")
		assert.Contains(t, err.Error(), "chain id")
	}
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", true},
		{"0x00000000219ab540356cBB839Cbe05303d7705Fa", true},
		{"ab5801a7d398351b8be11c439e05c5b3259aec9b", true},
		{"0x123", false},
		{"", false},
		{"not-an-address", false},
		{"0xZZ5801a7D398351b8bE11C439e05C5B3259aeC9B", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidAddress(tt.address), "address %q", tt.address)
	}
}
