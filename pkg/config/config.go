package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

type Schema struct {
	Global   Global     `yaml:"global"`
	Faucet   Faucet     `yaml:"faucet"`
	Networks []*Network `yaml:"networks"`
}

type Global struct {
	LogLevel      string `yaml:"logLevel"`
	LedgerPath    string `yaml:"ledgerPath"`
	WalletLogPath string `yaml:"walletLogPath"`
	KeyFile       string `yaml:"keyFile"`
	KeyFileEnv    string `yaml:"keyFileEnv"`
}

// Faucet holds the claim endpoint and the timing knobs for both claim
// flows. All durations are whole seconds.
type Faucet struct {
	Endpoint    string `yaml:"endpoint"`
	EndpointEnv string `yaml:"endpointEnv"`
	Timeout     int    `yaml:"timeout"`
	MaxAttempts int    `yaml:"maxAttempts"`
	RetryWait   int    `yaml:"retryWait"`
	PacingDelay int    `yaml:"pacingDelay"`
	MinPreDelay int    `yaml:"minPreDelay"`
	MaxPreDelay int    `yaml:"maxPreDelay"`

	MaxClaimsPerDay int `yaml:"maxClaimsPerDay"`
}

type Network struct {
	Name          string `yaml:"name"`
	ChainID       int64  `yaml:"chainId"`
	HttpAddr      string `yaml:"httpAddr"`
	HttpAddrEnv   string `yaml:"httpAddrEnv"`
	Symbol        string `yaml:"symbol"`
	Explorer      string `yaml:"explorer"`
	HttpSSLVerify string `yaml:"httpSSLVerify"`
}

func (s *Schema) Normalize() error {
	if err := s.Global.Normalize(); err != nil {
		return fmt.Errorf("failed to normalize global config: %w", err)
	}
	if err := s.Faucet.Normalize(); err != nil {
		return fmt.Errorf("failed to normalize faucet config: %w", err)
	}
	for _, network := range s.Networks {
		if err := network.Normalize(); err != nil {
			return fmt.Errorf("failed to normalize network %s: %w", network.Name, err)
		}
	}
	return nil
}

func (g *Global) Normalize() error {
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	if g.LedgerPath == "" {
		g.LedgerPath = "faucet_claims.json"
	}
	if g.WalletLogPath == "" {
		g.WalletLogPath = "wallets.txt"
	}
	if g.KeyFileEnv != "" {
		if envValue := os.Getenv(g.KeyFileEnv); envValue != "" {
			g.KeyFile = envValue
		}
	}
	if g.KeyFile == "" {
		g.KeyFile = "pk.txt"
	}
	return nil
}

func (f *Faucet) Normalize() error {
	if f.EndpointEnv != "" {
		if envValue := os.Getenv(f.EndpointEnv); envValue != "" {
			f.Endpoint = envValue
		}
	}
	if f.Timeout == 0 {
		f.Timeout = 30
	}
	if f.MaxAttempts == 0 {
		f.MaxAttempts = 3
	}
	if f.RetryWait == 0 {
		f.RetryWait = 60
	}
	if f.PacingDelay == 0 {
		f.PacingDelay = 5
	}
	if f.MinPreDelay == 0 {
		f.MinPreDelay = 5
	}
	if f.MaxPreDelay == 0 {
		f.MaxPreDelay = 10
	}
	if f.MaxClaimsPerDay == 0 {
		f.MaxClaimsPerDay = 10
	}
	return nil
}

func (n *Network) Normalize() error {
	if n.HttpAddrEnv != "" {
		if envValue := os.Getenv(n.HttpAddrEnv); envValue != "" {
			n.HttpAddr = envValue
		}
	}
	return nil
}

// FindNetwork returns the network with the given name, or nil.
func (s *Schema) FindNetwork(name string) *Network {
	for _, network := range s.Networks {
		if network.Name == name {
			return network
		}
	}
	return nil
}

// DefaultConfig returns the built-in configuration so the tool runs
// without a config file. Both preconfigured test networks are included.
func DefaultConfig() *Schema {
	cfg := &Schema{
		Global: Global{},
		Faucet: Faucet{
			Endpoint: "https://testnet.somnia.network",
		},
		Networks: []*Network{
			{
				Name:     "somnia",
				ChainID:  50312,
				HttpAddr: "https://dream-rpc.somnia.network",
				Symbol:   "STT",
				Explorer: "https://shannon-explorer.somnia.network",
			},
			{
				Name:     "nexus",
				ChainID:  392,
				HttpAddr: "https://rpc.nexus.xyz/http",
				Symbol:   "NEX",
				Explorer: "https://explorer.nexus.xyz",
			},
		},
	}
	// Defaults never fail to normalize.
	_ = cfg.Normalize()
	return cfg
}

func ReadConfigWithError(r io.Reader) (*Schema, error) {
	config := &Schema{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Normalize(); err != nil {
		return nil, fmt.Errorf("failed to normalize config: %w", err)
	}
	return config, nil
}
