// Package wallet generates throwaway keypairs and keeps the append-only
// wallet log. Generated keys are written out once and never rewritten.
package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainops-dev/testnet-funder/pkg/logger"
)

// Wallet is a freshly generated keypair. Address is the checksummed hex
// form, PrivateKey the raw hex without 0x prefix.
type Wallet struct {
	Address    string
	PrivateKey string
}

// Generate produces a new secp256k1 keypair.
func Generate() (Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to generate key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return Wallet{}, fmt.Errorf("error casting public key to ECDSA")
	}

	return Wallet{
		Address:    crypto.PubkeyToAddress(*publicKey).Hex(),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(privateKey)),
	}, nil
}

// Logbook appends generated wallets to a plain-text file, one
// address:privateKey line per wallet.
type Logbook struct {
	path string
}

func NewLogbook(path string) *Logbook {
	return &Logbook{path: path}
}

// Append writes one wallet line. The file is opened in append mode on
// every call; lines are never deduplicated or rewritten.
func (b *Logbook) Append(w Wallet) error {
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open wallet log %s: %w", b.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s:%s\n", w.Address, w.PrivateKey); err != nil {
		return fmt.Errorf("failed to append to wallet log %s: %w", b.path, err)
	}

	logger.Debugf("recorded wallet %s in %s", w.Address, b.path)
	return nil
}

// LoadSigningKey reads the funding wallet's private key from a local file.
// The key is read fresh on every transfer session and never cached
// elsewhere on disk.
func LoadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	keyHex := strings.TrimSpace(string(data))
	keyHex = strings.TrimPrefix(keyHex, "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("key file %s is empty", path)
	}

	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key from %s: %w", path, err)
	}
	return privateKey, nil
}
