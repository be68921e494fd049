// Package ledger tracks faucet claims in a small local JSON file and
// decides whether an address may claim right now. It is the single source
// of truth for the per-address cooldown and the daily claim quota.
package ledger

import (
	"encoding/json"
	"os"

	"github.com/chainops-dev/testnet-funder/pkg/logger"
)

// Ledger is the persisted claim record. Timestamps are epoch milliseconds.
type Ledger struct {
	Claims     map[string]int64 `json:"claims"`
	DailyCount int              `json:"dailyCount"`
	LastReset  int64            `json:"lastReset"`
}

// Store reads and writes the ledger file. Persistence failures are logged
// and never propagated: reads fall back to a zeroed ledger, writes are
// dropped. The ledger is best-effort accounting, not a transactional
// record.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted ledger, or a freshly zeroed one when the file
// is missing or unreadable. nowMillis seeds LastReset for a fresh ledger.
func (s *Store) Load(nowMillis int64) *Ledger {
	fresh := &Ledger{
		Claims:     make(map[string]int64),
		DailyCount: 0,
		LastReset:  nowMillis,
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("failed to read claim ledger %s, starting fresh: %v", s.path, err)
		}
		return fresh
	}

	ledger := &Ledger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		logger.Warnf("failed to parse claim ledger %s, starting fresh: %v", s.path, err)
		return fresh
	}
	if ledger.Claims == nil {
		ledger.Claims = make(map[string]int64)
	}
	return ledger
}

// Save overwrites the ledger file. Last writer wins; a failed write is
// logged and dropped.
func (s *Store) Save(l *Ledger) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		logger.Errorf("failed to marshal claim ledger: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		logger.Errorf("failed to write claim ledger %s: %v", s.path, err)
	}
}
