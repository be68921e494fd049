package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "claims.json"))

	l := store.Load(1700000000000)

	assert.NotNil(t, l.Claims)
	assert.Empty(t, l.Claims)
	assert.Equal(t, 0, l.DailyCount)
	assert.Equal(t, int64(1700000000000), l.LastReset)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store := NewStore(path)
	l := store.Load(42)

	assert.Empty(t, l.Claims)
	assert.Equal(t, 0, l.DailyCount)
	assert.Equal(t, int64(42), l.LastReset)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json")
	store := NewStore(path)

	original := &Ledger{
		Claims: map[string]int64{
			"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B": 1700000000000,
			"0x00000000219ab540356cBB839Cbe05303d7705Fa": 1700000360000,
		},
		DailyCount: 2,
		LastReset:  1699990000000,
	}
	store.Save(original)

	loaded := store.Load(0)
	assert.Equal(t, original.Claims, loaded.Claims)
	assert.Equal(t, original.DailyCount, loaded.DailyCount)
	assert.Equal(t, original.LastReset, loaded.LastReset)
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	// Writing into a directory that does not exist must not panic or error
	// out to the caller.
	store := NewStore(filepath.Join(t.TempDir(), "no", "such", "dir", "claims.json"))
	store.Save(&Ledger{Claims: map[string]int64{}})
}
