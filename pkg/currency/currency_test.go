package currency

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistryUnits(t *testing.T) {
	r := NewDefaultRegistry()

	for _, name := range []string{"WEI", "STT", "NEX"} {
		unit, err := r.Get(name)
		assert.NoError(t, err)
		assert.Equal(t, name, unit.Name)
	}

	// Lookup is case-insensitive.
	unit, err := r.Get("stt")
	assert.NoError(t, err)
	assert.Equal(t, "STT", unit.Name)

	assert.Len(t, r.List(), 3)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(DefaultSTT)
	assert.NoError(t, err)
	_, err = r.Register(DefaultSTT)
	assert.Error(t, err)
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(&Unit{})
	assert.Error(t, err)
}

func TestToWei(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name   string
		amount float64
		unit   string
		want   string
	}{
		{"one token", 1, "STT", "1000000000000000000"},
		{"fractional", 0.5, "NEX", "500000000000000000"},
		{"small fraction", 0.000001, "STT", "1000000000000"},
		{"zero", 0, "STT", "0"},
		{"wei passthrough", 42, "WEI", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := r.ToWei(tt.amount, tt.unit)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
		})
	}
}

func TestToWeiErrors(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.ToWei(1, "DOGE")
	assert.Error(t, err)

	_, err = r.ToWei(-1, "STT")
	assert.Error(t, err)
}

func TestFromWei(t *testing.T) {
	r := NewDefaultRegistry()

	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	if !ok {
		t.Fatal("failed to parse wei")
	}

	value, err := r.FromWei(wei, "STT")
	assert.NoError(t, err)
	assert.Equal(t, "1.5", value.Text('f', 1))
}

func TestWeiRoundTrip(t *testing.T) {
	r := NewDefaultRegistry()

	wei, err := r.ToWei(2.25, "NEX")
	assert.NoError(t, err)

	back, err := r.FromWei(wei, "NEX")
	assert.NoError(t, err)
	assert.Equal(t, "2.25", back.Text('f', 2))
}
