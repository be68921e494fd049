package currency

import (
	"fmt"
	"math/big"
	"strings"
)

// Unit represents a native-token unit on one of the supported networks.
type Unit struct {
	Name        string
	Symbol      string
	Decimals    int
	Description string
}

// Registry maintains the units known to the tool.
type Registry struct {
	units map[string]*Unit
}

var (
	DefaultWEI = &Unit{
		Name:        "WEI",
		Symbol:      "WEI",
		Decimals:    0,
		Description: "smallest EVM unit",
	}

	DefaultSTT = &Unit{
		Name:        "STT",
		Symbol:      "STT",
		Decimals:    18,
		Description: "Somnia testnet token",
	}

	DefaultNEX = &Unit{
		Name:        "NEX",
		Symbol:      "NEX",
		Decimals:    18,
		Description: "Nexus native token",
	}
)

// NewRegistry creates a new, empty currency registry.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[string]*Unit),
	}
}

// NewDefaultRegistry returns a registry preloaded with the units of the
// built-in networks.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(DefaultWEI)
	r.MustRegister(DefaultSTT)
	r.MustRegister(DefaultNEX)
	return r
}

// Register adds a new currency unit to the registry.
func (r *Registry) Register(unit *Unit) (*Unit, error) {
	if unit.Name == "" {
		return nil, fmt.Errorf("currency unit name cannot be empty")
	}

	normalizedName := strings.ToUpper(unit.Name)
	if _, exists := r.units[normalizedName]; exists {
		return nil, fmt.Errorf("currency unit %s already registered", normalizedName)
	}

	r.units[normalizedName] = unit
	return unit, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(unit *Unit) *Unit {
	u, err := r.Register(unit)
	if err != nil {
		panic(err)
	}
	return u
}

// Get retrieves a currency unit from the registry.
func (r *Registry) Get(name string) (*Unit, error) {
	normalizedName := strings.ToUpper(name)
	unit, exists := r.units[normalizedName]
	if !exists {
		return nil, fmt.Errorf("currency unit %s not found", name)
	}
	return unit, nil
}

// MustGet is like Get but panics on error.
func (r *Registry) MustGet(name string) *Unit {
	unit, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return unit
}

// List returns all registered currency units.
func (r *Registry) List() []*Unit {
	units := make([]*Unit, 0, len(r.units))
	for _, unit := range r.units {
		units = append(units, unit)
	}
	return units
}

// ToWei converts an operator-entered token amount to an integer wei value.
// The conversion goes through big.Float so 18-decimal amounts survive
// intact; the result is truncated toward zero.
func (r *Registry) ToWei(amount float64, unitName string) (*big.Int, error) {
	unit, err := r.Get(unitName)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %f", amount)
	}

	scale := new(big.Float).SetInt(pow10(unit.Decimals))
	value := new(big.Float).SetFloat64(amount)
	value.Mul(value, scale)

	wei, _ := value.Int(nil)
	return wei, nil
}

// FromWei converts an integer wei value into the given unit.
func (r *Registry) FromWei(wei *big.Int, unitName string) (*big.Float, error) {
	unit, err := r.Get(unitName)
	if err != nil {
		return nil, err
	}

	scale := new(big.Float).SetInt(pow10(unit.Decimals))
	value := new(big.Float).SetInt(wei)
	return value.Quo(value, scale), nil
}

func pow10(decimals int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
