package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainops-dev/testnet-funder/pkg/config"
)

// ValidationError represents a validation error with a specific field and message
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var errMsgs []string
	for _, err := range e {
		errMsgs = append(errMsgs, err.Error())
	}
	return strings.Join(errMsgs, "; ")
}

// ConfigValidator handles validation of the entire configuration
type ConfigValidator struct{}

// NewConfigValidator creates a new ConfigValidator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateConfig validates the entire configuration schema
func (v *ConfigValidator) ValidateConfig(cfg *config.Schema) error {
	var allErrors ValidationErrors

	allErrors = append(allErrors, v.validateFaucet(&cfg.Faucet)...)

	if len(cfg.Networks) == 0 {
		allErrors = append(allErrors, ValidationError{
			Field:   "networks",
			Message: "at least one network must be configured",
		})
	}

	seen := make(map[string]bool)
	for _, network := range cfg.Networks {
		allErrors = append(allErrors, v.validateNetwork(network)...)
		if seen[network.Name] {
			allErrors = append(allErrors, ValidationError{
				Field:   "networks",
				Message: fmt.Sprintf("duplicate network name: %s", network.Name),
			})
		}
		seen[network.Name] = true
	}

	if len(allErrors) > 0 {
		return allErrors
	}
	return nil
}

func (v *ConfigValidator) validateFaucet(faucet *config.Faucet) ValidationErrors {
	var errors ValidationErrors

	if faucet.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "faucet.endpoint",
			Message: "faucet endpoint cannot be empty",
		})
	} else if err := validateHTTPURL(faucet.Endpoint); err != nil {
		errors = append(errors, ValidationError{
			Field:   "faucet.endpoint",
			Message: err.Error(),
		})
	}

	if faucet.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "faucet.maxAttempts",
			Message: "must be at least 1",
		})
	}
	if faucet.RetryWait < 0 || faucet.PacingDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "faucet",
			Message: "delays cannot be negative",
		})
	}
	if faucet.MinPreDelay > faucet.MaxPreDelay {
		errors = append(errors, ValidationError{
			Field:   "faucet.minPreDelay",
			Message: "minPreDelay cannot exceed maxPreDelay",
		})
	}
	if faucet.MaxClaimsPerDay < 1 {
		errors = append(errors, ValidationError{
			Field:   "faucet.maxClaimsPerDay",
			Message: "must be at least 1",
		})
	}

	return errors
}

func (v *ConfigValidator) validateNetwork(network *config.Network) ValidationErrors {
	var errors ValidationErrors

	if network.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "network.name",
			Message: "network name cannot be empty",
		})
	}
	if network.ChainID <= 0 {
		errors = append(errors, ValidationError{
			Field:   "network.chainId",
			Message: fmt.Sprintf("chain id must be positive, got %d", network.ChainID),
		})
	}
	if network.Symbol == "" {
		errors = append(errors, ValidationError{
			Field:   "network.symbol",
			Message: "native-token symbol cannot be empty",
		})
	}

	if network.HttpAddr == "" {
		errors = append(errors, ValidationError{
			Field:   "network.httpAddr",
			Message: "HTTP address cannot be empty",
		})
	} else if err := validateHTTPURL(network.HttpAddr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "network.httpAddr",
			Message: err.Error(),
		})
	}

	return errors
}

func validateHTTPURL(raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL host cannot be empty")
	}
	return nil
}

// ValidAddress reports whether s is a well-formed hex EVM address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
