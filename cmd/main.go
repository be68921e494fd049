package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/chainops-dev/testnet-funder/pkg/config"
	"github.com/chainops-dev/testnet-funder/pkg/currency"
	"github.com/chainops-dev/testnet-funder/pkg/faucet"
	"github.com/chainops-dev/testnet-funder/pkg/ledger"
	"github.com/chainops-dev/testnet-funder/pkg/logger"
	"github.com/chainops-dev/testnet-funder/pkg/shell"
	"github.com/chainops-dev/testnet-funder/pkg/validation"
	"github.com/chainops-dev/testnet-funder/pkg/version"
	"github.com/chainops-dev/testnet-funder/pkg/wallet"
)

var (
	cfgPath     = flag.String("config", "", "path to the config file (optional, built-in defaults otherwise)")
	showVersion = flag.Bool("version", false, "print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		versionInfo := version.GetVersion()
		versionJSON, _ := json.Marshal(versionInfo)
		fmt.Println(string(versionJSON))
		return
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		file, err := os.Open(*cfgPath)
		if err != nil {
			panic(fmt.Errorf("failed to open config file: %v", err))
		}
		loaded, err := config.ReadConfigWithError(file)
		file.Close()
		if err != nil {
			panic(fmt.Errorf("failed to read config: %v", err))
		}
		cfg = loaded
	}

	// init logger
	level, err := zapcore.ParseLevel(cfg.Global.LogLevel)
	if err != nil {
		panic(fmt.Errorf("failed to parse log level: %v", err))
	}
	err = logger.InitLogger(logger.WithLevel(level), logger.WithEncodeTime("timestamp", zapcore.ISO8601TimeEncoder))
	if err != nil {
		panic(fmt.Errorf("failed to init logger: %v", err))
	}

	// Validate configuration before any network operations
	configValidator := validation.NewConfigValidator()
	if err := configValidator.ValidateConfig(cfg); err != nil {
		logger.Fatalf("Configuration validation failed: %v", err)
	}
	logger.Infof("Configuration validated successfully")

	currencyRegistry := currency.NewDefaultRegistry()

	store := ledger.NewStore(cfg.Global.LedgerPath)
	tracker := ledger.NewTracker(store, cfg.Faucet.MaxClaimsPerDay)

	faucetClient := faucet.NewClient(
		cfg.Faucet.Endpoint,
		time.Duration(cfg.Faucet.Timeout)*time.Second,
		faucet.WithPreDelay(cfg.Faucet.MinPreDelay, cfg.Faucet.MaxPreDelay),
	)

	logbook := wallet.NewLogbook(cfg.Global.WalletLogPath)

	session := shell.NewSession(cfg, tracker, faucetClient, currencyRegistry, logbook)
	session.Run(context.Background())
}
