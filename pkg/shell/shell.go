// Package shell is the interactive menu. It sequences the claim ledger,
// faucet client, and transfer runner; all prompting goes through an
// explicit Session so the core packages stay free of interactive I/O.
package shell

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/chainops-dev/testnet-funder/pkg/config"
	"github.com/chainops-dev/testnet-funder/pkg/currency"
	"github.com/chainops-dev/testnet-funder/pkg/faucet"
	"github.com/chainops-dev/testnet-funder/pkg/ledger"
	"github.com/chainops-dev/testnet-funder/pkg/logger"
	"github.com/chainops-dev/testnet-funder/pkg/transfer"
	"github.com/chainops-dev/testnet-funder/pkg/validation"
	"github.com/chainops-dev/testnet-funder/pkg/wallet"
)

// Runner is the transfer surface the shell needs; satisfied by
// *transfer.Runner and replaced in tests.
type Runner interface {
	Balance(ctx context.Context, key *ecdsa.PrivateKey) (*big.Int, error)
	RunSession(ctx context.Context, key *ecdsa.PrivateKey, opts transfer.SessionOptions) error
	Close()
}

// Session owns the reader/writer pair for one interactive run. There is no
// package-level prompt state.
type Session struct {
	in  *bufio.Reader
	out io.Writer

	cfg          *config.Schema
	tracker      *ledger.Tracker
	faucetClient faucet.Fauceter
	registry     *currency.Registry
	logbook      *wallet.Logbook

	singlePolicy faucet.Policy
	bulkPolicy   faucet.Policy

	newRunner func(*config.Network, *wallet.Logbook) (Runner, error)
	loadKey   func(string) (*ecdsa.PrivateKey, error)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIO replaces stdin/stdout. Tests drive the menu through this.
func WithIO(in io.Reader, out io.Writer) SessionOption {
	return func(s *Session) {
		s.in = bufio.NewReader(in)
		s.out = out
	}
}

// WithPolicies replaces the claim policies.
func WithPolicies(single, bulk faucet.Policy) SessionOption {
	return func(s *Session) {
		s.singlePolicy = single
		s.bulkPolicy = bulk
	}
}

// WithRunnerFactory replaces the transfer-runner constructor.
func WithRunnerFactory(f func(*config.Network, *wallet.Logbook) (Runner, error)) SessionOption {
	return func(s *Session) {
		s.newRunner = f
	}
}

// WithKeyLoader replaces the signing-key loader.
func WithKeyLoader(f func(string) (*ecdsa.PrivateKey, error)) SessionOption {
	return func(s *Session) {
		s.loadKey = f
	}
}

func NewSession(cfg *config.Schema, tracker *ledger.Tracker, faucetClient faucet.Fauceter,
	registry *currency.Registry, logbook *wallet.Logbook, opts ...SessionOption) *Session {
	s := &Session{
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		cfg:          cfg,
		tracker:      tracker,
		faucetClient: faucetClient,
		registry:     registry,
		logbook:      logbook,
		singlePolicy: &faucet.RetryOnRateLimit{
			Attempts: cfg.Faucet.MaxAttempts,
			Wait:     time.Duration(cfg.Faucet.RetryWait) * time.Second,
		},
		bulkPolicy: &faucet.NoRetryFixedPacing{
			Delay: time.Duration(cfg.Faucet.PacingDelay) * time.Second,
		},
		newRunner: func(n *config.Network, b *wallet.Logbook) (Runner, error) {
			return transfer.NewRunner(n, b)
		},
		loadKey: wallet.LoadSigningKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run presents the menu until the operator picks exit. Operation failures
// are printed and the loop continues; nothing here terminates the process.
func (s *Session) Run(ctx context.Context) {
	for {
		s.printMenu()
		choice, err := s.readLine("Select an option: ")
		if err != nil {
			// EOF on stdin ends the session like an explicit exit.
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.guard(func() error { return s.claimSingle(ctx) })
		case "2":
			s.guard(func() error { return s.claimBulk(ctx) })
		case "3":
			s.guard(func() error { return s.runTransfers(ctx, "somnia") })
		case "4":
			s.guard(func() error { return s.runTransfers(ctx, "nexus") })
		case "5":
			s.guard(func() error { return s.showStatus() })
		case "6":
			fmt.Fprintln(s.out, "Bye.")
			return
		default:
			color.New(color.FgYellow).Fprintln(s.out, "Invalid option, pick 1-6.")
		}
	}
}

// guard keeps any single operation failure from escaping the menu loop.
func (s *Session) guard(op func() error) {
	if err := op(); err != nil {
		logger.Errorf("operation failed: %v", err)
		color.New(color.FgRed).Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Session) printMenu() {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(s.out, "\n=== Testnet Funder ===")
	fmt.Fprintln(s.out, "1) Claim faucet for an address")
	fmt.Fprintln(s.out, "2) Generate wallets and claim for each")
	fmt.Fprintf(s.out, "3) Transfer %s on %s\n", s.symbol("somnia"), "somnia")
	fmt.Fprintf(s.out, "4) Transfer %s on %s\n", s.symbol("nexus"), "nexus")
	fmt.Fprintln(s.out, "5) Claim status")
	fmt.Fprintln(s.out, "6) Exit")
}

func (s *Session) symbol(networkName string) string {
	if n := s.cfg.FindNetwork(networkName); n != nil {
		return n.Symbol
	}
	return "?"
}

// claimSingle is the patient single-address flow: ledger gate, then claim
// with rate-limit retries, then record.
func (s *Session) claimSingle(ctx context.Context) error {
	address, err := s.promptAddress()
	if err != nil {
		return err
	}

	if decision := s.tracker.Evaluate(address); !decision.Eligible {
		color.New(color.FgYellow).Fprintln(s.out, refusalMessage(address, decision))
		return nil
	}

	fmt.Fprintf(s.out, "Claiming for %s...\n", address)
	result, err := s.singlePolicy.Run(ctx, s.faucetClient, address)
	if err != nil {
		return err
	}

	s.tracker.RecordClaim(address)
	s.printClaim(result)
	return nil
}

// claimBulk is the best-effort sweep: one attempt per generated wallet with
// fixed pacing, no retries. The ledger gate applies here too.
func (s *Session) claimBulk(ctx context.Context) error {
	count, err := s.promptInt("How many wallets to generate: ", 1, 100)
	if err != nil {
		return err
	}

	succeeded := 0
	processed := 0
	for i := 0; i < count; i++ {
		w, err := wallet.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate wallet %d/%d: %w", i+1, count, err)
		}
		if err := s.logbook.Append(w); err != nil {
			return err
		}
		processed++
		fmt.Fprintf(s.out, "[%d/%d] generated %s\n", i+1, count, w.Address)

		if decision := s.tracker.Evaluate(w.Address); !decision.Eligible {
			color.New(color.FgYellow).Fprintf(s.out, "[%d/%d] %s\n", i+1, count, refusalMessage(w.Address, decision))
			if decision.Reason == ledger.DailyLimitReached {
				// No point generating more wallets this window.
				break
			}
			continue
		}

		result, err := s.bulkPolicy.Run(ctx, s.faucetClient, w.Address)
		if err != nil {
			color.New(color.FgRed).Fprintf(s.out, "[%d/%d] claim failed: %v\n", i+1, count, err)
			continue
		}

		s.tracker.RecordClaim(w.Address)
		succeeded++
		s.printClaim(result)
	}

	// The sweep may stop early at the daily limit; report only the wallets
	// it actually got to.
	fmt.Fprintf(s.out, "Done: %d/%d claims succeeded.\n", succeeded, processed)
	return nil
}

// refusalMessage renders an ineligible decision for the operator.
func refusalMessage(address string, decision ledger.Decision) string {
	switch decision.Reason {
	case ledger.DailyLimitReached:
		return fmt.Sprintf("Daily claim limit reached; next window opens at %s.",
			decision.NextReset.Format(time.RFC1123))
	case ledger.AddressCooldown:
		return fmt.Sprintf("Address %s is cooling down; try again in about %d hour(s).",
			address, decision.HoursRemaining)
	default:
		return "Claim refused."
	}
}

func (s *Session) printClaim(result *faucet.ClaimResult) {
	green := color.New(color.FgGreen)
	green.Fprintf(s.out, "Claimed %s wei for %s, tx: %s\n", result.Amount, result.Address, result.Hash)
}

// runTransfers drives one transfer session on the named network.
func (s *Session) runTransfers(ctx context.Context, networkName string) error {
	network := s.cfg.FindNetwork(networkName)
	if network == nil {
		return fmt.Errorf("network %s is not configured", networkName)
	}

	count, err := s.promptInt("Number of transfers: ", 1, 1000)
	if err != nil {
		return err
	}
	amount, err := s.promptFloat(fmt.Sprintf("Amount per transfer (%s): ", network.Symbol))
	if err != nil {
		return err
	}
	minDelay, err := s.promptInt("Min delay between transfers (seconds): ", 0, 3600)
	if err != nil {
		return err
	}
	maxDelay, err := s.promptInt("Max delay between transfers (seconds): ", minDelay, 3600)
	if err != nil {
		return err
	}

	amountWei, err := s.registry.ToWei(amount, network.Symbol)
	if err != nil {
		return err
	}

	// The funding key is read fresh every session and kept in memory only.
	key, err := s.loadKey(s.cfg.Global.KeyFile)
	if err != nil {
		return err
	}

	runner, err := s.newRunner(network, s.logbook)
	if err != nil {
		return err
	}
	defer runner.Close()

	balance, err := runner.Balance(ctx, key)
	if err != nil {
		return err
	}
	if human, err := s.registry.FromWei(balance, network.Symbol); err == nil {
		fmt.Fprintf(s.out, "Funding wallet balance: %s %s\n", human.Text('f', 6), network.Symbol)
	}

	return runner.RunSession(ctx, key, transfer.SessionOptions{
		Count:           count,
		AmountWei:       amountWei,
		MinDelaySeconds: minDelay,
		MaxDelaySeconds: maxDelay,
		OnResult: func(r transfer.Result) {
			color.New(color.FgGreen).Fprintf(s.out, "Sent to %s, tx: %s/tx/%s\n",
				r.To, strings.TrimRight(network.Explorer, "/"), r.Hash)
		},
	})
}

// showStatus renders the ledger snapshot as a table.
func (s *Session) showStatus() error {
	snapshot := s.tracker.Status()

	fmt.Fprintf(s.out, "Claims this window: %d/%d, window resets %s\n",
		snapshot.DailyCount, snapshot.MaxPerDay, snapshot.NextReset.Format(time.RFC1123))

	if len(snapshot.Claims) == 0 {
		fmt.Fprintln(s.out, "No tracked addresses.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.AppendHeader(table.Row{"Address", "Last claim", "Next eligible"})
	for addr, stamp := range snapshot.Claims {
		t.AppendRow(table.Row{addr, stamp.Format(time.RFC1123), stamp.Add(snapshot.Window).Format(time.RFC1123)})
	}
	t.Render()
	return nil
}

func (s *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) promptAddress() (string, error) {
	address, err := s.readLine("Address to fund: ")
	if err != nil {
		return "", err
	}
	if !validation.ValidAddress(address) {
		return "", fmt.Errorf("malformed address: %q", address)
	}
	return address, nil
}

func (s *Session) promptInt(prompt string, min, max int) (int, error) {
	raw, err := s.readLine(prompt)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value %d out of range [%d,%d]", value, min, max)
	}
	return value, nil
}

func (s *Session) promptFloat(prompt string) (float64, error) {
	raw, err := s.readLine(prompt)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %v", value)
	}
	return value, nil
}
