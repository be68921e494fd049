// Package transfer submits native-token transfers to newly generated
// wallets on one of the configured networks, one at a time, waiting for
// on-chain confirmation between iterations.
package transfer

import (
	"context"
	"crypto/ecdsa"
	"crypto/tls"
	"fmt"
	"math/big"
	"math/rand"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/chainops-dev/testnet-funder/pkg/config"
	"github.com/chainops-dev/testnet-funder/pkg/logger"
	"github.com/chainops-dev/testnet-funder/pkg/wallet"
)

const transferGasLimit = uint64(21000)

// sleep is swapped out by tests so paced sessions run without real delays.
var sleep = time.Sleep

// Runner drives transfer sessions against a single network.
type Runner struct {
	network *config.Network
	client  *ethclient.Client
	logbook *wallet.Logbook
}

// Result describes one confirmed transfer.
type Result struct {
	To     string
	Hash   string
	Amount *big.Int
}

// NewRunner dials the network's RPC endpoint.
func NewRunner(network *config.Network, logbook *wallet.Logbook) (*Runner, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: network.HttpSSLVerify == "false"}
	httpClient := &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
		Timeout:   30 * time.Second,
	}

	rpcClient, err := rpc.DialOptions(context.Background(), network.HttpAddr, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s node: %w", network.Name, err)
	}

	return &Runner{
		network: network,
		client:  ethclient.NewClient(rpcClient),
		logbook: logbook,
	}, nil
}

// Close releases the RPC connection.
func (r *Runner) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// Balance returns the funding wallet's balance in wei.
func (r *Runner) Balance(ctx context.Context, key *ecdsa.PrivateKey) (*big.Int, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)
	balance, err := r.client.BalanceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", from.Hex(), err)
	}
	return balance, nil
}

// Send submits one native transfer and waits for it to be mined. Chains
// with a base fee get an EIP-1559 transaction (tip + 2x base fee), older
// chains fall back to a legacy gas-price transaction.
func (r *Runner) Send(ctx context.Context, key *ecdsa.PrivateKey, to string, amountWei *big.Int) (*Result, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)
	toAddress := common.HexToAddress(to)

	nonce, err := r.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", from.Hex(), err)
	}

	chainID := big.NewInt(r.network.ChainID)

	tx, err := r.buildTx(ctx, nonce, toAddress, amountWei, chainID)
	if err != nil {
		return nil, err
	}

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := r.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	logger.Infof("[%s] sent %s wei to %s, tx: %s, waiting for confirmation...",
		r.network.Name, amountWei.String(), to, signedTx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, r.client, signedTx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for confirmation of %s: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", signedTx.Hash().Hex())
	}

	return &Result{
		To:     to,
		Hash:   signedTx.Hash().Hex(),
		Amount: amountWei,
	}, nil
}

func (r *Runner) buildTx(ctx context.Context, nonce uint64, to common.Address, amountWei *big.Int, chainID *big.Int) (*types.Transaction, error) {
	head, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain head: %w", err)
	}

	if head.BaseFee != nil {
		tipCap, err := r.client.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
		}
		feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tipCap,
			GasFeeCap: feeCap,
			Gas:       transferGasLimit,
			To:        &to,
			Value:     amountWei,
		}), nil
	}

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      transferGasLimit,
		To:       &to,
		Value:    amountWei,
	}), nil
}

// SessionOptions control one transfer session.
type SessionOptions struct {
	Count     int
	AmountWei *big.Int
	// Inclusive whole-second bounds for the delay between transfers.
	MinDelaySeconds int
	MaxDelaySeconds int
	// OnResult is called after each confirmed transfer.
	OnResult func(Result)
}

// RunSession generates Count fresh wallets and transfers AmountWei to each
// in sequence. Every generated wallet is appended to the logbook before its
// transfer. An on-chain error aborts the session; there is no automatic
// resume.
func (r *Runner) RunSession(ctx context.Context, key *ecdsa.PrivateKey, opts SessionOptions) error {
	for i := 0; i < opts.Count; i++ {
		w, err := wallet.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate wallet %d/%d: %w", i+1, opts.Count, err)
		}
		if err := r.logbook.Append(w); err != nil {
			return err
		}

		result, err := r.Send(ctx, key, w.Address, opts.AmountWei)
		if err != nil {
			return fmt.Errorf("transfer %d/%d failed: %w", i+1, opts.Count, err)
		}

		logger.Infof("[%s] confirmed transfer %d/%d to %s, tx: %s",
			r.network.Name, i+1, opts.Count, result.To, result.Hash)
		if opts.OnResult != nil {
			opts.OnResult(*result)
		}

		if i < opts.Count-1 {
			delay := randomDelay(opts.MinDelaySeconds, opts.MaxDelaySeconds)
			if delay > 0 {
				logger.Debugf("[%s] waiting %v before next transfer", r.network.Name, delay)
				sleep(delay)
			}
		}
	}
	return nil
}

// randomDelay picks a whole-second delay within [min,max].
func randomDelay(minSeconds, maxSeconds int) time.Duration {
	if maxSeconds <= 0 || maxSeconds < minSeconds {
		return 0
	}
	seconds := minSeconds
	if span := maxSeconds - minSeconds; span > 0 {
		seconds += rand.Intn(span + 1)
	}
	return time.Duration(seconds) * time.Second
}
