// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/votechain/server/cliparse"
	"github.com/votechain/server/models"
)

var (
	// ErrUnavailable means chain access is not configured (no RPC URL or
	// contract address). The server runs database-only in that case.
	ErrUnavailable = errors.New("blockchain not configured")

	// ErrNotOnChain means a database election id has no counterpart in
	// the contract yet.
	ErrNotOnChain = errors.New("election not found on blockchain")
)

// Gas caps for the two write paths.
const (
	gasCreateElection = 3_000_000
	gasVote           = 500_000
)

// votingABI is the externally visible surface of the Voting contract.
const votingABI = `[
	{"inputs":[{"name":"title","type":"string"},{"name":"candidateNames","type":"string[]"}],"name":"createElection","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"electionId","type":"uint256"},{"name":"candidateIndex","type":"uint256"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"electionId","type":"uint256"}],"name":"getResults","outputs":[{"name":"","type":"string[]"},{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"electionCount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// Backend is the slice of the Ethereum RPC surface the client needs.
// *ethclient.Client satisfies it; tests substitute a stub.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client reads and writes the Voting contract.
type Client struct {
	backend  Backend
	contract common.Address
	abi      abi.ABI
	chainID  *big.Int

	// nil key means read-only: writes report status "skipped".
	key  *ecdsa.PrivateKey
	from common.Address
}

// New dials the configured RPC endpoint. Returns ErrUnavailable when the
// RPC URL or contract address is missing.
func New(ctx context.Context, cfg cliparse.Config) (*Client, error) {
	if cfg.RPCURL == "" || cfg.ContractAddress == "" {
		return nil, ErrUnavailable
	}

	backend, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}
	return NewWithBackend(ctx, backend, cfg)
}

// NewWithBackend builds a client over an existing backend.
func NewWithBackend(ctx context.Context, backend Backend, cfg cliparse.Config) (*Client, error) {
	if cfg.ContractAddress == "" {
		return nil, ErrUnavailable
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(votingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	c := &Client{
		backend:  backend,
		contract: common.HexToAddress(cfg.ContractAddress),
		abi:      parsed,
	}

	if cfg.ChainID != 0 {
		c.chainID = big.NewInt(cfg.ChainID)
	} else {
		c.chainID, err = backend.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query chain id: %w", err)
		}
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		c.key = key
		if cfg.AccountAddress != "" {
			c.from = common.HexToAddress(cfg.AccountAddress)
		} else {
			c.from = crypto.PubkeyToAddress(key.PublicKey)
		}
	}

	return c, nil
}

// CanWrite reports whether the client holds a signing key.
func (c *Client) CanWrite() bool {
	return c.key != nil
}

// GetResults reads the tally for a contract election id: candidate names
// and vote counts, index-aligned.
func (c *Client) GetResults(ctx context.Context, contractElectionID int64) ([]string, []*big.Int, error) {
	data, err := c.abi.Pack("getResults", big.NewInt(contractElectionID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pack getResults: %w", err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("getResults call failed: %w", err)
	}

	vals, err := c.abi.Unpack("getResults", out)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unpack getResults: %w", err)
	}
	names, ok := vals[0].([]string)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected getResults names type %T", vals[0])
	}
	counts, ok := vals[1].([]*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected getResults counts type %T", vals[1])
	}
	return names, counts, nil
}

// ElectionCount reads the number of elections the contract knows about.
func (c *Client) ElectionCount(ctx context.Context) (int64, error) {
	data, err := c.abi.Pack("electionCount")
	if err != nil {
		return 0, fmt.Errorf("failed to pack electionCount: %w", err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("electionCount call failed: %w", err)
	}

	vals, err := c.abi.Unpack("electionCount", out)
	if err != nil {
		return 0, fmt.Errorf("failed to unpack electionCount: %w", err)
	}
	count, ok := vals[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected electionCount type %T", vals[0])
	}
	return count.Int64(), nil
}

// ResolveElectionID maps a database election id to its contract id. The
// contract numbers elections from 0 while the database starts at 1. When
// the count query itself fails, the computed id is returned anyway so the
// subsequent call surfaces the RPC problem instead of masking it.
func (c *Client) ResolveElectionID(ctx context.Context, dbElectionID int64) (int64, error) {
	contractID := dbElectionID - 1
	if contractID < 0 {
		return 0, ErrNotOnChain
	}

	count, err := c.ElectionCount(ctx)
	if err != nil {
		return contractID, nil
	}
	if contractID >= count {
		return 0, ErrNotOnChain
	}
	return contractID, nil
}

// CreateElection submits a createElection transaction.
func (c *Client) CreateElection(ctx context.Context, title string, candidates []string) *models.BlockchainInfo {
	return c.transact(ctx, "createElection", gasCreateElection, title, candidates)
}

// CastVote submits a vote transaction for a contract election id and
// candidate ballot index.
func (c *Client) CastVote(ctx context.Context, contractElectionID, candidateIndex int64) *models.BlockchainInfo {
	return c.transact(ctx, "vote", gasVote, big.NewInt(contractElectionID), big.NewInt(candidateIndex))
}

// transact signs and submits a legacy gas-priced transaction. Failures
// never return an error: callers treat the chain as best-effort and the
// status field carries the outcome.
func (c *Client) transact(ctx context.Context, method string, gasLimit uint64, args ...interface{}) *models.BlockchainInfo {
	if c.key == nil {
		return &models.BlockchainInfo{
			Status:  models.ChainStatusSkipped,
			Message: "PRIVATE_KEY and ACCOUNT_ADDRESS are required to submit transactions.",
		}
	}

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return chainError(fmt.Errorf("failed to pack %s: %w", method, err))
	}

	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return chainError(fmt.Errorf("failed to fetch nonce: %w", err))
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return chainError(fmt.Errorf("failed to fetch gas price: %w", err))
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.key)
	if err != nil {
		return chainError(fmt.Errorf("failed to sign transaction: %w", err))
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return chainError(fmt.Errorf("failed to send transaction: %w", err))
	}

	return &models.BlockchainInfo{
		TxHash:  signed.Hash().Hex(),
		Status:  models.ChainStatusSubmitted,
		Message: "Transaction submitted to the network.",
	}
}

func chainError(err error) *models.BlockchainInfo {
	return &models.BlockchainInfo{
		Status:  models.ChainStatusError,
		Message: err.Error(),
	}
}
