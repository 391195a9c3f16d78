package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Confirmation errors, surfaced to callers so a pending transaction can be
// distinguished from a reverted one.
var (
	ErrTxNotFound                = errors.New("transaction not found")
	ErrTxFailed                  = errors.New("transaction reverted")
	ErrInsufficientConfirmations = errors.New("insufficient confirmations")
)

// EVMClient defines the subset of the Ethereum RPC used for confirmation.
type EVMClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
}

// DialEVMClient initialises an EVM RPC client for the provided endpoint.
func DialEVMClient(endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("evm endpoint required")
	}
	return ethclient.Dial(trimmed)
}

// Confirmation is the decoded outcome of a settled transaction: every
// community-contract event the transaction emitted.
type Confirmation struct {
	TxHash      common.Hash
	BlockNumber uint64
	Events      []Event
}

// Confirmer validates that a submitted transaction settled on the ledger and
// decodes the community-contract events it emitted.
type Confirmer struct {
	client        EVMClient
	contract      common.Address
	confirmations uint64
}

func NewConfirmer(client EVMClient, contract common.Address, confirmations uint64) *Confirmer {
	return &Confirmer{
		client:        client,
		contract:      contract,
		confirmations: confirmations,
	}
}

// Confirm fetches the receipt for txHash, checks success and confirmation
// depth, and returns the decoded contract events. Logs from other contracts
// and unknown topics are skipped.
func (c *Confirmer) Confirm(ctx context.Context, txHash common.Hash) (*Confirmation, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("confirmer not initialised")
	}
	if (txHash == common.Hash{}) {
		return nil, fmt.Errorf("tx hash required")
	}

	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash.Hex())
		}
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash.Hex())
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrTxFailed, txHash.Hex())
	}

	if c.confirmations > 0 {
		header, err := c.client.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch head: %w", err)
		}
		if header == nil || header.Number == nil || receipt.BlockNumber == nil {
			return nil, fmt.Errorf("block metadata unavailable")
		}
		if header.Number.Cmp(receipt.BlockNumber) < 0 {
			return nil, fmt.Errorf("transaction block ahead of head")
		}
		confirmed := new(big.Int).Sub(header.Number, receipt.BlockNumber)
		confirmed.Add(confirmed, big.NewInt(1))
		if confirmed.Cmp(new(big.Int).SetUint64(c.confirmations)) < 0 {
			return nil, fmt.Errorf("%w: have %s want %d", ErrInsufficientConfirmations, confirmed.String(), c.confirmations)
		}
	}

	conf := &Confirmation{TxHash: txHash}
	if receipt.BlockNumber != nil {
		conf.BlockNumber = receipt.BlockNumber.Uint64()
	}
	for _, lg := range receipt.Logs {
		if lg == nil || lg.Address != c.contract {
			continue
		}
		ev, err := ParseLog(lg)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				continue
			}
			return nil, fmt.Errorf("decode log in %s: %w", txHash.Hex(), err)
		}
		conf.Events = append(conf.Events, *ev)
	}
	return conf, nil
}
