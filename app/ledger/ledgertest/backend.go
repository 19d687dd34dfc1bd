// Package ledgertest provides an in-memory ledger backend for tests.
package ledgertest

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	selectorTransfer  = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
	selectorBalanceOf = crypto.Keccak256([]byte("balanceOf(address)"))[:4]
	selectorDecimals  = crypto.Keccak256([]byte("decimals()"))[:4]
)

// Backend keeps confirmed and pending balances per address. Submitted
// transfers change pending balances only, until Commit settles them.
// Gas is priced but never charged.
type Backend struct {
	ChainID       *big.Int
	GasPrice      *big.Int
	Latency       time.Duration
	Token         *common.Address // when set, balances are token balances
	TokenDecimals uint8

	mu        sync.Mutex
	confirmed map[common.Address]*big.Int
	pending   map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	queued    []*types.Transaction
	sent      []*types.Transaction
	known     map[common.Hash]bool
	err       error
}

func NewBackend() *Backend {
	return &Backend{
		ChainID:   big.NewInt(1337),
		GasPrice:  big.NewInt(1),
		confirmed: make(map[common.Address]*big.Int),
		pending:   make(map[common.Address]*big.Int),
		nonces:    make(map[common.Address]uint64),
		known:     make(map[common.Hash]bool),
	}
}

// NewTokenBackend simulates an ERC-20 contract at token.
func NewTokenBackend(token common.Address, decimals uint8) *Backend {
	b := NewBackend()
	b.Token = &token
	b.TokenDecimals = decimals
	return b
}

// Seed sets both the confirmed and pending balance of addr in base units.
func (b *Backend) Seed(addr common.Address, units *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmed[addr] = new(big.Int).Set(units)
	b.pending[addr] = new(big.Int).Set(units)
}

// Commit settles every queued transfer.
func (b *Backend) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for addr, balance := range b.pending {
		b.confirmed[addr] = new(big.Int).Set(balance)
	}
	b.queued = nil
}

// SetUnreachable makes every call fail with err; nil restores the backend.
func (b *Backend) SetUnreachable(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Sent returns every accepted transaction in submission order.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// Queued returns the accepted transactions not yet committed.
func (b *Backend) Queued() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.queued...)
}

func (b *Backend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if b.Token != nil {
		return nil, errors.New("native balance queried on a token backend")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return balanceOf(b.confirmed, account), nil
}

func (b *Backend) PendingBalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if b.Token != nil {
		return nil, errors.New("native balance queried on a token backend")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return balanceOf(b.pending, account), nil
}

func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[account], nil
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Set(b.GasPrice), nil
}

func (b *Backend) NetworkID(ctx context.Context) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Set(b.ChainID), nil
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.call(call, b.confirmed)
}

func (b *Backend) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.call(call, b.pending)
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.wait(ctx); err != nil {
		return err
	}

	from, err := types.Sender(types.NewEIP155Signer(b.ChainID), tx)
	if err != nil {
		return errors.Wrap(err, "invalid sender")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.known[tx.Hash()] {
		return errors.New("known transaction: " + tx.Hash().Hex())
	}
	if tx.Nonce() != b.nonces[from] {
		return errors.Errorf("invalid nonce %d, expected %d", tx.Nonce(), b.nonces[from])
	}

	to, value := *tx.To(), tx.Value()
	if b.Token != nil {
		if to != *b.Token {
			return errors.New("transfer is not addressed to the token contract")
		}
		data := tx.Data()
		if len(data) != 4+32+32 || !bytes.Equal(data[:4], selectorTransfer) {
			return errors.New("execution reverted: unknown method")
		}
		to = common.BytesToAddress(data[4:36])
		value = new(big.Int).SetBytes(data[36:])
	}

	balance := balanceOf(b.pending, from)
	if balance.Cmp(value) < 0 {
		return errors.New("insufficient funds for gas * price + value")
	}
	b.pending[from] = balance.Sub(balance, value)
	b.pending[to] = new(big.Int).Add(balanceOf(b.pending, to), value)

	b.nonces[from]++
	b.known[tx.Hash()] = true
	b.sent = append(b.sent, tx)
	b.queued = append(b.queued, tx)
	return nil
}

func (b *Backend) call(call ethereum.CallMsg, balances map[common.Address]*big.Int) ([]byte, error) {
	if b.Token == nil || call.To == nil || *call.To != *b.Token {
		return nil, nil // no code at the address
	}
	switch {
	case bytes.Equal(call.Data, selectorDecimals):
		return common.LeftPadBytes([]byte{b.TokenDecimals}, 32), nil
	case len(call.Data) == 4+32 && bytes.Equal(call.Data[:4], selectorBalanceOf):
		owner := common.BytesToAddress(call.Data[4:])
		return common.LeftPadBytes(balanceOf(balances, owner).Bytes(), 32), nil
	default:
		return nil, errors.New("execution reverted")
	}
}

func (b *Backend) wait(ctx context.Context) error {
	b.mu.Lock()
	err := b.err
	b.mu.Unlock()
	if err != nil {
		return err
	}

	if b.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func balanceOf(balances map[common.Address]*big.Int, addr common.Address) *big.Int {
	if balance, ok := balances[addr]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}
