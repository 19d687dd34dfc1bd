package wallet

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kincore/app/config"
	"kincore/app/ledger"
	"kincore/app/ledger/ledgertest"
	"kincore/app/models"
	"kincore/pkg/eth"
	"kincore/pkg/kinerr"
)

const addressB = "0x00000000000000000000000000000000000000bB"

type fixture struct {
	backend *ledgertest.Backend
	wallets *Manager
}

func newFixture(t *testing.T) *fixture {
	backend := ledgertest.NewBackend()
	client := ledger.NewManager(config.Ethereum{}, ledgertest.NewKeyStore(t), backend)
	return &fixture{backend: backend, wallets: NewManager(client)}
}

func (f *fixture) seed(t *testing.T, a *Account, amount string) {
	units, err := eth.ToBaseUnits(decimal.RequireFromString(amount), eth.EtherDecimals)
	require.NoError(t, err)
	f.backend.Seed(common.HexToAddress(a.PublicAddress()), units)
}

func TestPrivateKeyRederivesAddress(t *testing.T) {
	f := newFixture(t)
	for _, passphrase := range []string{"secret", "correct horse battery staple", "пароль", " "} {
		account, err := f.wallets.CreateAccount(passphrase)
		require.NoError(t, err)
		require.True(t, eth.IsValidAddress(account.PublicAddress()))

		exported, err := account.PrivateKey(passphrase)
		require.NoError(t, err)

		key, err := crypto.HexToECDSA(strings.TrimPrefix(exported, "0x"))
		require.NoError(t, err)
		assert.Equal(t, account.PublicAddress(), crypto.PubkeyToAddress(key.PublicKey).Hex())

		again, err := account.PrivateKey(passphrase)
		require.NoError(t, err)
		assert.Equal(t, exported, again)
	}
}

func TestPrivateKeyWrongPassphrase(t *testing.T) {
	f := newFixture(t)
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)

	for _, wrong := range []string{"", "Secret", "secret ", "wrong"} {
		key, err := account.PrivateKey(wrong)
		assert.True(t, kinerr.IsPassphrase(err), "passphrase %q, have: %v", wrong, err)
		assert.Empty(t, key)
	}
}

func TestSendAndSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)
	f.seed(t, account, "100.0")

	txID, err := account.SendTransactionSync(ctx, addressB, "secret", decimal.RequireFromString("40.0"))
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	// submitted but not settled
	pending, err := account.GetPendingBalanceSync(ctx)
	require.NoError(t, err)
	assert.True(t, pending.Confirmed.Equal(decimal.New(100, 0)))
	require.True(t, pending.HasPending())
	assert.True(t, pending.Pending.Equal(decimal.New(60, 0)))

	f.backend.Commit()
	balance, err := account.GetBalanceSync(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Confirmed.Equal(decimal.New(60, 0)), "have: %s", balance.Confirmed)
	assert.False(t, balance.HasPending())
}

func TestSendWrongPassphrase(t *testing.T) {
	f := newFixture(t)
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)
	f.seed(t, account, "100")

	txID, err := account.SendTransactionSync(context.Background(), addressB, "wrong", decimal.New(10, 0))
	assert.True(t, kinerr.IsPassphrase(err), "have: %v", err)
	assert.Empty(t, txID)
	assert.Empty(t, f.backend.Sent())
}

func TestSendOverdrawHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)
	f.seed(t, account, "100")

	for _, amount := range []string{"100.000000000000000001", "100.5", "101", "1000000"} {
		txID, err := account.SendTransactionSync(ctx, addressB, "secret", decimal.RequireFromString(amount))
		assert.True(t, kinerr.IsInsufficientBalance(err), "amount %s, have: %v", amount, err)
		assert.Empty(t, txID)
	}

	assert.Empty(t, f.backend.Sent())
	balance, err := account.GetPendingBalanceSync(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Confirmed.Equal(decimal.New(100, 0)))
	assert.True(t, balance.Pending.Equal(decimal.New(100, 0)))
}

func TestSendWithinBalanceReturnsUniqueIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)
	f.seed(t, account, "10")

	ids := make(map[string]bool)
	for _, amount := range []string{"0.000000000000000001", "1", "2.5", "6.4"} {
		txID, err := account.SendTransactionSync(ctx, addressB, "secret", decimal.RequireFromString(amount))
		require.NoError(t, err, "amount %s", amount)
		require.NotEmpty(t, txID)
		assert.False(t, ids[txID.String()], "duplicate id %s", txID)
		ids[txID.String()] = true
	}
}

func TestSharedClientConcurrentAccounts(t *testing.T) {
	f := newFixture(t)
	var accts []*Account
	for i := 0; i < 3; i++ {
		account, err := f.wallets.CreateAccount("secret")
		require.NoError(t, err)
		f.seed(t, account, "5")
		accts = append(accts, account)
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	for _, account := range accts {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(account *Account) {
				defer wg.Done()
				txID, err := account.SendTransactionSync(context.Background(), addressB, "secret", decimal.New(1, 0))
				if !assert.NoError(t, err) {
					return
				}
				_, err = account.GetPendingBalanceSync(context.Background())
				assert.NoError(t, err)

				mu.Lock()
				ids[txID.String()] = true
				mu.Unlock()
			}(account)
		}
	}
	wg.Wait()

	assert.Len(t, ids, 9)
	f.backend.Commit()
	for _, account := range accts {
		balance, err := account.GetBalanceSync(context.Background())
		require.NoError(t, err)
		assert.True(t, balance.Confirmed.Equal(decimal.New(2, 0)), "have: %s", balance.Confirmed)
	}
}

func TestBalanceWithinBackendLatency(t *testing.T) {
	f := newFixture(t)
	f.backend.Latency = 5 * time.Millisecond
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)

	queries := map[string]func(context.Context) (*models.Balance, error){
		"confirmed": account.GetBalanceSync,
		"pending":   account.GetPendingBalanceSync,
	}
	for name, query := range queries {
		start := time.Now()
		_, err := query(context.Background())
		require.NoError(t, err, name)
		assert.True(t, time.Since(start) < 5*time.Second, "%s took %s", name, time.Since(start))
	}
}

func TestBalanceUnreachableBackend(t *testing.T) {
	f := newFixture(t)
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)
	f.backend.SetUnreachable(errors.New("connection refused"))

	_, err = account.GetBalanceSync(context.Background())
	assert.True(t, kinerr.IsOperationFailed(err), "have: %v", err)

	_, err = account.GetPendingBalanceSync(context.Background())
	assert.True(t, kinerr.IsOperationFailed(err), "have: %v", err)

	_, err = account.SendTransactionSync(context.Background(), addressB, "secret", decimal.New(1, 0))
	assert.True(t, kinerr.IsOperationFailed(err), "have: %v", err)
}

func TestBalanceInterrupted(t *testing.T) {
	f := newFixture(t)
	f.backend.Latency = time.Minute
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = account.GetPendingBalanceSync(ctx)
	assert.True(t, kinerr.IsOperationFailed(err), "have: %v", err)
}

func TestNoCachingBetweenCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account, err := f.wallets.CreateAccount("secret")
	require.NoError(t, err)

	f.seed(t, account, "1")
	first, err := account.GetBalanceSync(ctx)
	require.NoError(t, err)

	f.backend.Seed(common.HexToAddress(account.PublicAddress()), big.NewInt(0))
	second, err := account.GetBalanceSync(ctx)
	require.NoError(t, err)

	assert.True(t, first.Confirmed.Equal(decimal.New(1, 0)))
	assert.True(t, second.Confirmed.IsZero())
}
