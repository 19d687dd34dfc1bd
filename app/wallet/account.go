package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/shopspring/decimal"

	"kincore/app/ledger"
	"kincore/app/models"
)

// Account binds one key store entry to the shared ledger client. It keeps
// no key material and no state between calls.
type Account struct {
	handle accounts.Account
	ledger ledger.Service
}

func (a *Account) PublicAddress() string {
	return a.handle.Address.Hex()
}

// PrivateKey decrypts the key with passphrase and returns it as 0x-prefixed
// hex. The result is never logged or kept.
func (a *Account) PrivateKey(passphrase string) (string, error) {
	return a.ledger.ExportPrivateKey(a.handle, passphrase)
}

// SendTransactionSync returns once the backend acknowledged the transfer.
// Settlement is reported later by the pending and confirmed balances.
func (a *Account) SendTransactionSync(
	ctx context.Context,
	toAddress, passphrase string,
	amount decimal.Decimal,
) (models.TransactionID, error) {
	return a.ledger.SendTransaction(ctx, a.handle, toAddress, passphrase, amount)
}

// GetBalanceSync queries the confirmed balance only; Pending stays nil.
func (a *Account) GetBalanceSync(ctx context.Context) (*models.Balance, error) {
	return a.ledger.ConfirmedBalance(ctx, a.PublicAddress())
}

// GetPendingBalanceSync queries both balances; Pending is always set.
func (a *Account) GetPendingBalanceSync(ctx context.Context) (*models.Balance, error) {
	return a.ledger.GetBalance(ctx, a.PublicAddress())
}
