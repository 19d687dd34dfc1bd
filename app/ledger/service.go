package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/shopspring/decimal"

	"kincore/app/models"
)

// Service is the only gateway to the ledger backend and the key store.
// All methods block until the backend or the key store answered.
type Service interface {
	CreateAccount(passphrase string) (accounts.Account, error)
	ImportAccount(address string) (accounts.Account, error)
	ImportKey(keyJSON []byte, passphrase, newPassphrase string) (accounts.Account, error)
	FindAccount(address string) (accounts.Account, error)
	DeleteAccount(account accounts.Account, passphrase string) error
	Accounts() []accounts.Account

	ExportPrivateKey(account accounts.Account, passphrase string) (string, error)
	SendTransaction(
		ctx context.Context,
		from accounts.Account,
		toAddress, passphrase string,
		amount decimal.Decimal,
	) (models.TransactionID, error)

	ConfirmedBalance(ctx context.Context, address string) (*models.Balance, error)
	GetBalance(ctx context.Context, address string) (*models.Balance, error)
}
