package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"kincore/app/models"
)

// AccountOperations is everything an application can do with one account.
type AccountOperations interface {
	PublicAddress() string
	PrivateKey(passphrase string) (string, error)
	SendTransactionSync(ctx context.Context, toAddress, passphrase string, amount decimal.Decimal) (models.TransactionID, error)
	GetBalanceSync(ctx context.Context) (*models.Balance, error)
	GetPendingBalanceSync(ctx context.Context) (*models.Balance, error)
}

type Service interface {
	CreateAccount(passphrase string) (*Account, error)
	ImportAccount(address string) (*Account, error)
	ImportKey(keyJSON []byte, passphrase, newPassphrase string) (*Account, error)
	GetAccount(address string) (*Account, error)
	DeleteAccount(address, passphrase string) error
	Accounts() []*Account
}

var (
	_ AccountOperations = (*Account)(nil)
	_ Service           = (*Manager)(nil)
)
