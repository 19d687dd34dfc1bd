package models

import (
	"github.com/shopspring/decimal"

	"kincore/pkg/eth"
	"kincore/pkg/kinerr"
)

// TransactionID is the backend hash of a submitted transfer.
type TransactionID string

func (id TransactionID) String() string {
	return string(id)
}

type NewTransfer struct {
	FromAddress string          `json:"-"` // filled from the path
	ToAddress   string          `json:"to_address,omitempty"`
	Passphrase  string          `json:"passphrase,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

func (t *NewTransfer) Validate() error {
	if !eth.IsValidAddress(t.FromAddress) {
		return kinerr.InvalidArgument("invalid source address provided")
	}

	if t.ToAddress == "" {
		return kinerr.InvalidArgument("empty destination address provided")
	}

	if !eth.IsValidAddress(t.ToAddress) {
		return kinerr.InvalidArgument("invalid destination address provided")
	}

	if t.Amount.Sign() <= 0 {
		return kinerr.InvalidArgument("amount must be greater than zero")
	}

	return nil
}

type SentTransfer struct {
	TxID TransactionID `json:"tx_id"`
}
