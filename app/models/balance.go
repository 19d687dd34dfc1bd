package models

import (
	"github.com/shopspring/decimal"
)

// Balance of one address in whole asset units.
type Balance struct {
	Address   string           `json:"address"`
	Confirmed decimal.Decimal  `json:"confirmed"`
	Pending   *decimal.Decimal `json:"pending,omitempty"` // nil until a pending query ran
}

// HasPending reports whether the pending amount came from a real query.
func (b *Balance) HasPending() bool {
	return b != nil && b.Pending != nil
}
