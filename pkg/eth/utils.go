package eth

import (
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// EtherDecimals is the number of wei digits in one ether.
	EtherDecimals = 18

	// TransferGas is the fixed gas cost of a plain value transfer.
	TransferGas = 21000
)

var (
	addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
)

func IsValidAddress(iaddress interface{}) bool {
	switch v := iaddress.(type) {
	case string:
		return addressRegex.MatchString(v)
	case common.Address:
		return addressRegex.MatchString(v.Hex())
	default:
		return false
	}
}

// FromBaseUnits converts an amount of the smallest units into whole units.
func FromBaseUnits(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// ToBaseUnits converts whole units into the smallest units. Amounts with
// more fractional digits than decimals are rejected instead of rounded.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	scaled := amount.Mul(decimal.New(1, int32(decimals)))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Errorf("amount %s has more than %d fractional digits", amount, decimals)
	}

	units, ok := new(big.Int).SetString(scaled.Truncate(0).String(), 10)
	if !ok {
		return nil, errors.Errorf("failed to convert %s to base units", amount)
	}
	return units, nil
}
