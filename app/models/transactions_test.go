package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"kincore/pkg/kinerr"
)

func TestNewTransferValidate(t *testing.T) {
	const (
		from = "0x1111111111111111111111111111111111111111"
		to   = "0x2222222222222222222222222222222222222222"
	)
	cases := []struct {
		name  string
		in    NewTransfer
		valid bool
	}{
		{"valid", NewTransfer{FromAddress: from, ToAddress: to, Amount: decimal.New(40, 0)}, true},
		{"empty to", NewTransfer{FromAddress: from, Amount: decimal.New(1, 0)}, false},
		{"malformed to", NewTransfer{FromAddress: from, ToAddress: "0x22", Amount: decimal.New(1, 0)}, false},
		{"malformed from", NewTransfer{FromAddress: "alice", ToAddress: to, Amount: decimal.New(1, 0)}, false},
		{"zero amount", NewTransfer{FromAddress: from, ToAddress: to}, false},
		{"negative amount", NewTransfer{FromAddress: from, ToAddress: to, Amount: decimal.New(-5, 0)}, false},
	}
	for _, c := range cases {
		err := c.in.Validate()
		if c.valid && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.valid && !kinerr.IsInvalidArgument(err) {
			t.Errorf("%s: expected an invalid argument error, have: %v", c.name, err)
		}
	}
}
