package ledger

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestMethodIDs(t *testing.T) {
	cases := map[string][]byte{
		"a9059cbb": transferMethodID,
		"70a08231": balanceOfMethodID,
		"313ce567": decimalsMethodID,
	}
	for expected, id := range cases {
		if have := hex.EncodeToString(id); have != expected {
			t.Errorf("wrong method id, expected: %s, have: %s", expected, have)
		}
	}
}

func TestTransferData(t *testing.T) {
	data := transferData(common.HexToAddress("0x02"), big.NewInt(258))
	if len(data) != 68 {
		t.Fatalf("wrong data size, expected: 68, have: %d", len(data))
	}
	if data[35] != 0x02 || data[66] != 0x01 || data[67] != 0x02 {
		t.Errorf("wrong encoding: %x", data)
	}
}

func TestDecodeUint(t *testing.T) {
	if _, err := decodeUint(nil); err == nil {
		t.Error("expected an error for an empty result")
	}
	if _, err := decodeUint(make([]byte, 31)); err == nil {
		t.Error("expected an error for a short result")
	}
	value, err := decodeUint(common.LeftPadBytes([]byte{0x10}, 32))
	if err != nil {
		t.Fatal(err)
	}
	if value.Int64() != 16 {
		t.Errorf("wrong value, expected: 16, have: %s", value)
	}
}
