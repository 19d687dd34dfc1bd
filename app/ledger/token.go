package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

var (
	transferMethodID  = methodID("transfer(address,uint256)")
	balanceOfMethodID = methodID("balanceOf(address)")
	decimalsMethodID  = methodID("decimals()")
)

func methodID(signature string) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return hash.Sum(nil)[:4]
}

func transferData(to common.Address, amount *big.Int) []byte {
	paddedAddress := common.LeftPadBytes(to.Bytes(), 32)
	paddedAmount := common.LeftPadBytes(amount.Bytes(), 32)

	var input []byte
	input = append(input, transferMethodID...)
	input = append(input, paddedAddress...)
	input = append(input, paddedAmount...)
	return input
}

func balanceOfData(owner common.Address) []byte {
	var input []byte
	input = append(input, balanceOfMethodID...)
	input = append(input, common.LeftPadBytes(owner.Bytes(), 32)...)
	return input
}

// decodeUint reads a single uint256 return value. An empty result means
// there is no contract at the called address.
func decodeUint(out []byte) (*big.Int, error) {
	if len(out) == 0 {
		return nil, errors.New("no contract code at the token address")
	}
	if len(out) != 32 {
		return nil, errors.Errorf("unexpected return size %d", len(out))
	}
	return new(big.Int).SetBytes(out), nil
}
