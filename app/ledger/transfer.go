package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"kincore/app/models"
	"kincore/pkg/eth"
	"kincore/pkg/kinerr"
	"kincore/pkg/log"
)

// SendTransaction signs a transfer with the sender's key and submits it.
// It returns once the backend accepted the transaction, not when it is mined.
// A transfer above the confirmed balance is rejected before submission.
func (m *Manager) SendTransaction(
	ctx context.Context,
	from accounts.Account,
	toAddress, passphrase string,
	amount decimal.Decimal,
) (models.TransactionID, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	transfer := &models.NewTransfer{
		FromAddress: from.Address.Hex(),
		ToAddress:   toAddress,
		Amount:      amount,
	}
	log.AddFields(ctx, "from", transfer.FromAddress, "to", toAddress, "amount", amount.String())
	if err := transfer.Validate(); err != nil {
		return "", err
	}

	unlock := m.lockSender(from.Address)
	defer unlock()

	decimals, err := m.decimals(ctx)
	if err != nil {
		return "", err
	}
	units, err := eth.ToBaseUnits(amount, decimals)
	if err != nil {
		return "", kinerr.InvalidArgument(err.Error())
	}

	confirmed, err := m.confirmedUnits(ctx, from.Address)
	if err != nil {
		return "", err
	}
	nonce, err := m.Backend.PendingNonceAt(ctx, from.Address)
	if err != nil {
		return "", backendError(ctx, err, "failed to retrieve account nonce")
	}
	gasPrice, err := m.Backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", backendError(ctx, err, "failed to suggest gas price")
	}
	chainID, err := m.chainID(ctx)
	if err != nil {
		return "", err
	}

	// decrypting the key is the passphrase check
	tx := m.buildTransfer(nonce, common.HexToAddress(toAddress), units, gasPrice)
	signedTx, err := m.KeyStore.SignTxWithPassphrase(from, passphrase, tx, chainID)
	if err != nil {
		return "", keyError(err, "failed to sign a transfer")
	}

	if units.Cmp(confirmed) > 0 {
		return "", kinerr.InsufficientBalance(
			"transfer of " + amount.String() + " exceeds the confirmed balance of " +
				eth.FromBaseUnits(confirmed, decimals).String(),
		)
	}

	if err := m.Backend.SendTransaction(ctx, signedTx); err != nil {
		return "", backendError(ctx, err, "failed to send a transaction")
	}

	txID := models.TransactionID(signedTx.Hash().Hex())
	log.AddFields(ctx, "tx_id", txID.String(), "nonce", nonce)
	return txID, nil
}

func (m *Manager) buildTransfer(nonce uint64, to common.Address, units, gasPrice *big.Int) *types.Transaction {
	if m.token == nil {
		return types.NewTransaction(nonce, to, units, m.Config.TransferGas, gasPrice, nil)
	}
	return types.NewTransaction(nonce, *m.token, big.NewInt(0), m.Config.TransferGas, gasPrice, transferData(to, units))
}
