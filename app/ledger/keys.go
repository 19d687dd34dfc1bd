package ledger

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"kincore/pkg/eth"
	"kincore/pkg/kinerr"
	"kincore/pkg/log"
)

func (m *Manager) CreateAccount(passphrase string) (accounts.Account, error) {
	if passphrase == "" {
		return accounts.Account{}, kinerr.KeyStore(errors.New("empty passphrase"), "failed to create an account")
	}

	account, err := m.KeyStore.NewAccount(passphrase)
	if err != nil {
		return accounts.Account{}, kinerr.KeyStore(err, "failed to create an account")
	}

	log.Infow("created an account", "address", account.Address.Hex())
	return account, nil
}

// ImportAccount wraps an existing key store entry. Whether the entry exists
// is only checked when the account is first used.
func (m *Manager) ImportAccount(address string) (accounts.Account, error) {
	if !eth.IsValidAddress(address) {
		return accounts.Account{}, kinerr.KeyStore(
			errors.Errorf("malformed address %q", address), "failed to import an account",
		)
	}
	return accounts.Account{Address: common.HexToAddress(address)}, nil
}

// ImportKey stores a V3 key file, re-encrypting it with newPassphrase.
func (m *Manager) ImportKey(keyJSON []byte, passphrase, newPassphrase string) (accounts.Account, error) {
	if newPassphrase == "" {
		return accounts.Account{}, kinerr.KeyStore(errors.New("empty passphrase"), "failed to import a key")
	}

	// every address has exactly one key file
	m.importMu.Lock()
	defer m.importMu.Unlock()

	addr, err := keyAddress(keyJSON)
	if err != nil {
		return accounts.Account{}, kinerr.KeyStore(err, "failed to import a key")
	}
	if m.KeyStore.HasAddress(addr) {
		return accounts.Account{}, kinerr.KeyStore(
			errors.Errorf("key for %s already exists", addr.Hex()), "failed to import a key",
		)
	}

	account, err := m.KeyStore.Import(keyJSON, passphrase, newPassphrase)
	if err != nil {
		if err == keystore.ErrDecrypt {
			return accounts.Account{}, kinerr.Passphrase(err)
		}
		return accounts.Account{}, kinerr.KeyStore(err, "failed to import a key")
	}

	log.Infow("imported a key", "address", account.Address.Hex())
	return account, nil
}

func (m *Manager) FindAccount(address string) (accounts.Account, error) {
	account, err := m.ImportAccount(address)
	if err != nil {
		return accounts.Account{}, err
	}

	found, err := m.KeyStore.Find(account)
	if err != nil {
		return accounts.Account{}, kinerr.KeyStore(err, "failed to find an account")
	}
	return found, nil
}

func (m *Manager) DeleteAccount(account accounts.Account, passphrase string) error {
	if err := m.KeyStore.Delete(account, passphrase); err != nil {
		return keyError(err, "failed to delete an account")
	}

	log.Infow("deleted an account", "address", account.Address.Hex())
	return nil
}

func (m *Manager) Accounts() []accounts.Account {
	return m.KeyStore.Accounts()
}

// ExportPrivateKey decrypts the key file of the account and returns the
// 0x-prefixed hex of the secp256k1 scalar. Every intermediate buffer holding
// key material is zeroed before returning.
func (m *Manager) ExportPrivateKey(account accounts.Account, passphrase string) (string, error) {
	found, err := m.KeyStore.Find(account)
	if err != nil {
		return "", keyError(err, "failed to export a private key")
	}

	keyJSON, err := ioutil.ReadFile(found.URL.Path)
	if err != nil {
		return "", kinerr.OperationFailed(err, "failed to read a key file")
	}

	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return "", keyError(err, "failed to export a private key")
	}
	defer zeroKey(key.PrivateKey)

	if key.Address != found.Address {
		return "", kinerr.OperationFailed(
			errors.Errorf("key file holds %s", key.Address.Hex()), "key file does not match the account",
		)
	}

	raw := crypto.FromECDSA(key.PrivateKey)
	defer zeroBytes(raw)

	encoded := make([]byte, 2+hex.EncodedLen(len(raw)))
	defer zeroBytes(encoded)
	copy(encoded, "0x")
	hex.Encode(encoded[2:], raw)

	return string(encoded), nil
}

// keyAddress reads the address a V3 key file declares without decrypting it.
func keyAddress(keyJSON []byte) (common.Address, error) {
	var header struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(keyJSON, &header); err != nil {
		return common.Address{}, errors.Wrap(err, "malformed key file")
	}

	address := header.Address
	if !strings.HasPrefix(address, "0x") {
		address = "0x" + address
	}
	if !eth.IsValidAddress(address) {
		return common.Address{}, errors.Errorf("key file declares malformed address %q", header.Address)
	}
	return common.HexToAddress(address), nil
}

// keyError maps key store failures onto the error taxonomy.
func keyError(err error, message string) error {
	switch err {
	case keystore.ErrDecrypt:
		return kinerr.Passphrase(err)
	case keystore.ErrNoMatch, accounts.ErrUnknownAccount:
		return kinerr.OperationFailed(err, message+": no key for the account")
	default:
		return kinerr.OperationFailed(err, message)
	}
}

func zeroKey(k *ecdsa.PrivateKey) {
	if k == nil || k.D == nil {
		return
	}
	b := k.D.Bits()
	for i := range b {
		b[i] = 0
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
