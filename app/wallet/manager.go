package wallet

import (
	"github.com/ethereum/go-ethereum/accounts"

	"kincore/app/ledger"
)

// Manager creates accounts on top of one shared ledger client.
type Manager struct {
	Ledger ledger.Service
}

func NewManager(client ledger.Service) *Manager {
	return &Manager{Ledger: client}
}

func (m *Manager) CreateAccount(passphrase string) (*Account, error) {
	handle, err := m.Ledger.CreateAccount(passphrase)
	if err != nil {
		return nil, err
	}
	return m.wrap(handle), nil
}

// ImportAccount wraps an existing key store entry without touching the store.
func (m *Manager) ImportAccount(address string) (*Account, error) {
	handle, err := m.Ledger.ImportAccount(address)
	if err != nil {
		return nil, err
	}
	return m.wrap(handle), nil
}

func (m *Manager) ImportKey(keyJSON []byte, passphrase, newPassphrase string) (*Account, error) {
	handle, err := m.Ledger.ImportKey(keyJSON, passphrase, newPassphrase)
	if err != nil {
		return nil, err
	}
	return m.wrap(handle), nil
}

// GetAccount is like ImportAccount but fails if the key store has no entry.
func (m *Manager) GetAccount(address string) (*Account, error) {
	handle, err := m.Ledger.FindAccount(address)
	if err != nil {
		return nil, err
	}
	return m.wrap(handle), nil
}

func (m *Manager) DeleteAccount(address, passphrase string) error {
	handle, err := m.Ledger.FindAccount(address)
	if err != nil {
		return err
	}
	return m.Ledger.DeleteAccount(handle, passphrase)
}

func (m *Manager) Accounts() []*Account {
	handles := m.Ledger.Accounts()
	result := make([]*Account, 0, len(handles))
	for _, h := range handles {
		result = append(result, m.wrap(h))
	}
	return result
}

func (m *Manager) wrap(handle accounts.Account) *Account {
	return &Account{handle: handle, ledger: m.Ledger}
}
