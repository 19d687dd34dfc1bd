package ledger

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"kincore/app/config"
	"kincore/app/models"
	"kincore/pkg/eth"
	"kincore/pkg/kinerr"
	"kincore/pkg/log"
)

const (
	keyChainID  = "chain_id"
	keyDecimals = "decimals"
)

type Manager struct {
	Config   config.Ethereum
	KeyStore *keystore.KeyStore
	Backend  Backend

	token *common.Address // nil for native ether
	facts *cache.Cache    // network constants only, never balances

	mu      sync.Mutex
	senders map[common.Address]*sync.Mutex

	importMu sync.Mutex
}

func NewManager(cfg config.Ethereum, ks *keystore.KeyStore, backend Backend) *Manager {
	m := &Manager{
		Config:   cfg,
		KeyStore: ks,
		Backend:  backend,
		facts:    cache.New(cache.NoExpiration, 0),
		senders:  make(map[common.Address]*sync.Mutex),
	}
	if cfg.TokenAddress != "" {
		token := common.HexToAddress(cfg.TokenAddress)
		m.token = &token
	}
	m.Config.ApplyDefaults()
	return m
}

// NewKeyStore opens the encrypted key directory. Light scrypt parameters are
// meant for tests and development nodes.
func NewKeyStore(cfg config.KeyStore) *keystore.KeyStore {
	if cfg.LightScrypt {
		return keystore.NewKeyStore(cfg.Dir, keystore.LightScryptN, keystore.LightScryptP)
	}
	return keystore.NewKeyStore(cfg.Dir, keystore.StandardScryptN, keystore.StandardScryptP)
}

func (m *Manager) ConfirmedBalance(ctx context.Context, address string) (*models.Balance, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	log.AddFields(ctx, "address", address)

	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}

	confirmed, err := m.confirmedUnits(ctx, addr)
	if err != nil {
		return nil, err
	}
	decimals, err := m.decimals(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Balance{
		Address:   addr.Hex(),
		Confirmed: eth.FromBaseUnits(confirmed, decimals),
	}, nil
}

func (m *Manager) GetBalance(ctx context.Context, address string) (*models.Balance, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	log.AddFields(ctx, "address", address)

	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}

	confirmed, err := m.confirmedUnits(ctx, addr)
	if err != nil {
		return nil, err
	}
	pending, err := m.pendingUnits(ctx, addr)
	if err != nil {
		return nil, err
	}
	decimals, err := m.decimals(ctx)
	if err != nil {
		return nil, err
	}

	pendingAmount := eth.FromBaseUnits(pending, decimals)
	return &models.Balance{
		Address:   addr.Hex(),
		Confirmed: eth.FromBaseUnits(confirmed, decimals),
		Pending:   &pendingAmount,
	}, nil
}

func (m *Manager) confirmedUnits(ctx context.Context, addr common.Address) (*big.Int, error) {
	if m.token == nil {
		balance, err := m.Backend.BalanceAt(ctx, addr, nil)
		if err != nil {
			return nil, backendError(ctx, err, "failed to check confirmed balance")
		}
		return balance, nil
	}

	out, err := m.Backend.CallContract(ctx, ethereum.CallMsg{To: m.token, Data: balanceOfData(addr)}, nil)
	if err != nil {
		return nil, backendError(ctx, err, "failed to check confirmed token balance")
	}
	balance, err := decodeUint(out)
	if err != nil {
		return nil, kinerr.OperationFailed(err, "failed to decode token balance")
	}
	return balance, nil
}

func (m *Manager) pendingUnits(ctx context.Context, addr common.Address) (*big.Int, error) {
	if m.token == nil {
		balance, err := m.Backend.PendingBalanceAt(ctx, addr)
		if err != nil {
			return nil, backendError(ctx, err, "failed to check pending balance")
		}
		return balance, nil
	}

	out, err := m.Backend.PendingCallContract(ctx, ethereum.CallMsg{To: m.token, Data: balanceOfData(addr)})
	if err != nil {
		return nil, backendError(ctx, err, "failed to check pending token balance")
	}
	balance, err := decodeUint(out)
	if err != nil {
		return nil, kinerr.OperationFailed(err, "failed to decode pending token balance")
	}
	return balance, nil
}

func (m *Manager) decimals(ctx context.Context) (uint8, error) {
	if m.token == nil {
		return eth.EtherDecimals, nil
	}
	if cached, ok := m.facts.Get(keyDecimals); ok {
		return cached.(uint8), nil
	}

	out, err := m.Backend.CallContract(ctx, ethereum.CallMsg{To: m.token, Data: decimalsMethodID}, nil)
	if err != nil {
		return 0, backendError(ctx, err, "failed to get token's decimals")
	}
	value, err := decodeUint(out)
	if err != nil {
		return 0, kinerr.OperationFailed(err, "failed to decode token's decimals")
	}
	if !value.IsUint64() || value.Uint64() > 255 {
		return 0, kinerr.OperationFailed(errors.Errorf("decimals %s out of range", value), "invalid token contract")
	}

	decimals := uint8(value.Uint64())
	m.facts.SetDefault(keyDecimals, decimals)
	return decimals, nil
}

func (m *Manager) chainID(ctx context.Context) (*big.Int, error) {
	if cached, ok := m.facts.Get(keyChainID); ok {
		return new(big.Int).Set(cached.(*big.Int)), nil
	}

	chainID, err := m.Backend.NetworkID(ctx)
	if err != nil {
		return nil, backendError(ctx, err, "failed to retrieve chain id")
	}
	m.facts.SetDefault(keyChainID, new(big.Int).Set(chainID))
	return chainID, nil
}

// lockSender serializes transfers from one address so that concurrent calls
// never build two transactions with the same nonce.
func (m *Manager) lockSender(addr common.Address) func() {
	m.mu.Lock()
	l, ok := m.senders[addr]
	if !ok {
		l = new(sync.Mutex)
		m.senders[addr] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.Config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.Config.RequestTimeout)
}

func parseAddress(address string) (common.Address, error) {
	if !eth.IsValidAddress(address) {
		return common.Address{}, kinerr.OperationFailed(
			errors.Errorf("malformed address %q", address), "failed to query the ledger",
		)
	}
	return common.HexToAddress(address), nil
}

// backendError reports an interrupted wait through its context error rather
// than the transport error it caused.
func backendError(ctx context.Context, err error, message string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return kinerr.OperationFailed(ctxErr, message+": interrupted")
	}
	return kinerr.OperationFailed(err, message)
}
