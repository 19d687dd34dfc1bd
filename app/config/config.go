package config

import (
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"kincore/pkg/eth"
	"kincore/pkg/log"
)

const (
	defaultConfigPath = "./configs/config.yaml"

	defaultRestAddr       = "127.0.0.1:8000"
	defaultKeyStoreDir    = "./keystore"
	defaultRequestTimeout = 30 * time.Second

	// TokenTransferGas is the default gas limit of an ERC-20 transfer.
	TokenTransferGas = 60000
)

type Ethereum struct {
	NodeUrl        string        `mapstructure:"nodeUrl"`
	TokenAddress   string        `mapstructure:"tokenAddress"` // empty for native ether
	TransferGas    uint64        `mapstructure:"transferGas"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

// ApplyDefaults fills the transfer gas limit when it is not set.
func (e *Ethereum) ApplyDefaults() {
	if e.TransferGas != 0 {
		return
	}
	// token transfers run contract code and need more gas
	if e.TokenAddress != "" {
		e.TransferGas = TokenTransferGas
	} else {
		e.TransferGas = eth.TransferGas
	}
}

func (e *Ethereum) Validate() error {
	var err error
	if e.NodeUrl == "" {
		err = multierr.Append(err, errors.New("you must provide eth node url in a config"))
	}

	if e.TokenAddress != "" && !eth.IsValidAddress(e.TokenAddress) {
		err = multierr.Append(err, errors.Errorf("invalid token address %q in a config", e.TokenAddress))
	}

	if e.TransferGas == 0 {
		err = multierr.Append(err, errors.New("you must provide transfer gas limit in a config"))
	}

	if e.RequestTimeout < 0 {
		err = multierr.Append(err, errors.New("request timeout must not be negative"))
	}

	return err
}

type KeyStore struct {
	Dir         string `mapstructure:"dir"`
	LightScrypt bool   `mapstructure:"lightScrypt"`
}

func (k *KeyStore) Validate() error {
	if k.Dir == "" {
		return errors.New("you must provide a key store directory in a config")
	}
	return nil
}

type Config struct {
	RestAddr string     `mapstructure:"restAddr"`
	Ethereum Ethereum   `mapstructure:"ethereum"`
	KeyStore KeyStore   `mapstructure:"keystore"`
	Logging  log.Config `mapstructure:"log"`
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Ethereum.Validate(),
		c.KeyStore.Validate(),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("restAddr", defaultRestAddr)
	v.SetDefault("keystore.dir", defaultKeyStoreDir)
	v.SetDefault("ethereum.requestTimeout", defaultRequestTimeout)
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// read a config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read a file")
	}

	// unmarshal to a config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal a config")
	}

	cfg.Ethereum.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, nil
}

// Parse loads the config file named by the -config flag.
func Parse() (*Config, error) {
	configPath := flag.String("config", defaultConfigPath, "configuration file path")
	flag.Parse()

	return Load(*configPath)
}
