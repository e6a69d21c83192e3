// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	uconfig "go.uber.org/config"

	"github.com/dbpunk-labs/db3/db"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/tracer"
	"github.com/dbpunk-labs/db3/pkg/unit"
	"github.com/dbpunk-labs/db3/state/factory"
)

// Default is the default config
var (
	Default = Config{
		Chain: Chain{
			ID:              "db3-devnet",
			Network:         mutation.DevNet.String(),
			Limits:          mutation.DefaultLimits,
			DefaultGasPrice: 1,
			RetainBlocks:    0,
		},
		DB: DB{
			State: factory.Config{
				DBPath:    "/var/data/state",
				CacheSize: factory.DefaultConfig.CacheSize,
			},
			MetaDBPath: "/var/data/meta.db",
			Meta:       db.DefaultConfig,
		},
		ABCI: ABCI{
			Address:   "tcp://127.0.0.1:26658",
			Transport: "socket",
		},
		System: System{
			HTTPStatsPort:     8080,
			HTTPAdminPort:     9009,
			HeartbeatInterval: 10 * time.Second,
		},
		SubLogs: make(map[string]log.GlobalConfig),
	}

	// ErrInvalidCfg indicates the invalid config value
	ErrInvalidCfg = errors.New("invalid config value")

	// Validates is the collection config validation functions
	Validates = []Validate{
		ValidateChain,
		ValidateLimits,
		ValidateDB,
	}
)

type (
	// Chain is the config of the chain the node validates
	Chain struct {
		// ID is the consensus chain id, checked on InitChain when not empty
		ID string `yaml:"id"`
		// Network is the network mutations must be signed for: mainnet, testnet or devnet
		Network string `yaml:"network"`
		// Limits bounds the size of accepted transactions
		Limits mutation.Limits `yaml:"limits"`
		// DefaultGasPrice is the gas price in tai of mutations without one
		DefaultGasPrice uint64 `yaml:"defaultGasPrice"`
		// RetainBlocks is the number of recent blocks the consensus engine keeps, 0 keeps all
		RetainBlocks uint64 `yaml:"retainBlocks"`
	}

	// DB is the config of the stores
	DB struct {
		State      factory.Config `yaml:"state"`
		MetaDBPath string         `yaml:"metaDBPath"`
		Meta       db.Config      `yaml:"meta"`
	}

	// ABCI is the config of the ABCI server
	ABCI struct {
		Address string `yaml:"address"`
		// Transport is socket or grpc
		Transport string `yaml:"transport"`
	}

	// System is the system config
	System struct {
		// HTTPStatsPort serves prometheus metrics
		HTTPStatsPort int `yaml:"httpStatsPort"`
		// HTTPAdminPort serves log level changes and profiling
		HTTPAdminPort int `yaml:"httpAdminPort"`
		// HeartbeatInterval is the period of the node status log, 0 disables it
		HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`
	}

	// Config is the root config struct, each package's config should be put as its sub struct
	Config struct {
		Chain   Chain                       `yaml:"chain"`
		DB      DB                          `yaml:"db"`
		ABCI    ABCI                        `yaml:"abci"`
		System  System                      `yaml:"system"`
		Log     log.GlobalConfig            `yaml:"log"`
		SubLogs map[string]log.GlobalConfig `yaml:"subLogs"`
		Tracer  tracer.Config               `yaml:"tracer"`
	}

	// Validate is the interface of validating the config
	Validate func(Config) error
)

// New creates a config instance. It first loads the default configs. If the config path is not empty, it will read from
// the file and override the default configs. By default, it will apply all validation functions. To bypass validation,
// use DoNotValidate instead.
func New(configPaths []string, validates ...Validate) (Config, error) {
	opts := make([]uconfig.YAMLOption, 0)
	opts = append(opts, uconfig.Static(Default))
	opts = append(opts, uconfig.Expand(os.LookupEnv))
	for _, path := range configPaths {
		if path != "" {
			opts = append(opts, uconfig.File(path))
		}
	}
	yaml, err := uconfig.NewYAML(opts...)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to init config")
	}

	var cfg Config
	if err := yaml.Get(uconfig.Root).Populate(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal YAML config to struct")
	}

	// By default, the config needs to pass all the validation
	if len(validates) == 0 {
		validates = Validates
	}
	for _, validate := range validates {
		if err := validate(cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to validate config")
		}
	}
	return cfg, nil
}

// NetworkID returns the chain id mutations are validated against
func (c Chain) NetworkID() mutation.ChainID {
	id, err := mutation.ParseChainID(c.Network)
	if err != nil {
		log.S().Panicf("Error when parsing network %s", c.Network)
	}
	return id
}

// GasPrice returns the default gas price
func (c Chain) GasPrice() unit.Unit {
	return unit.NewTai(c.DefaultGasPrice)
}

// ValidateChain validates the chain configs
func ValidateChain(cfg Config) error {
	if _, err := mutation.ParseChainID(cfg.Chain.Network); err != nil {
		return errors.Wrapf(ErrInvalidCfg, "unknown network %s", cfg.Chain.Network)
	}
	return nil
}

// ValidateLimits validates the decoder limits
func ValidateLimits(cfg Config) error {
	l := cfg.Chain.Limits
	if l.MaxTxBytes == 0 || l.MaxNamespaceBytes == 0 || l.MaxKeyBytes == 0 || l.MaxValueBytes == 0 || l.MaxOps == 0 {
		return errors.Wrap(ErrInvalidCfg, "transaction limits should be greater than 0")
	}
	if l.MaxKeyBytes > l.MaxTxBytes || l.MaxValueBytes > l.MaxTxBytes {
		return errors.Wrap(ErrInvalidCfg, "key and value limits cannot exceed the transaction limit")
	}
	return nil
}

// ValidateDB validates the db configs
func ValidateDB(cfg Config) error {
	switch cfg.DB.Meta.DBType {
	case db.DBBolt, db.DBPebble:
		if cfg.DB.MetaDBPath == "" {
			return errors.Wrap(ErrInvalidCfg, "meta db path is empty")
		}
	case db.DBMemory:
	default:
		return errors.Wrapf(ErrInvalidCfg, "unsupported meta db type %s", cfg.DB.Meta.DBType)
	}
	if cfg.DB.State.CacheSize < 0 {
		return errors.Wrap(ErrInvalidCfg, "state cache size cannot be negative")
	}
	return nil
}

// DoNotValidate validates the given config
func DoNotValidate(cfg Config) error { return nil }
