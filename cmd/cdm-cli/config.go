package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

const defaultTimeout = 15 * time.Second

// config is a YAML configuration of the CLI. Command line flags override
// corresponding config values.
type config struct {
	RPCEndpoint string        `yaml:"rpc_endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	Contract    string        `yaml:"contract"`
	Wallet      string        `yaml:"wallet"`
	Account     string        `yaml:"account"`
	Password    string        `yaml:"password"`
}

var errMissingRPCEndpoint = errors.New("missing Neo RPC endpoint")

// loadConfig reads config from the YAML file at the given path. Empty path
// means empty config.
func loadConfig(path string) (config, error) {
	var cfg config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}

		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("decode YAML config '%s': %w", path, err)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return cfg, nil
}

// configFromContext loads config file referenced by the global flag and
// applies global flag overrides.
func configFromContext(c *cli.Context) (config, error) {
	cfg, err := loadConfig(c.GlobalString(configFlag))
	if err != nil {
		return cfg, err
	}

	override := func(dst *string, flag string) {
		if v := c.GlobalString(flag); v != "" {
			*dst = v
		}
	}

	override(&cfg.RPCEndpoint, rpcFlag)
	override(&cfg.Contract, contractFlag)
	override(&cfg.Wallet, walletFlag)
	override(&cfg.Account, accountFlag)

	if cfg.RPCEndpoint == "" {
		return cfg, errMissingRPCEndpoint
	}

	return cfg, nil
}
