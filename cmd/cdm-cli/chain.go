package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/cdm-contract/rpc/cdm"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// remoteBlockchain wraps Neo RPC client providing CDM contract services.
type remoteBlockchain struct {
	rpc *rpcclient.Client

	currentBlock uint32
}

// newRemoteBlockchain dials Neo RPC server from the config and returns
// remoteBlockchain based on the opened connection.
func newRemoteBlockchain(ctx context.Context, cfg config) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, cfg.RPCEndpoint, rpcclient.Options{
		DialTimeout:    cfg.Timeout,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	nLatestBlock, err := c.GetBlockCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get number of the latest block: %w", err)
	}

	return &remoteBlockchain{
		rpc:          c,
		currentBlock: nLatestBlock,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// reader returns CDM contract reader for the contract from the config.
func (x *remoteBlockchain) reader(cfg config) (*cdm.ContractReader, error) {
	h, err := parseIdentity(cfg.Contract)
	if err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}

	return cdm.NewReader(invoker.New(x.rpc, nil), h), nil
}

// contract returns CDM contract signing transactions with the wallet account
// from the config. Returned actor awaits sent transactions.
func (x *remoteBlockchain) contract(cfg config) (*cdm.Contract, *actor.Actor, error) {
	h, err := parseIdentity(cfg.Contract)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid contract address: %w", err)
	}

	acc, err := openAccount(cfg)
	if err != nil {
		return nil, nil, err
	}

	act, err := actor.NewSimple(x.rpc, acc)
	if err != nil {
		return nil, nil, fmt.Errorf("init actor: %w", err)
	}

	return cdm.New(act, h), act, nil
}

// openAccount opens the wallet from the config and decrypts the configured
// account. If no account is configured, the default wallet account is used.
func openAccount(cfg config) (*wallet.Account, error) {
	if cfg.Wallet == "" {
		return nil, fmt.Errorf("missing wallet path")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	var h util.Uint160
	if cfg.Account != "" {
		h, err = parseIdentity(cfg.Account)
		if err != nil {
			return nil, fmt.Errorf("invalid account address: %w", err)
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("account %s not found in the wallet", address.Uint160ToString(h))
	}

	err = acc.Decrypt(cfg.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

// parseIdentity decodes account or contract script hash from either Neo
// address or little-endian hex string.
func parseIdentity(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, fmt.Errorf("empty value")
	}

	h, err := address.StringToUint160(s)
	if err == nil {
		return h, nil
	}

	if len(s) > 2 && s[:2] == "0x" {
		s = s[2:]
	}

	h, err = util.Uint160DecodeStringLE(s)
	if err != nil {
		return h, fmt.Errorf("'%s' is neither address nor script hash", s)
	}

	return h, nil
}
