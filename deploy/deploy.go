package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for CDM contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups parameters of the CDM contract deployment.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// The account becomes the owner of the contract.
	LocalAccount *wallet.Account

	NEF      nef.File
	Manifest manifest.Manifest
}

// ContractAddress returns address of the contract with the given NEF and
// manifest deployed by the sender.
func ContractAddress(sender util.Uint160, n nef.File, m manifest.Manifest) util.Uint160 {
	return state.CreateContractHash(sender, n.Checksum, m.Name)
}

// Deploy deploys the CDM contract on behalf of Prm.LocalAccount and returns
// its address. If the contract is already deployed by the account, Deploy
// does nothing. Deploy waits for the deployment transaction to be persisted
// and fails if its execution faults.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	addr := ContractAddress(prm.LocalAccount.ScriptHash(), prm.NEF, prm.Manifest)
	l := prm.Logger.With(zap.Stringer("address", addr))

	deployed, err := isDeployed(prm.Blockchain, addr)
	if err != nil {
		return addr, err
	}

	if deployed {
		l.Info("CDM contract is already deployed, skip")
		return addr, nil
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return addr, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return addr, err
	}

	l.Info("sending CDM contract deployment transaction...")

	txHash, vub, err := management.New(act).Deploy(&prm.NEF, &prm.Manifest, nil)
	if err != nil {
		return addr, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Info("deployment transaction sent, waiting for it to be persisted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return addr, fmt.Errorf("wait for deployment transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return addr, fmt.Errorf("deployment transaction %s failed: %s", txHash.StringLE(), res.FaultException)
	}

	l.Info("CDM contract successfully deployed")

	return addr, nil
}

// isDeployed checks whether contract with the given address exists on the
// chain.
func isDeployed(b Blockchain, addr util.Uint160) (bool, error) {
	_, err := b.GetContractStateByHash(addr)
	if err == nil {
		return true, nil
	}

	if isErrContractNotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("get contract state by address %s: %w", addr.StringLE(), err)
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
