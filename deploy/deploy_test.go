package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testBlockchain serves contract states only, any transaction-related call
// panics on the nil RPCActor.
type testBlockchain struct {
	actor.RPCActor

	contracts map[util.Uint160]*state.Contract
	err       error
}

func (x *testBlockchain) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	if x.err != nil {
		return nil, x.err
	}
	c, ok := x.contracts[h]
	if !ok {
		return nil, errors.New("Unknown contract")
	}
	return c, nil
}

func newTestPrm(t *testing.T, b Blockchain) Prm {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	n, err := nef.NewFile(make([]byte, 32))
	require.NoError(t, err)

	return Prm{
		Logger:       zaptest.NewLogger(t),
		Blockchain:   b,
		LocalAccount: acc,
		NEF:          *n,
		Manifest:     *manifest.NewManifest("CDM"),
	}
}

func TestContractAddress(t *testing.T) {
	prm := newTestPrm(t, nil)
	sender := prm.LocalAccount.ScriptHash()

	addr := ContractAddress(sender, prm.NEF, prm.Manifest)
	require.Equal(t, state.CreateContractHash(sender, prm.NEF.Checksum, "CDM"), addr)

	other := *manifest.NewManifest("other")
	require.NotEqual(t, addr, ContractAddress(sender, prm.NEF, other))
}

func TestDeploy_AlreadyDeployed(t *testing.T) {
	b := &testBlockchain{contracts: make(map[util.Uint160]*state.Contract)}
	prm := newTestPrm(t, b)

	addr := ContractAddress(prm.LocalAccount.ScriptHash(), prm.NEF, prm.Manifest)
	b.contracts[addr] = &state.Contract{}

	res, err := Deploy(context.Background(), prm)
	require.NoError(t, err)
	require.Equal(t, addr, res)
}

func TestDeploy_StateFailure(t *testing.T) {
	b := &testBlockchain{err: errors.New("connection refused")}
	prm := newTestPrm(t, b)

	_, err := Deploy(context.Background(), prm)
	require.ErrorIs(t, err, b.err)
}

func TestIsErrContractNotFound(t *testing.T) {
	require.True(t, isErrContractNotFound(errors.New("Unknown contract")))
	require.True(t, isErrContractNotFound(errors.New("Invalid params: Unknown contract (-102)")))
	require.False(t, isErrContractNotFound(errors.New("connection refused")))
}
