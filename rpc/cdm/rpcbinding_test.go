package cdm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	cdmcore "github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testAct struct {
	res *result.Invoke
	err error

	method   string
	params   []any
	maxItems int

	pages      [][]stackitem.Item
	terminated bool

	txh util.Uint256
	vub uint32
}

func (t *testAct) Call(contract util.Uint160, method string, params ...any) (*result.Invoke, error) {
	t.method, t.params = method, params
	return t.res, t.err
}

func (t *testAct) CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error) {
	t.method, t.params, t.maxItems = method, params, maxItems
	return t.res, t.err
}

func (t *testAct) TerminateSession(uuid.UUID) error {
	t.terminated = true
	return t.err
}

func (t *testAct) TraverseIterator(uuid.UUID, *result.Iterator, int) ([]stackitem.Item, error) {
	if len(t.pages) == 0 {
		return nil, t.err
	}
	p := t.pages[0]
	t.pages = t.pages[1:]
	return p, t.err
}

func (t *testAct) MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	t.method, t.params = method, params
	return transaction.New([]byte{1}, 0), t.err
}

func (t *testAct) MakeRun(script []byte) (*transaction.Transaction, error) {
	return transaction.New(script, 0), t.err
}

func (t *testAct) MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	t.method, t.params = method, params
	return transaction.New([]byte{1}, 0), t.err
}

func (t *testAct) MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	return transaction.New(script, 0), t.err
}

func (t *testAct) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	t.method, t.params = method, params
	return t.txh, t.vub, t.err
}

func (t *testAct) SendRun(script []byte) (util.Uint256, uint32, error) {
	return t.txh, t.vub, t.err
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: items,
	}
}

func TestReader(t *testing.T) {
	ta := new(testAct)
	r := NewReader(ta, util.Uint160{1, 2, 3})

	owner := util.Uint160{0xA}
	provider := util.Uint160{0xB}

	ta.res = halt(stackitem.NewByteArray(owner.BytesBE()))
	o, err := r.Owner()
	require.NoError(t, err)
	require.Equal(t, owner, o)
	require.Equal(t, "owner", ta.method)

	ta.res = halt(stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(provider.BytesBE()),
		stackitem.NewByteArray(provider.BytesBE()),
	}))
	ps, err := r.Providers()
	require.NoError(t, err)
	require.Equal(t, []util.Uint160{provider, provider}, ps)

	ta.res = halt(stackitem.NewBool(true))
	ok, err := r.IsProvider(provider)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []any{provider}, ta.params)

	ta.res = halt(stackitem.Make(3))
	n, err := r.MessageCount()
	require.NoError(t, err)
	require.EqualValues(t, 3, n.Int64())

	ta.res = &result.Invoke{State: vmstate.Fault.String(), FaultException: "boom"}
	_, err = r.Version()
	require.Error(t, err)

	ta.res, ta.err = nil, errors.New("connection lost")
	_, err = r.Owner()
	require.ErrorIs(t, err, ta.err)
}

func TestReader_ListMessages(t *testing.T) {
	ta := new(testAct)
	r := NewReader(ta, util.Uint160{1, 2, 3})

	msgs := []cdmcore.Message{
		{Object1ID: 1234, Object2ID: 5678, CollisionProbability: 50, TimeOfClosestPass: 123345567},
		{Object1ID: -1, Object2ID: -2, CollisionProbability: -3, TimeOfClosestPass: -4},
	}

	ta.res = halt(stackitem.NewArray([]stackitem.Item{msgs[0].ToStackItem(), msgs[1].ToStackItem()}))

	res, err := r.ListMessages(0)
	require.NoError(t, err)
	require.Equal(t, msgs, res)
	require.Equal(t, "messages", ta.method)
	require.Equal(t, DefaultMaxMessages, ta.maxItems)

	_, err = r.ListMessages(10)
	require.NoError(t, err)
	require.Equal(t, 10, ta.maxItems)

	ta.res = halt(stackitem.NewArray([]stackitem.Item{stackitem.Make(1)}))
	_, err = r.ListMessages(1)
	require.Error(t, err)
}

func TestReader_IterateMessages(t *testing.T) {
	ta := new(testAct)
	r := NewReader(ta, util.Uint160{1, 2, 3})

	msgs := []cdmcore.Message{
		{Object1ID: 1, Object2ID: 2, CollisionProbability: 3, TimeOfClosestPass: 4},
		{Object1ID: 5, Object2ID: 6, CollisionProbability: 7, TimeOfClosestPass: 8},
		{Object1ID: 9, Object2ID: 10, CollisionProbability: 11, TimeOfClosestPass: 12},
	}

	iterID := uuid.New()
	ta.res = halt(stackitem.NewInterop(result.Iterator{ID: &iterID}))
	ta.res.Session = uuid.New()
	ta.pages = [][]stackitem.Item{
		{msgs[0].ToStackItem(), msgs[1].ToStackItem()},
		{msgs[2].ToStackItem()},
	}

	var res []cdmcore.Message
	err := r.IterateMessages(func(m cdmcore.Message) error {
		res = append(res, m)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, msgs, res)
	require.True(t, ta.terminated)

	t.Run("handler error", func(t *testing.T) {
		ta.terminated = false
		ta.pages = [][]stackitem.Item{{msgs[0].ToStackItem(), msgs[1].ToStackItem()}}

		errStop := errors.New("stop")
		var n int
		err := r.IterateMessages(func(cdmcore.Message) error {
			n++
			return errStop
		})
		require.ErrorIs(t, err, errStop)
		require.Equal(t, 1, n)
		require.True(t, ta.terminated)
	})

	t.Run("no sessions", func(t *testing.T) {
		ta.res = halt(stackitem.NewArray(nil))
		require.Error(t, r.IterateMessages(func(cdmcore.Message) error { return nil }))
	})
}

func TestContract_Submit(t *testing.T) {
	ta := &testAct{txh: util.Uint256{1}, vub: 42}
	c := New(ta, util.Uint160{1, 2, 3})

	h, vub, err := c.Submit(cdmcore.Message{Object1ID: 1, Object2ID: 2, CollisionProbability: 3, TimeOfClosestPass: -4})
	require.NoError(t, err)
	require.Equal(t, ta.txh, h)
	require.EqualValues(t, 42, vub)
	require.Equal(t, "submitMessage", ta.method)
	require.Equal(t, []any{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(-4)}, ta.params)

	provider := util.Uint160{0xB}
	_, _, err = c.AddProvider(provider)
	require.NoError(t, err)
	require.Equal(t, "addProvider", ta.method)
	require.Equal(t, []any{provider}, ta.params)

	_, err = c.AddProviderUnsigned(provider)
	require.NoError(t, err)
	require.Equal(t, "addProvider", ta.method)
}

func TestEventsFromApplicationLog(t *testing.T) {
	provider := util.Uint160{0xB}

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{
					Name: "ProviderAdded",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(provider.BytesBE())}),
				},
				{
					Name: "MessageSubmitted",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.NewByteArray(provider.BytesBE()),
						stackitem.Make(1234),
						stackitem.Make(5678),
						stackitem.Make(50),
						stackitem.Make(123345567),
					}),
				},
			},
		}},
	}

	added, err := ProviderAddedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, provider, added[0].Provider)

	submitted, err := MessageSubmittedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	require.Equal(t, provider, submitted[0].Provider)

	m, err := submitted[0].Message()
	require.NoError(t, err)
	require.Equal(t, cdmcore.Message{Object1ID: 1234, Object2ID: 5678, CollisionProbability: 50, TimeOfClosestPass: 123345567}, m)

	t.Run("overflow", func(t *testing.T) {
		ev := *submitted[0]
		ev.TimeOfClosestPass = big.NewInt(1 << 31)
		_, err := ev.Message()
		require.Error(t, err)
	})

	t.Run("nil log", func(t *testing.T) {
		_, err := ProviderAddedEventsFromApplicationLog(nil)
		require.Error(t, err)
		_, err = MessageSubmittedEventsFromApplicationLog(nil)
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		bad := &result.ApplicationLog{
			Executions: []state.Execution{{
				Events: []state.NotificationEvent{{
					Name: "MessageSubmitted",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.Make(1)}),
				}},
			}},
		}
		_, err := MessageSubmittedEventsFromApplicationLog(bad)
		require.Error(t, err)
	})
}
