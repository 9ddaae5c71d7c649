// Package cdm contains RPC wrappers for CDM contract.
package cdm

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// ProviderAddedEvent represents "ProviderAdded" event emitted by the contract.
type ProviderAddedEvent struct {
	Provider util.Uint160
}

// MessageSubmittedEvent represents "MessageSubmitted" event emitted by the contract.
type MessageSubmittedEvent struct {
	Provider util.Uint160
	Object1ID *big.Int
	Object2ID *big.Int
	CollisionProbability *big.Int
	TimeOfClosestPass *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// IsProvider invokes `isProvider` method of contract.
func (c *ContractReader) IsProvider(account util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isProvider", account))
}

// MessageCount invokes `messageCount` method of contract.
func (c *ContractReader) MessageCount() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "messageCount"))
}

// Messages invokes `messages` method of contract.
func (c *ContractReader) Messages() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "messages"))
}

// MessagesExpanded is similar to Messages (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) MessagesExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "messages", _numOfIteratorItems))
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "owner"))
}

// Providers invokes `providers` method of contract.
func (c *ContractReader) Providers() ([]util.Uint160, error) {
	return unwrap.ArrayOfUint160(c.invoker.Call(c.hash, "providers"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// AddProvider creates a transaction invoking `addProvider` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) AddProvider(provider util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "addProvider", provider)
}

// AddProviderTransaction creates a transaction invoking `addProvider` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AddProviderTransaction(provider util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "addProvider", provider)
}

// AddProviderUnsigned creates a transaction invoking `addProvider` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AddProviderUnsigned(provider util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "addProvider", nil, provider)
}

// SubmitMessage creates a transaction invoking `submitMessage` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SubmitMessage(object1ID *big.Int, object2ID *big.Int, collisionProbability *big.Int, timeOfClosestPass *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "submitMessage", object1ID, object2ID, collisionProbability, timeOfClosestPass)
}

// SubmitMessageTransaction creates a transaction invoking `submitMessage` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SubmitMessageTransaction(object1ID *big.Int, object2ID *big.Int, collisionProbability *big.Int, timeOfClosestPass *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "submitMessage", object1ID, object2ID, collisionProbability, timeOfClosestPass)
}

// SubmitMessageUnsigned creates a transaction invoking `submitMessage` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SubmitMessageUnsigned(object1ID *big.Int, object2ID *big.Int, collisionProbability *big.Int, timeOfClosestPass *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "submitMessage", nil, object1ID, object2ID, collisionProbability, timeOfClosestPass)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// ProviderAddedEventsFromApplicationLog retrieves a set of all emitted events
// with "ProviderAdded" name from the provided [result.ApplicationLog].
func ProviderAddedEventsFromApplicationLog(log *result.ApplicationLog) ([]*ProviderAddedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*ProviderAddedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "ProviderAdded" {
				continue
			}
			event := new(ProviderAddedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize ProviderAddedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to ProviderAddedEvent or
// returns an error if it's not possible to do to so.
func (e *ProviderAddedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Provider, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Provider: %w", err)
	}

	return nil
}

// MessageSubmittedEventsFromApplicationLog retrieves a set of all emitted events
// with "MessageSubmitted" name from the provided [result.ApplicationLog].
func MessageSubmittedEventsFromApplicationLog(log *result.ApplicationLog) ([]*MessageSubmittedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*MessageSubmittedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "MessageSubmitted" {
				continue
			}
			event := new(MessageSubmittedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize MessageSubmittedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to MessageSubmittedEvent or
// returns an error if it's not possible to do to so.
func (e *MessageSubmittedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 5 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Provider, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Provider: %w", err)
	}

	index++
	e.Object1ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Object1ID: %w", err)
	}

	index++
	e.Object2ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Object2ID: %w", err)
	}

	index++
	e.CollisionProbability, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field CollisionProbability: %w", err)
	}

	index++
	e.TimeOfClosestPass, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TimeOfClosestPass: %w", err)
	}

	return nil
}
