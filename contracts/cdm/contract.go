package cdm

import (
	"github.com/nspcc-dev/cdm-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// ConjunctionDataMessage is a single record of the log.
type ConjunctionDataMessage struct {
	Object1ID            int
	Object2ID            int
	CollisionProbability int
	TimeOfClosestPass    int
}

const (
	ownerKey        = "o"
	providersKey    = "p"
	messageCountKey = "c"
	messagePrefix   = 'm'

	messageIndexLen = 8

	minInt32 = -1 << 31
	maxInt32 = 1<<31 - 1

	// ErrUnauthorized is thrown when the caller is not allowed to invoke
	// the method.
	ErrUnauthorized = "unauthorized"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	storage.Put(ctx, ownerKey, caller())
	common.SetSerialized(ctx, providersKey, []interop.Hash160{})

	runtime.Log("cdm contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("cdm contract updated")
}

// AddProvider method appends the account to the list of CDM providers. It can
// be invoked only by the contract owner. The list may contain duplicates.
func AddProvider(provider interop.Hash160) {
	if len(provider) != interop.Hash160Len {
		panic("invalid provider")
	}

	ctx := storage.GetContext()

	owner := getOwner(ctx)
	sender := caller()

	if !sender.Equals(owner) {
		panic(ErrUnauthorized)
	}

	providers := getProviders(ctx)
	providers = append(providers, provider)
	common.SetSerialized(ctx, providersKey, providers)

	runtime.Notify("ProviderAdded", provider)
}

// SubmitMessage method appends a Conjunction Data Message to the log. All
// arguments must be 32-bit signed integers.
//
// Messages of accounts which are not providers are dropped: the method
// returns without error and the log stays unchanged.
func SubmitMessage(object1ID, object2ID, collisionProbability, timeOfClosestPass int) {
	checkInt32(object1ID, "object1ID")
	checkInt32(object2ID, "object2ID")
	checkInt32(collisionProbability, "collisionProbability")
	checkInt32(timeOfClosestPass, "timeOfClosestPass")

	ctx := storage.GetContext()
	sender := caller()

	if !isProvider(ctx, sender) {
		runtime.Log("submitMessage: sender is not a provider, message dropped")
		return
	}

	msg := ConjunctionDataMessage{
		Object1ID:            object1ID,
		Object2ID:            object2ID,
		CollisionProbability: collisionProbability,
		TimeOfClosestPass:    timeOfClosestPass,
	}

	n := messageCount(ctx)
	common.SetSerialized(ctx, messageKey(n), msg)
	storage.Put(ctx, messageCountKey, n+1)

	runtime.Notify("MessageSubmitted", sender,
		object1ID, object2ID, collisionProbability, timeOfClosestPass)
}

// Owner method returns the account which deployed the contract.
func Owner() interop.Hash160 {
	return getOwner(storage.GetReadOnlyContext())
}

// Providers method returns the list of CDM providers in the order they were
// added.
func Providers() []interop.Hash160 {
	return getProviders(storage.GetReadOnlyContext())
}

// IsProvider method checks whether the account is a CDM provider.
func IsProvider(account interop.Hash160) bool {
	return isProvider(storage.GetReadOnlyContext(), account)
}

// MessageCount method returns the number of messages in the log.
func MessageCount() int {
	return messageCount(storage.GetReadOnlyContext())
}

// Messages method returns an iterator over all messages of the log in
// submission order. Items are ConjunctionDataMessage structures.
func Messages() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{messagePrefix}, storage.ValuesOnly|storage.DeserializeValues)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// caller returns the sender of the invoking transaction.
func caller() interop.Hash160 {
	return runtime.GetScriptContainer().Sender
}

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

func getProviders(ctx storage.Context) []interop.Hash160 {
	data := storage.Get(ctx, providersKey)
	if data == nil {
		return []interop.Hash160{}
	}

	return std.Deserialize(data.([]byte)).([]interop.Hash160)
}

func isProvider(ctx storage.Context, account interop.Hash160) bool {
	providers := getProviders(ctx)
	for i := range providers {
		if account.Equals(providers[i]) {
			return true
		}
	}

	return false
}

func messageCount(ctx storage.Context) int {
	n := storage.Get(ctx, messageCountKey)
	if n == nil {
		return 0
	}

	return n.(int)
}

// messageKey returns storage key of the message with the given index.
func messageKey(index int) []byte {
	key := []byte{messagePrefix, 0, 0, 0, 0, 0, 0, 0, 0}
	for i := messageIndexLen; i > 0; i-- {
		key[i] = byte(index & 0xFF)
		index = index >> 8
	}

	return key
}

func checkInt32(v int, name string) {
	if v < minInt32 || v > maxInt32 {
		panic(name + " overflows int32")
	}
}
