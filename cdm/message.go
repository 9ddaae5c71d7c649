package cdm

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// messageFields is the number of fields in the Message stack item.
const messageFields = 4

// Message is a Conjunction Data Message: a predicted close approach of two
// tracked objects. Field values are stored as is, no range checks are made.
type Message struct {
	Object1ID            int32
	Object2ID            int32
	CollisionProbability int32
	TimeOfClosestPass    int32
}

// EncodeBinary implements io.Serializable. Fields are written in their
// declaration order as little-endian 32-bit integers.
func (m *Message) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(m.Object1ID))
	w.WriteU32LE(uint32(m.Object2ID))
	w.WriteU32LE(uint32(m.CollisionProbability))
	w.WriteU32LE(uint32(m.TimeOfClosestPass))
}

// DecodeBinary implements io.Serializable.
func (m *Message) DecodeBinary(r *io.BinReader) {
	m.Object1ID = int32(r.ReadU32LE())
	m.Object2ID = int32(r.ReadU32LE())
	m.CollisionProbability = int32(r.ReadU32LE())
	m.TimeOfClosestPass = int32(r.ReadU32LE())
}

// ToStackItem converts Message into the NeoVM struct stored by the contract.
func (m Message) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(big.NewInt(int64(m.Object1ID))),
		stackitem.NewBigInteger(big.NewInt(int64(m.Object2ID))),
		stackitem.NewBigInteger(big.NewInt(int64(m.CollisionProbability))),
		stackitem.NewBigInteger(big.NewInt(int64(m.TimeOfClosestPass))),
	})
}

// FromStackItem retrieves fields of Message from the given struct or array
// item. It fails if the item is not a 4-element array of integers fitting
// into int32.
func (m *Message) FromStackItem(item stackitem.Item) error {
	if item == nil {
		return errors.New("nil item")
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != messageFields {
		return errors.New("wrong number of structure elements")
	}

	fields := [messageFields]struct {
		name string
		dst  *int32
	}{
		{"object1ID", &m.Object1ID},
		{"object2ID", &m.Object2ID},
		{"collisionProbability", &m.CollisionProbability},
		{"timeOfClosestPass", &m.TimeOfClosestPass},
	}

	for i := range fields {
		v, err := itemToInt32(arr[i])
		if err != nil {
			return fmt.Errorf("field %s: %w", fields[i].name, err)
		}
		*fields[i].dst = v
	}

	return nil
}

func itemToInt32(item stackitem.Item) (int32, error) {
	n, err := item.TryInteger()
	if err != nil {
		return 0, err
	}

	if !n.IsInt64() || n.Int64() < math.MinInt32 || n.Int64() > math.MaxInt32 {
		return 0, fmt.Errorf("value %s overflows int32", n)
	}

	return int32(n.Int64()), nil
}
