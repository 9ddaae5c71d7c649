package cdm

import (
	"fmt"
	"math/big"

	cdmcore "github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DefaultMaxMessages is the default limit of messages read by
// ContractReader.ListMessages.
const DefaultMaxMessages = 1000

// iteratorBatchSize is the number of messages requested per iterator
// traversal.
const iteratorBatchSize = 100

// Submit sends m to the contract log, see Contract.SubmitMessage.
func (c *Contract) Submit(m cdmcore.Message) (util.Uint256, uint32, error) {
	return c.SubmitMessage(
		big.NewInt(int64(m.Object1ID)),
		big.NewInt(int64(m.Object2ID)),
		big.NewInt(int64(m.CollisionProbability)),
		big.NewInt(int64(m.TimeOfClosestPass)),
	)
}

// ListMessages returns up to maxItems first messages of the log in
// submission order. Non-positive maxItems means DefaultMaxMessages.
func (c *ContractReader) ListMessages(maxItems int) ([]cdmcore.Message, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxMessages
	}

	items, err := c.MessagesExpanded(maxItems)
	if err != nil {
		return nil, err
	}

	res := make([]cdmcore.Message, len(items))
	for i := range items {
		err = res[i].FromStackItem(items[i])
		if err != nil {
			return nil, fmt.Errorf("decode message #%d: %w", i, err)
		}
	}

	return res, nil
}

// IterateMessages passes all messages of the log into f in submission order.
// It uses server-side iterator sessions, so the RPC server must have them
// enabled. IterateMessages stops on the first f's error and returns it.
func (c *ContractReader) IterateMessages(f func(cdmcore.Message) error) error {
	sess, iter, err := c.Messages()
	if err != nil {
		return fmt.Errorf("open messages iterator: %w", err)
	}

	defer func() { _ = c.invoker.TerminateSession(sess) }()

	var (
		m cdmcore.Message
		n int
	)

	for {
		items, err := c.invoker.TraverseIterator(sess, &iter, iteratorBatchSize)
		if err != nil {
			return fmt.Errorf("traverse messages iterator: %w", err)
		}

		if len(items) == 0 {
			return nil
		}

		for i := range items {
			err = m.FromStackItem(items[i])
			if err != nil {
				return fmt.Errorf("decode message #%d: %w", n, err)
			}

			err = f(m)
			if err != nil {
				return err
			}

			n++
		}
	}
}

// Message returns message carried by the event. It fails if any of the
// event fields overflows int32.
func (e *MessageSubmittedEvent) Message() (cdmcore.Message, error) {
	var (
		res    cdmcore.Message
		fields = []struct {
			name string
			v    *big.Int
			dst  *int32
		}{
			{"Object1ID", e.Object1ID, &res.Object1ID},
			{"Object2ID", e.Object2ID, &res.Object2ID},
			{"CollisionProbability", e.CollisionProbability, &res.CollisionProbability},
			{"TimeOfClosestPass", e.TimeOfClosestPass, &res.TimeOfClosestPass},
		}
	)

	for _, f := range fields {
		if f.v == nil || !f.v.IsInt64() || int64(int32(f.v.Int64())) != f.v.Int64() {
			return res, fmt.Errorf("field %s: value %v overflows int32", f.name, f.v)
		}
		*f.dst = int32(f.v.Int64())
	}

	return res, nil
}
