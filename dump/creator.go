package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Creator dumps the CDM log. Output file format:
//
//	'<label>-<block>-state.json': JSON object with contract state
//	'<label>-<block>-messages.csv': CSV of the messages in log order
//
// Messages CSV are 'object1ID,object2ID,collisionProbability,timeOfClosestPass'
// decimal integers.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	state State

	messagesCSV *csv.Writer
}

// NewCreator returns Creator which dumps the log into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.messagesCSV = csv.NewWriter(res.dumpStreams.messages)

	return &res, nil
}

// SetState sets contract state written to the dump on Flush.
func (x *Creator) SetState(st State) {
	x.state = st
}

// WriteMessage appends m to the dumped log.
func (x *Creator) WriteMessage(m cdm.Message) error {
	err := x.messagesCSV.Write([]string{
		strconv.FormatInt(int64(m.Object1ID), 10),
		strconv.FormatInt(int64(m.Object2ID), 10),
		strconv.FormatInt(int64(m.CollisionProbability), 10),
		strconv.FormatInt(int64(m.TimeOfClosestPass), 10),
	})
	if err != nil {
		return fmt.Errorf("write message as CSV data: %w", err)
	}

	return nil
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	if x.state.Providers == nil {
		x.state.Providers = []util.Uint160{}
	}

	jEnc := json.NewEncoder(x.dumpStreams.state)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.state)
	if err != nil {
		return fmt.Errorf("encode contract state to JSON: %w", err)
	}

	x.messagesCSV.Flush()

	err = x.messagesCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}
