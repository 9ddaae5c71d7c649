package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nspcc-dev/cdm-contract/cdm"
)

// IterateDumps iterates over all dumps collected by the Creator model in the
// specified directory, and passes ID and Reader of each dump into f. Reader
// must not be used after f returns.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, stateFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		err = initDumpStreams(&streams, dir, id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.state, streams.messages)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

// Reader reads contract state and messages collected in the superior dump.
type Reader struct {
	state    State
	messages []cdm.Message
}

func (x *Reader) fromDumpStreams(rState, rMessages io.Reader) error {
	x.state = State{}
	x.messages = x.messages[:0]

	err := json.NewDecoder(rState).Decode(&x.state)
	if err != nil {
		return fmt.Errorf("decode contract state from JSON: %w", err)
	}

	_csv := csv.NewReader(rMessages)
	_csv.FieldsPerRecord = messageColumns
	_csv.ReuseRecord = true

	var fields [messageColumns]int32

	for {
		rec, err := _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		for i := range fields {
			n, err := strconv.ParseInt(rec[i], 10, 32)
			if err != nil {
				return fmt.Errorf("decode message field #%d: %w", i, err)
			}
			fields[i] = int32(n)
		}

		x.messages = append(x.messages, cdm.Message{
			Object1ID:            fields[0],
			Object2ID:            fields[1],
			CollisionProbability: fields[2],
			TimeOfClosestPass:    fields[3],
		})
	}
}

// State returns dumped contract state.
func (x *Reader) State() State {
	return x.state
}

// MessageCount returns number of dumped messages.
func (x *Reader) MessageCount() int {
	return len(x.messages)
}

// IterateMessages passes dumped messages into f in log order.
func (x *Reader) IterateMessages(f func(index int, m cdm.Message)) {
	for i := range x.messages {
		f(i, x.messages[i])
	}
}
