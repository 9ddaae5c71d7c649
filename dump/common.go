package dump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. testnet, mainnet).
	Label string
	// Blockchain height at which the state was pulled.
	Block uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Block), 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseUint(ss[1], 10, 32)
	if err != nil {
		return fmt.Errorf("decode block number from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Block = uint32(n)

	return nil
}

// State is a JSON-encoded state of the dumped contract.
type State struct {
	Contract  util.Uint160   `json:"contract"`
	Owner     util.Uint160   `json:"owner"`
	Providers []util.Uint160 `json:"providers"`
}

// dumpStreams groups data streams for contract state and messages.
type dumpStreams struct {
	state, messages io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	_ = x.messages.Close()
	_ = x.state.Close()
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with contract state
	stateFileSuffix = "state.json"
	// suffix of file with messages
	messagesFileSuffix = "messages.csv"
	// number of CSV columns per message
	messageColumns = 4
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathMessages := filepath.Join(dir, strings.Join([]string{id.String(), messagesFileSuffix}, sep))
	if !read {
		if err = checkFileNotExists(pathMessages); err != nil {
			return err
		}
	}

	pathState := filepath.Join(dir, strings.Join([]string{id.String(), stateFileSuffix}, sep))
	if !read {
		if err = checkFileNotExists(pathState); err != nil {
			return err
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	d.messages, err = os.OpenFile(pathMessages, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with messages: %w", err)
	}

	d.state, err = os.OpenFile(pathState, flag, perm)
	if err != nil {
		_ = d.messages.Close()
		return fmt.Errorf("open file with contract state: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
