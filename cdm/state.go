package cdm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Identity identifies a caller. It is a script hash of the calling account,
// the zero value means "unset" and never identifies the owner of a valid
// State.
type Identity = util.Uint160

// maxListLen limits the number of providers or messages accepted when
// decoding a State.
const maxListLen = io.MaxArraySize

// ErrNoOwner is returned when decoding a State without an owner.
var ErrNoOwner = errors.New("state has no owner")

// State is the persisted record of the log: the owner, the ordered provider
// whitelist and the ordered message log. State can only be changed by the
// operations of this package; providers and messages never shrink, owner
// never changes.
//
// The zero value is not a valid State, use Initialize or DecodeBinary.
type State struct {
	owner     Identity
	providers []Identity
	log       []Message
}

// Owner returns the identity fixed at initialization.
func (s *State) Owner() Identity {
	return s.owner
}

// Providers returns a copy of the provider whitelist in insertion order.
// Duplicates are kept.
func (s *State) Providers() []Identity {
	return slices.Clone(s.providers)
}

// Messages returns a copy of the log in submission order.
func (s *State) Messages() []Message {
	return slices.Clone(s.log)
}

// ProviderCount returns the number of whitelist entries.
func (s *State) ProviderCount() int {
	return len(s.providers)
}

// MessageCount returns the number of logged messages.
func (s *State) MessageCount() int {
	return len(s.log)
}

// Copy returns a deep copy of the State.
func (s *State) Copy() *State {
	return &State{
		owner:     s.owner,
		providers: slices.Clone(s.providers),
		log:       slices.Clone(s.log),
	}
}

// EncodeBinary implements io.Serializable. The layout is the owner hash, the
// var-length provider list and the var-length message list.
func (s *State) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(s.owner[:])

	w.WriteVarUint(uint64(len(s.providers)))
	for i := range s.providers {
		w.WriteBytes(s.providers[i][:])
	}

	w.WriteVarUint(uint64(len(s.log)))
	for i := range s.log {
		s.log[i].EncodeBinary(w)
	}
}

// DecodeBinary implements io.Serializable. It sets r.Err to ErrNoOwner if the
// decoded owner is zero.
func (s *State) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(s.owner[:])

	n := r.ReadVarUint()
	if n > maxListLen {
		r.Err = fmt.Errorf("too many providers: %d", n)
		return
	}
	s.providers = make([]Identity, n)
	for i := range s.providers {
		r.ReadBytes(s.providers[i][:])
	}

	n = r.ReadVarUint()
	if n > maxListLen {
		r.Err = fmt.Errorf("too many messages: %d", n)
		return
	}
	s.log = make([]Message, n)
	for i := range s.log {
		s.log[i].DecodeBinary(r)
	}

	if r.Err == nil && s.owner.Equals(util.Uint160{}) {
		r.Err = ErrNoOwner
	}
}

// Bytes returns the binary representation of the State.
func (s *State) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	s.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// StateFromBytes decodes State from its binary representation.
func StateFromBytes(b []byte) (*State, error) {
	s := new(State)
	r := io.NewBinReaderFromBuf(b)
	s.DecodeBinary(r)
	if r.Err != nil {
		return nil, fmt.Errorf("decode state: %w", r.Err)
	}
	return s, nil
}
