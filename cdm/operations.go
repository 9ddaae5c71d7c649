package cdm

import "errors"

// ErrUnauthorized is returned when the caller is not allowed to perform the
// operation.
var ErrUnauthorized = errors.New("unauthorized")

// Initialize creates a new State owned by caller with no providers and an
// empty log. Initialize does not check whether a State already exists; that
// is up to the environment hosting the State.
func Initialize(caller Identity) *State {
	return &State{
		owner:     caller,
		providers: []Identity{},
		log:       []Message{},
	}
}

// AddProvider appends provider to the whitelist of s. Only the owner may call
// it, other callers get ErrUnauthorized and s is left untouched. Adding an
// already whitelisted identity or the owner itself is allowed.
func AddProvider(s *State, caller, provider Identity) error {
	if !IsOwner(s, caller) {
		return ErrUnauthorized
	}

	s.providers = append(s.providers, provider)
	return nil
}

// SubmitMessage appends m to the log of s if caller is a provider and returns
// true. Submissions of other callers are dropped: SubmitMessage returns false
// and s is left untouched. A dropped submission is not an error.
func SubmitMessage(s *State, caller Identity, m Message) bool {
	if !IsProvider(s, caller) {
		return false
	}

	s.log = append(s.log, m)
	return true
}
