package cdm

// IsOwner checks whether id is the owner of s.
func IsOwner(s *State, id Identity) bool {
	return id.Equals(s.owner)
}

// IsProvider checks whether id occurs anywhere in the whitelist of s.
func IsProvider(s *State, id Identity) bool {
	for i := range s.providers {
		if id.Equals(s.providers[i]) {
			return true
		}
	}
	return false
}
