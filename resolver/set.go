package resolver

// Set is a set of host indexes, used to track the hosts which have already failed during a single logical request.
type Set map[int]struct{}

// NewSet returns a set containing the given host indexes.
func NewSet(indexes ...int) Set {
	set := make(Set, len(indexes))

	for _, index := range indexes {
		set.Add(index)
	}

	return set
}

// Add the given host index to the set.
func (s Set) Add(index int) {
	s[index] = struct{}{}
}

// Contains returns a boolean indicating whether the given host index is in the set.
//
// NOTE: Safe to call on a <nil> set.
func (s Set) Contains(index int) bool {
	_, ok := s[index]
	return ok
}

// Len returns the number of host indexes in the set.
func (s Set) Len() int {
	return len(s)
}

// Clear removes every host index from the set.
func (s Set) Clear() {
	clear(s)
}

// covers returns a boolean indicating whether every host index in [0, hostCount) is in the set.
func (s Set) covers(hostCount int) bool {
	for i := 0; i < hostCount; i++ {
		if !s.Contains(i) {
			return false
		}
	}

	return true
}
