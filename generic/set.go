package generic

// Set[T] is an unordered collection of unique items.
type Set[T comparable] map[T]Void

func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item, returning false if it was already present.
func (s Set[T]) Add(item T) bool {
	if _, found := s[item]; found {
		return false
	}
	s[item] = NewVoid()
	return true
}

// Contains returns true only if every item is present.
func (s Set[T]) Contains(items ...T) bool {
	for _, item := range items {
		if _, found := s[item]; !found {
			return false
		}
	}
	return true
}

// Count returns the number of items in the set.
func (s Set[T]) Count() int {
	return len(s)
}

// Remove deletes item, returning false if it was not present.
func (s Set[T]) Remove(item T) bool {
	if _, found := s[item]; !found {
		return false
	}
	delete(s, item)
	return true
}

// ToSlice returns the items in unspecified order.
func (s Set[T]) ToSlice() []T {
	slice := make([]T, 0, len(s))
	for item := range s {
		slice = append(slice, item)
	}
	return slice
}
