package catalog

import "math/bits"

// VisitedSet is a bitset over catalog indices
type VisitedSet struct {
	words []uint64
	n     int
}

// NewVisitedSet creates an empty set sized for n stars
func NewVisitedSet(n int) *VisitedSet {
	return &VisitedSet{
		words: make([]uint64, (n+63)/64),
		n:     n,
	}
}

// Len returns the number of indices the set covers
func (v *VisitedSet) Len() int {
	return v.n
}

// Has reports whether index i is marked. Out-of-range indices are unmarked.
func (v *VisitedSet) Has(i int) bool {
	if i < 0 || i >= v.n {
		return false
	}
	return v.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Mark sets index i
func (v *VisitedSet) Mark(i int) {
	if i < 0 || i >= v.n {
		return
	}
	v.words[i/64] |= 1 << (uint(i) % 64)
}

// Unmark clears index i
func (v *VisitedSet) Unmark(i int) {
	if i < 0 || i >= v.n {
		return
	}
	v.words[i/64] &^= 1 << (uint(i) % 64)
}

// Count returns the number of marked indices
func (v *VisitedSet) Count() int {
	total := 0
	for _, w := range v.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Clear unmarks every index
func (v *VisitedSet) Clear() {
	clear(v.words)
}

// Clone returns an independent copy
func (v *VisitedSet) Clone() *VisitedSet {
	words := make([]uint64, len(v.words))
	copy(words, v.words)
	return &VisitedSet{words: words, n: v.n}
}

// Equal reports whether both sets cover the same range with the same marks
func (v *VisitedSet) Equal(o *VisitedSet) bool {
	if v.n != o.n {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// grow extends the set to cover n indices, keeping existing marks
func (v *VisitedSet) grow(n int) {
	if n <= v.n {
		return
	}
	need := (n + 63) / 64
	for len(v.words) < need {
		v.words = append(v.words, 0)
	}
	v.n = n
}
