package dsu

import "fmt"

// MaxElements is the largest number of elements a Set can hold, bounded by
// the int32 index space.
const MaxElements = 1<<31 - 1

// Set is an iterable union-find over dense, sequentially assigned int32
// indices. The zero value is not usable; call New.
type Set struct {
	// parent and rank are the usual union-by-rank forest.
	parent []int32
	rank   []uint8
	// next forms a circular list through each class, enabling O(class size)
	// member enumeration.
	next []int32
	// size holds the class population at roots and zero elsewhere.
	size []int32
	// count is the number of distinct classes.
	count int
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Len returns the total number of elements across all classes.
func (s *Set) Len() int {
	return len(s.parent)
}

// Count returns the number of distinct classes.
func (s *Set) Count() int {
	return s.count
}

// MakeSet allocates a new singleton class and returns its element index.
// Indices are assigned sequentially starting at zero.
func (s *Set) MakeSet() (int32, error) {
	if len(s.parent) >= MaxElements {
		return 0, fmt.Errorf("dsu: element capacity exhausted (%d)", MaxElements)
	}
	idx := int32(len(s.parent))
	s.parent = append(s.parent, idx)
	s.rank = append(s.rank, 0)
	s.next = append(s.next, idx)
	s.size = append(s.size, 1)
	s.count++
	return idx, nil
}

func (s *Set) check(x int32) error {
	if x < 0 || int(x) >= len(s.parent) {
		return fmt.Errorf("dsu: index %d out of range [0, %d)", x, len(s.parent))
	}
	return nil
}

// Find returns the root of x's class. It compresses the path it walks;
// compression changes internal pointers only, never observable membership.
func (s *Set) Find(x int32) (int32, error) {
	if err := s.check(x); err != nil {
		return 0, err
	}
	root := x
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[x] != root {
		x, s.parent[x] = s.parent[x], root
	}
	return root, nil
}

// SameClass reports whether a and b currently belong to the same class.
func (s *Set) SameClass(a, b int32) (bool, error) {
	ra, err := s.Find(a)
	if err != nil {
		return false, err
	}
	rb, err := s.Find(b)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}

// ClassRoot returns the canonical representative element of x's class.
func (s *Set) ClassRoot(x int32) (int32, error) {
	return s.Find(x)
}

// ClassSize returns the number of elements in x's class.
func (s *Set) ClassSize(x int32) (int32, error) {
	root, err := s.Find(x)
	if err != nil {
		return 0, err
	}
	return s.size[root], nil
}

// Unite merges the classes of a and b and reports whether a merge happened;
// false means the two were already in the same class.
func (s *Set) Unite(a, b int32) (bool, error) {
	ra, err := s.Find(a)
	if err != nil {
		return false, err
	}
	rb, err := s.Find(b)
	if err != nil {
		return false, err
	}
	if ra == rb {
		return false, nil
	}
	if s.rank[ra] < s.rank[rb] {
		ra, rb = rb, ra
	}
	if s.rank[ra] == s.rank[rb] {
		s.rank[ra]++
	}
	s.parent[rb] = ra

	// Splice the two circular member lists by swapping the successors of the
	// old roots. Neither list is walked.
	s.next[ra], s.next[rb] = s.next[rb], s.next[ra]

	s.size[ra] += s.size[rb]
	s.size[rb] = 0
	s.count--
	return true, nil
}

// Members appends every element of x's class to out and returns the result.
// Cost is proportional to the class size. The order starts at x and follows
// the internal circular list; callers needing a canonical order must sort.
func (s *Set) Members(x int32, out []int32) ([]int32, error) {
	if err := s.check(x); err != nil {
		return nil, err
	}
	out = append(out, x)
	for e := s.next[x]; e != x; e = s.next[e] {
		out = append(out, e)
	}
	return out, nil
}
