package dsu

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeN(t *testing.T, s *Set, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		idx, err := s.MakeSet()
		require.NoError(t, err)
		require.Equal(t, int32(i), idx)
	}
}

// sumRootSizes adds up the size counters of every distinct root.
func sumRootSizes(t *testing.T, s *Set) int {
	t.Helper()
	total := 0
	seen := make(map[int32]bool)
	for i := int32(0); int(i) < s.Len(); i++ {
		root, err := s.Find(i)
		require.NoError(t, err)
		if !seen[root] {
			seen[root] = true
			sz, err := s.ClassSize(root)
			require.NoError(t, err)
			total += int(sz)
		}
	}
	return total
}

func TestMakeSet(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Count())

	makeN(t, s, 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Count())

	for i := int32(0); i < 3; i++ {
		root, err := s.Find(i)
		require.NoError(t, err)
		assert.Equal(t, i, root)
		sz, err := s.ClassSize(i)
		require.NoError(t, err)
		assert.Equal(t, int32(1), sz)
	}
}

func TestFindRejectsOutOfRange(t *testing.T) {
	s := New()
	makeN(t, s, 2)

	_, err := s.Find(-1)
	assert.ErrorContains(t, err, "out of range")
	_, err = s.Find(2)
	assert.ErrorContains(t, err, "out of range")
	_, err = s.Unite(0, 5)
	assert.ErrorContains(t, err, "out of range")
	_, err = s.Members(9, nil)
	assert.ErrorContains(t, err, "out of range")
}

func TestUnite(t *testing.T) {
	t.Run("merges two singletons", func(t *testing.T) {
		s := New()
		makeN(t, s, 2)

		merged, err := s.Unite(0, 1)
		require.NoError(t, err)
		assert.True(t, merged)
		assert.Equal(t, 1, s.Count())

		same, err := s.SameClass(0, 1)
		require.NoError(t, err)
		assert.True(t, same)

		sz, err := s.ClassSize(0)
		require.NoError(t, err)
		assert.Equal(t, int32(2), sz)
	})

	t.Run("already united is a no-op", func(t *testing.T) {
		s := New()
		makeN(t, s, 3)
		_, err := s.Unite(0, 1)
		require.NoError(t, err)

		merged, err := s.Unite(1, 0)
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, 2, s.Count())
	})

	t.Run("size invariant holds across merges", func(t *testing.T) {
		s := New()
		makeN(t, s, 8)
		pairs := [][2]int32{{0, 1}, {2, 3}, {1, 3}, {4, 5}, {6, 7}, {5, 6}, {0, 7}}
		for _, p := range pairs {
			_, err := s.Unite(p[0], p[1])
			require.NoError(t, err)
			assert.Equal(t, s.Len(), sumRootSizes(t, s))
		}
		assert.Equal(t, 1, s.Count())
		sz, err := s.ClassSize(3)
		require.NoError(t, err)
		assert.Equal(t, int32(8), sz)
	})
}

func TestSameClassIsEquivalenceRelation(t *testing.T) {
	s := New()
	makeN(t, s, 6)
	for _, p := range [][2]int32{{0, 1}, {1, 2}, {4, 5}} {
		_, err := s.Unite(p[0], p[1])
		require.NoError(t, err)
	}

	for a := int32(0); a < 6; a++ {
		// Reflexive.
		same, err := s.SameClass(a, a)
		require.NoError(t, err)
		assert.True(t, same)

		for b := int32(0); b < 6; b++ {
			ab, err := s.SameClass(a, b)
			require.NoError(t, err)
			ba, err := s.SameClass(b, a)
			require.NoError(t, err)
			// Symmetric.
			assert.Equal(t, ab, ba)

			for c := int32(0); c < 6; c++ {
				bc, err := s.SameClass(b, c)
				require.NoError(t, err)
				ac, err := s.SameClass(a, c)
				require.NoError(t, err)
				// Transitive.
				if ab && bc {
					assert.True(t, ac)
				}
			}
		}
	}
}

func TestMembers(t *testing.T) {
	s := New()
	makeN(t, s, 7)
	for _, p := range [][2]int32{{0, 2}, {2, 4}, {1, 5}} {
		_, err := s.Unite(p[0], p[1])
		require.NoError(t, err)
	}

	// Every element's enumeration must match the set of elements sharing its
	// root, without duplicates, regardless of which member we start from.
	for x := int32(0); x < 7; x++ {
		rootX, err := s.Find(x)
		require.NoError(t, err)

		var want []int32
		for e := int32(0); e < 7; e++ {
			root, err := s.Find(e)
			require.NoError(t, err)
			if root == rootX {
				want = append(want, e)
			}
		}

		got, err := s.Members(x, nil)
		require.NoError(t, err)
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		assert.Equal(t, want, got, "members of %d", x)
	}
}

func TestMembersReusesBuffer(t *testing.T) {
	s := New()
	makeN(t, s, 3)
	_, err := s.Unite(0, 1)
	require.NoError(t, err)

	buf := make([]int32, 0, 4)
	got, err := s.Members(0, buf)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
