// Package dsu implements an iterable disjoint-set (union-find) over a dense
// int32 index space.
//
// The structure differs from a textbook union-find in one way that matters to
// the graph validator: enumerating the members of a class costs O(class size),
// not O(total elements). Every element carries a "next" pointer forming a
// circular list through its class; Unite splices the two lists at their roots
// in O(1), so the extra capability is free at merge time.
//
// Each root also tracks its class population explicitly. Rank is a tree-depth
// bound and cannot stand in for a size, so size is summed on merge and zeroed
// on the absorbed root. The invariant "sum of root sizes == total element
// count" holds after every operation.
package dsu
