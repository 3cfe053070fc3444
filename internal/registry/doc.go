// Package registry bridges application-level names to the dense integer
// indices the graph core consumes. It is an arena with stable handles: names
// map one-to-one and order-preserving onto indices, re-registering a name
// returns its existing index, and retiring a name leaves a tombstone so that
// "expired" and "not found" stay distinguishable at lookup time.
//
// The registry is the only component in the shipped binary that calls the
// core's mutation API; the core itself never sees a name.
package registry
