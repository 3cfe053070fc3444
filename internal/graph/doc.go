// Package graph is the construction core of gridplan. It accumulates steps,
// the fields through which steps access shared data, and the explicit and
// declared links between them, for one build session.
//
// # Model
//
// A step is a unit of work identified by a dense, sequentially assigned
// index. A field is one step's access point to one datum, carrying a type
// tag and a usage kind (Create, Read or Destroy). Fields declared to refer
// to the same datum are merged into an equivalence class via LinkFields;
// the class is the datum. Usage order (Create < Read < Destroy) implies
// execution order between the owning steps of any two same-datum fields.
//
// # Validation modes
//
// In eager mode every mutation is checked before it commits: out-of-sequence
// indices, self-loops, type-tag mismatches, usage-count violations and
// would-be cycles are all rejected synchronously, and a rejected call leaves
// the session exactly as it was. In lazy mode the per-mutation reachability
// and usage checks are skipped for throughput; the diagnose package then
// finds the same problems in one batch pass.
//
// The package holds no references to caller-owned objects. Mapping
// application handles to the integer indices used here is the registry
// package's job.
package graph
