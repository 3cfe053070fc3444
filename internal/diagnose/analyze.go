package diagnose

import (
	"fmt"
	"sort"

	"github.com/vk/gridplan/internal/graph"
)

// Analyze validates the session and returns a fresh report. The sealed flag
// is the caller's assertion that construction is complete; the only finding
// whose severity depends on it is MissingCreate, which is a warning while
// more links may still arrive and an error once the graph is sealed.
func Analyze(g *graph.Graph, sealed bool) *Report {
	a := &analysis{g: g, sealed: sealed}
	a.checkClasses()
	a.checkOrphans()
	a.checkCycles()
	a.blameAll()
	return &Report{Items: a.items}
}

type analysis struct {
	g      *graph.Graph
	sealed bool
	items  []Item
}

func (a *analysis) add(sev Severity, cat Category, msg string, steps, fields []graph.Index) {
	a.items = append(a.items, Item{
		Severity: sev,
		Category: cat,
		Message:  msg,
		Steps:    steps,
		Fields:   fields,
	})
}

// checkClasses walks each datum's equivalence class once, applying the
// usage-count rules, the self-aliasing rule, the type-uniformity invariant
// and the unused-data heuristic.
func (a *analysis) checkClasses() {
	for _, class := range a.g.Classes() {
		var creates, reads, destroys []graph.Index
		types := make(map[graph.TypeTag]bool)
		byStep := make(map[graph.Index][]graph.Index)
		var stepsInOrder []graph.Index

		for _, f := range class {
			usage := mustUsage(a.g, f)
			switch usage {
			case graph.UsageCreate:
				creates = append(creates, f)
			case graph.UsageRead:
				reads = append(reads, f)
			case graph.UsageDestroy:
				destroys = append(destroys, f)
			}
			tag := mustType(a.g, f)
			types[tag] = true
			owner := mustOwner(a.g, f)
			if _, seen := byStep[owner]; !seen {
				stepsInOrder = append(stepsInOrder, owner)
			}
			byStep[owner] = append(byStep[owner], f)
		}

		if len(creates) > 1 {
			a.add(SeverityError, CategoryMultipleCreate,
				fmt.Sprintf("datum has %d create fields; exactly one is allowed", len(creates)),
				owners(a.g, creates), creates)
		}
		if len(destroys) > 1 {
			a.add(SeverityError, CategoryMultipleDestroy,
				fmt.Sprintf("datum has %d destroy fields; at most one is allowed", len(destroys)),
				owners(a.g, destroys), destroys)
		}
		if len(creates) == 0 && (len(reads) > 0 || len(destroys) > 0) {
			// Any class with consumers but no producer qualifies, whatever
			// its size. Severity escalates once the caller seals the graph.
			sev := SeverityWarning
			if a.sealed {
				sev = SeverityError
			}
			consumers := append(append([]graph.Index{}, reads...), destroys...)
			a.add(sev, CategoryMissingCreate,
				"datum is read or destroyed but never created",
				owners(a.g, consumers), consumers)
		}
		if len(types) > 1 {
			// LinkFields rejects mismatched tags, so a mixed class means the
			// session invariant itself is broken. Still reported, not assumed.
			a.add(SeverityError, CategoryTypeMismatch,
				fmt.Sprintf("datum carries %d distinct type tags", len(types)),
				owners(a.g, class), class)
		}

		for _, step := range stepsInOrder {
			fields := byStep[step]
			if len(fields) < 2 {
				continue
			}
			uniform := true
			first := mustUsage(a.g, fields[0])
			for _, f := range fields[1:] {
				if mustUsage(a.g, f) != first {
					uniform = false
					break
				}
			}
			if !uniform {
				a.add(SeverityError, CategoryUnsafeSelfAliasing,
					fmt.Sprintf("step %d accesses the same datum through fields with differing usages", step),
					[]graph.Index{step}, fields)
			}
		}

		if len(class) == 1 && len(creates) == 1 {
			a.add(SeverityWarning, CategoryUnusedData,
				"datum is created but never read or destroyed",
				owners(a.g, class), class)
		}
	}
}

// checkOrphans flags steps with no fields and no incident explicit links;
// they exist but nothing constrains or uses them.
func (a *analysis) checkOrphans() {
	linked := make(map[graph.Index]bool)
	for _, l := range a.g.StepLinks() {
		linked[l.Before] = true
		linked[l.After] = true
	}
	for s := graph.Index(0); int(s) < a.g.StepCount(); s++ {
		fields, err := a.g.FieldsOf(s)
		if err != nil {
			continue
		}
		if len(fields) == 0 && !linked[s] {
			a.add(SeverityWarning, CategoryOrphanStep,
				fmt.Sprintf("step %d has no fields and no explicit links", s),
				[]graph.Index{s}, nil)
		}
	}
}

// checkCycles runs Kahn's algorithm over the combined graph of explicit and
// implicit links. If any nodes survive with a positive in-degree, the
// finding names every one of them.
func (a *analysis) checkCycles() {
	n := a.g.StepCount()
	if n == 0 {
		return
	}

	adj := make([][]graph.Index, n)
	indeg := make([]int, n)
	addEdge := func(e graph.Edge) {
		adj[e.Before] = append(adj[e.Before], e.After)
		indeg[e.After]++
	}
	seen := make(map[graph.Edge]bool)
	for _, l := range a.g.StepLinks() {
		if !seen[l.Edge] {
			seen[l.Edge] = true
			addEdge(l.Edge)
		}
	}
	for _, e := range a.g.ImplicitLinks() {
		if !seen[e] {
			seen[e] = true
			addEdge(e)
		}
	}

	queue := make([]graph.Index, 0, n)
	for s := 0; s < n; s++ {
		if indeg[s] == 0 {
			queue = append(queue, graph.Index(s))
		}
	}
	processed := 0
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range adj[s] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if processed == n {
		return
	}

	var stuck []graph.Index
	for s := 0; s < n; s++ {
		if indeg[s] > 0 {
			stuck = append(stuck, graph.Index(s))
		}
	}
	a.add(SeverityError, CategoryCycle,
		fmt.Sprintf("dependency cycle involves %d steps", len(stuck)),
		stuck, nil)
}

// blameAll attaches ranked blame lists to every finding. A ledger link is
// a suspect when one of its endpoints touches the finding: step links by
// step, field links by field or by the owning step of either field. The
// list is sorted ascending by trust (stable), so the least-trusted links
// lead; ties keep ledger scan order, step links before field links.
func (a *analysis) blameAll() {
	for i := range a.items {
		it := &a.items[i]
		steps := indexSet(it.Steps)
		fields := indexSet(it.Fields)

		var blamed []BlamedLink
		for li, l := range a.g.StepLinks() {
			if steps[l.Before] || steps[l.After] {
				blamed = append(blamed, BlamedLink{Kind: LinkStep, Ledger: li, Trust: l.Trust})
			}
		}
		for li, l := range a.g.FieldLinks() {
			if fields[l.A] || fields[l.B] ||
				steps[mustOwner(a.g, l.A)] || steps[mustOwner(a.g, l.B)] {
				blamed = append(blamed, BlamedLink{Kind: LinkField, Ledger: li, Trust: l.Trust})
			}
		}
		sort.SliceStable(blamed, func(x, y int) bool {
			return blamed[x].Trust < blamed[y].Trust
		})
		it.Blamed = blamed
	}
}

func indexSet(idxs []graph.Index) map[graph.Index]bool {
	set := make(map[graph.Index]bool, len(idxs))
	for _, i := range idxs {
		set[i] = true
	}
	return set
}

func owners(g *graph.Graph, fields []graph.Index) []graph.Index {
	var out []graph.Index
	seen := make(map[graph.Index]bool)
	for _, f := range fields {
		o := mustOwner(g, f)
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

// The must* helpers read field attributes that analysis obtained from the
// session's own tables; a range failure here is a bug, not caller input.

func mustOwner(g *graph.Graph, f graph.Index) graph.Index {
	o, err := g.Owner(f)
	if err != nil {
		panic(err)
	}
	return o
}

func mustUsage(g *graph.Graph, f graph.Index) graph.Usage {
	u, err := g.UsageOf(f)
	if err != nil {
		panic(err)
	}
	return u
}

func mustType(g *graph.Graph, f graph.Index) graph.TypeTag {
	tt, err := g.TypeOf(f)
	if err != nil {
		panic(err)
	}
	return tt
}
