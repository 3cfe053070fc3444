package graph

// LinkSteps records an explicit precedence constraint: before must execute
// ahead of after. Self-loops are rejected unconditionally. In eager mode the
// call is also rejected, without mutating anything, if the edge would close
// a cycle through the already-committed adjacency.
func (g *Graph) LinkSteps(before, after Index, trust Trust) error {
	if err := g.checkStep(before); err != nil {
		return err
	}
	if err := g.checkStep(after); err != nil {
		return err
	}
	if before == after {
		return structErr(KindCycle, "step %d cannot precede itself", before)
	}
	if g.mode == ModeEager && g.reachable(after, before, nil) {
		return structErr(KindCycle, "linking step %d before %d would close a cycle", before, after)
	}

	g.stepLinks = append(g.stepLinks, StepLink{Edge: Edge{Before: before, After: after}, Trust: trust})
	g.adj[before] = append(g.adj[before], after)
	return nil
}

// LinkFields declares that two fields reference the same datum and merges
// their equivalence classes. Linking a field to itself is a no-op. Mismatched
// type tags are rejected in either mode. A link whose endpoints already share
// a class is recorded in the ledger for blame purposes but performs no
// structural work and re-runs no usage checks.
//
// In eager mode the merge is vetted first: the union may hold at most one
// Create and one Destroy, no step may end up owning same-datum fields of
// differing usage, and none of the step edges implied by cross-class usage
// order may close a cycle. All checks pass or nothing commits.
func (g *Graph) LinkFields(f1, f2 Index, trust Trust) error {
	if err := g.checkField(f1); err != nil {
		return err
	}
	if err := g.checkField(f2); err != nil {
		return err
	}
	if f1 == f2 {
		return nil
	}
	if g.fieldType[f1] != g.fieldType[f2] {
		return structErr(KindTypeMismatch, "field %d has type %q but field %d has type %q",
			f1, g.fieldType[f1], f2, g.fieldType[f2])
	}

	same, err := g.SameDatum(f1, f2)
	if err != nil {
		return err
	}
	if same {
		g.fieldLinks = append(g.fieldLinks, FieldLink{A: f1, B: f2, Trust: trust, Redundant: true})
		return nil
	}

	var implied []Edge
	if g.mode == ModeEager {
		implied, err = g.vetMerge(f1, f2)
		if err != nil {
			return err
		}
	}

	// Point of no return: every check has passed.
	for _, e := range implied {
		g.adj[e.Before] = append(g.adj[e.Before], e.After)
	}
	g.fieldLinks = append(g.fieldLinks, FieldLink{A: f1, B: f2, Trust: trust})
	if _, err := g.classes.Unite(int32(f1), int32(f2)); err != nil {
		panic("graph: unite failed after vetting: " + err.Error())
	}
	return nil
}

// vetMerge runs the eager-mode checks for merging the classes of f1 and f2.
// On success it returns the new implied step edges to commit; on failure it
// returns the rejection and the session is untouched.
func (g *Graph) vetMerge(f1, f2 Index) ([]Edge, error) {
	classA, err := g.ClassMembers(f1, nil)
	if err != nil {
		return nil, err
	}
	classB, err := g.ClassMembers(f2, nil)
	if err != nil {
		return nil, err
	}

	// Usage counts across the union.
	creates, destroys := 0, 0
	stepUsages := make(map[Index]Usage)
	for _, members := range [][]Index{classA, classB} {
		for _, f := range members {
			switch g.fieldUsage[f] {
			case UsageCreate:
				creates++
			case UsageDestroy:
				destroys++
			}
			owner := g.fieldOwner[f]
			if prev, ok := stepUsages[owner]; ok {
				if prev != g.fieldUsage[f] {
					return nil, structErr(KindUsageViolation,
						"step %d would access the merged datum as both %s and %s",
						owner, prev, g.fieldUsage[f])
				}
			} else {
				stepUsages[owner] = g.fieldUsage[f]
			}
		}
	}
	if creates > 1 {
		return nil, structErr(KindUsageViolation, "merged datum would have %d create fields", creates)
	}
	if destroys > 1 {
		return nil, structErr(KindUsageViolation, "merged datum would have %d destroy fields", destroys)
	}

	// Derive the step edges implied by cross-class usage order and verify
	// none of them closes a cycle. Each candidate is checked against the
	// committed adjacency plus the candidates accepted before it, so a cycle
	// threaded through several new edges is caught too.
	var implied []Edge
	seen := make(map[Edge]bool)
	overlay := make(map[Index][]Index)
	for _, a := range classA {
		for _, b := range classB {
			e, ok := impliedEdge(g.fieldOwner[a], g.fieldUsage[a], g.fieldOwner[b], g.fieldUsage[b])
			if !ok || seen[e] {
				continue
			}
			seen[e] = true
			if g.reachable(e.After, e.Before, overlay) {
				return nil, structErr(KindCycle,
					"merging fields %d and %d implies step %d before %d, closing a cycle",
					f1, f2, e.Before, e.After)
			}
			implied = append(implied, e)
			overlay[e.Before] = append(overlay[e.Before], e.After)
		}
	}
	return implied, nil
}

// impliedEdge derives the execution constraint between the owners of two
// same-datum fields. Equal usages and same-step pairs imply nothing; the
// same-step differing-usage case is excluded by the self-aliasing rule
// before this is consulted.
func impliedEdge(ownerA Index, usageA Usage, ownerB Index, usageB Usage) (Edge, bool) {
	if ownerA == ownerB || usageA == usageB {
		return Edge{}, false
	}
	if usageA < usageB {
		return Edge{Before: ownerA, After: ownerB}, true
	}
	return Edge{Before: ownerB, After: ownerA}, true
}
