package graph

// Classes returns the field equivalence classes in first-seen order: class
// order follows the lowest field index in each class, and fields within a
// class are in ascending index order. Find-side path compression may run,
// but observable membership never changes.
func (g *Graph) Classes() [][]Index {
	slot := make(map[int32]int)
	var classes [][]Index
	for f := range g.fieldOwner {
		root, err := g.classes.Find(int32(f))
		if err != nil {
			panic("graph: field table out of sync with class registry: " + err.Error())
		}
		i, ok := slot[root]
		if !ok {
			i = len(classes)
			slot[root] = i
			classes = append(classes, nil)
		}
		classes[i] = append(classes[i], Index(f))
	}
	return classes
}

// ImplicitLinks derives, from scratch, every step edge implied by usage
// order across all equivalence classes. The result is deduplicated and
// deterministic: classes in first-seen order, pairs in ascending field
// order. This is the single derivation used by both batch diagnostics and
// export, so the two can never disagree.
func (g *Graph) ImplicitLinks() []Edge {
	var links []Edge
	seen := make(map[Edge]bool)
	for _, class := range g.Classes() {
		for i, a := range class {
			for _, b := range class[i+1:] {
				e, ok := impliedEdge(g.fieldOwner[a], g.fieldUsage[a], g.fieldOwner[b], g.fieldUsage[b])
				if ok && !seen[e] {
					seen[e] = true
					links = append(links, e)
				}
			}
		}
	}
	return links
}
