package cfg

// findBackEdges identifies, via DFS from the entry, every edge whose
// target is on the current DFS stack.
func findBackEdges(c *CFG) {
	c.BackEdges = map[Edge]bool{}
	onStack := map[BlockID]bool{}
	visited := map[BlockID]bool{}

	var visit func(id BlockID)
	visit = func(id BlockID) {
		visited[id] = true
		onStack[id] = true
		for _, e := range c.Edges[id] {
			if onStack[e.To] {
				c.BackEdges[e] = true
				continue
			}
			if !visited[e.To] {
				visit(e.To)
			}
		}
		onStack[id] = false
	}
	visit(c.Entry)
	// Blocks unreachable from entry (dead code after an unconditional
	// terminator) still need a DFS pass so later stages see consistent
	// reachability, but they can never head a cycle reachable from entry.
	for _, id := range c.AllBlockIDs() {
		if !visited[id] {
			visit(id)
		}
	}
}

// computeDominators implements the standard iterative dataflow fixed
// point: dom(n) = {n} ∪ ⋂_{p ∈ preds(n)} dom(p),
// dom(entry) = {entry}, all others initialized to the full node set.
// Post-dominators are computed analogously over the reversed graph from
// the exit set.
func computeDominators(c *CFG) {
	ids := c.AllBlockIDs()
	all := map[BlockID]bool{}
	for _, id := range ids {
		all[id] = true
	}

	c.Dom = iterateDominators(ids, all, c.Entry, func(id BlockID) []BlockID { return c.Preds(id) })

	if len(c.Exits) == 0 {
		c.PostDom = map[BlockID]map[BlockID]bool{}
		return
	}
	// Multiple exits: treat them as jointly dominating a virtual exit node
	// by seeding every exit's post-dominator set to itself and running the
	// same fixed point from each, unioning is not sound here, so instead
	// run the dataflow with all exits pre-seeded as their own base case.
	c.PostDom = iterateMultiDominators(ids, all, c.Exits, func(id BlockID) []BlockID { return c.Succs(id) })
}

func iterateDominators(ids []BlockID, all map[BlockID]bool, entry BlockID, preds func(BlockID) []BlockID) map[BlockID]map[BlockID]bool {
	dom := map[BlockID]map[BlockID]bool{}
	for _, id := range ids {
		if id == entry {
			dom[id] = map[BlockID]bool{entry: true}
		} else {
			dom[id] = cloneSet(all)
		}
	}
	changed := true
	for changed {
		changed = false
		for _, id := range ids {
			if id == entry {
				continue
			}
			ps := preds(id)
			var next map[BlockID]bool
			for i, p := range ps {
				if i == 0 {
					next = cloneSet(dom[p])
					continue
				}
				next = intersectSet(next, dom[p])
			}
			if next == nil {
				next = map[BlockID]bool{}
			}
			next[id] = true
			if !equalSet(next, dom[id]) {
				dom[id] = next
				changed = true
			}
		}
	}
	return dom
}

func iterateMultiDominators(ids []BlockID, all map[BlockID]bool, roots []BlockID, succs func(BlockID) []BlockID) map[BlockID]map[BlockID]bool {
	isRoot := map[BlockID]bool{}
	for _, r := range roots {
		isRoot[r] = true
	}
	dom := map[BlockID]map[BlockID]bool{}
	for _, id := range ids {
		if isRoot[id] {
			dom[id] = map[BlockID]bool{id: true}
		} else {
			dom[id] = cloneSet(all)
		}
	}
	changed := true
	for changed {
		changed = false
		for _, id := range ids {
			if isRoot[id] {
				continue
			}
			ss := succs(id)
			var next map[BlockID]bool
			first := true
			for _, s := range ss {
				if first {
					next = cloneSet(dom[s])
					first = false
					continue
				}
				next = intersectSet(next, dom[s])
			}
			if next == nil {
				next = map[BlockID]bool{}
			}
			next[id] = true
			if !equalSet(next, dom[id]) {
				dom[id] = next
				changed = true
			}
		}
	}
	return dom
}

func cloneSet(s map[BlockID]bool) map[BlockID]bool {
	out := make(map[BlockID]bool, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

func intersectSet(a, b map[BlockID]bool) map[BlockID]bool {
	out := map[BlockID]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func equalSet(a, b map[BlockID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Dominates reports whether d dominates n (d ∈ dom(n)).
func (c *CFG) Dominates(d, n BlockID) bool {
	s, ok := c.Dom[n]
	return ok && s[d]
}
