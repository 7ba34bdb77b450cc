package ttc

// Solve runs Gale's top-trading-cycles algorithm to completion and
// returns the resulting allocation as a disjoint union of cycles.
//
// The graph is represented with dense integer vertex indices rather than
// language-level cyclic references: each surviving vertex has exactly one
// outgoing edge (its current top choice), stored as succ[i], plus a
// reverse-adjacency list preds[i] rebuilt incrementally as cycles are
// removed. Because out-degree is always exactly 1, finding a cycle is a
// matter of following successor pointers from any surviving vertex until
// a vertex repeats — no general graph search is needed.
func Solve[V comparable](p *Preferences[V]) (*Allocation[V], error) {
	n := len(p.order)
	indexOf := make(map[V]int, n)
	for i, v := range p.order {
		indexOf[v] = i
	}

	remaining := make([][]int, n)
	for i, v := range p.order {
		list := p.prefs[v]
		idxs := make([]int, len(list))
		for j, pv := range list {
			idxs[j] = indexOf[pv]
		}
		remaining[i] = idxs
	}

	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}

	succ := make([]int, n)
	preds := make([][]int, n)
	for i := range succ {
		succ[i] = -1
	}

	topChoice := func(i int) int {
		for _, j := range remaining[i] {
			if alive[j] {
				return j
			}
		}
		return i
	}

	removePred := func(target, source int) {
		list := preds[target]
		for k, v := range list {
			if v == source {
				preds[target] = append(list[:k], list[k+1:]...)
				return
			}
		}
	}

	rebuildEdge := func(i int) {
		if succ[i] != -1 {
			removePred(succ[i], i)
		}
		t := topChoice(i)
		succ[i] = t
		preds[t] = append(preds[t], i)
	}

	for i := 0; i < n; i++ {
		rebuildEdge(i)
	}

	var cycles []Cycle[V]
	aliveCount := n

	for aliveCount > 0 {
		start := -1
		for i := 0; i < n; i++ {
			if alive[i] {
				start = i
				break
			}
		}

		path := []int{start}
		pos := map[int]int{start: 0}
		cur := succ[start]
		var cycleIdxs []int
		for {
			if at, seen := pos[cur]; seen {
				cycleIdxs = path[at:]
				break
			}
			path = append(path, cur)
			pos[cur] = len(path) - 1
			cur = succ[cur]
		}

		vertices := make([]V, len(cycleIdxs))
		for k, idx := range cycleIdxs {
			vertices[k] = p.order[idx]
		}
		cycles = append(cycles, Cycle[V]{Vertices: vertices})

		toRecompute := map[int]bool{}
		for _, idx := range cycleIdxs {
			for _, pr := range preds[idx] {
				if alive[pr] {
					toRecompute[pr] = true
				}
			}
		}
		for _, idx := range cycleIdxs {
			alive[idx] = false
			aliveCount--
		}
		for idx := range toRecompute {
			if alive[idx] {
				rebuildEdge(idx)
			}
		}
	}

	return newAllocation(cycles), nil
}
