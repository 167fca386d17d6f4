package geometry

import "slices"

// countCrossings counts pairwise segment crossings in a bipartite bundle.
// Each edge is a (source slot, sink slot) pair under the given side orders;
// srcPos and sinkPos map slot index to position. Two edges cross iff their
// source positions and sink positions compare in opposite directions.
//
// Counting sorts the edges by source position and counts inversions of the
// sink positions with a Fenwick tree, O(E log V) instead of the naive E².
func countCrossings(edges [][2]int, srcPos, sinkPos []int) int {
	if len(edges) < 2 {
		return 0
	}

	type pe struct{ s, t int }
	ps := make([]pe, len(edges))
	maxT := 0
	for i, e := range edges {
		ps[i] = pe{srcPos[e[0]], sinkPos[e[1]]}
		if ps[i].t > maxT {
			maxT = ps[i].t
		}
	}
	slices.SortFunc(ps, func(a, b pe) int {
		if a.s != b.s {
			return a.s - b.s
		}
		return a.t - b.t
	})

	fenwick := make([]int, maxT+2)
	crossings, total := 0, 0
	for _, e := range ps {
		lessOrEqual := 0
		for q := e.t + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for q := e.t + 1; q < len(fenwick); q += q & (-q) {
			fenwick[q]++
		}
	}
	return crossings
}

// reduceCrossings runs the greedy descent over one edge bundle: starting
// from declaration order on both sides, it sweeps each side up to passes
// times, swapping adjacent entries only when the swap strictly lowers the
// crossing count. Ties never swap, so declaration order survives wherever
// the count is indifferent and the result is deterministic.
//
// The returned slices give, for each source and sink slot, its final
// position in left-to-right order.
func reduceCrossings(nSrc, nSink int, edges [][2]int, passes int) (srcPos, sinkPos []int) {
	srcPos = identity(nSrc)
	sinkPos = identity(nSink)
	if len(edges) < 2 {
		return srcPos, sinkPos
	}

	best := countCrossings(edges, srcPos, sinkPos)
	for pass := 0; pass < passes && best > 0; pass++ {
		improved := false
		if sweep(srcPos, func() int { return countCrossings(edges, srcPos, sinkPos) }, &best) {
			improved = true
		}
		if sweep(sinkPos, func() int { return countCrossings(edges, srcPos, sinkPos) }, &best) {
			improved = true
		}
		if !improved {
			break
		}
	}
	return srcPos, sinkPos
}

// sweep tries every adjacent transposition of one side once, keeping only
// strict improvements. pos maps slot to position, so swapping two slots'
// positions swaps the corresponding entries in the visual order.
func sweep(pos []int, count func() int, best *int) bool {
	order := make([]int, len(pos)) // position -> slot
	for slot, p := range pos {
		order[p] = slot
	}
	improved := false
	for i := 0; i+1 < len(order); i++ {
		a, b := order[i], order[i+1]
		pos[a], pos[b] = pos[b], pos[a]
		if c := count(); c < *best {
			*best = c
			order[i], order[i+1] = b, a
			improved = true
		} else {
			pos[a], pos[b] = pos[b], pos[a] // undo
		}
	}
	return improved
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
