package cluster

import "sort"

// detectCommunities runs a single-level greedy local-moving optimization of
// the Constant Potts Model quality function:
//
//	Q = sum_c [ e_c - resolution * n_c*(n_c-1)/2 ]
//
// where e_c is the sum of edge weights inside community c and n_c is its
// node count. This is a simplified, single-level variant of Leiden's
// local-moving phase (no community aggregation / multilevel refinement);
// see DESIGN.md for why the full Leiden algorithm wasn't reproduced from
// scratch.
func detectCommunities(nodes []int64, edges []Edge, resolution float64) map[int64]int {
	if len(nodes) == 0 {
		return nil
	}

	index := make(map[int64]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	adjacency := make([]map[int]float64, len(nodes))
	for i := range adjacency {
		adjacency[i] = make(map[int]float64)
	}
	for _, e := range edges {
		ia, okA := index[e.A]
		ib, okB := index[e.B]
		if !okA || !okB {
			continue
		}
		adjacency[ia][ib] += e.Weight
		adjacency[ib][ia] += e.Weight
	}

	community := make([]int, len(nodes))
	for i := range community {
		community[i] = i
	}
	communitySize := make([]int, len(nodes))
	for i := range communitySize {
		communitySize[i] = 1
	}

	const maxPasses = 50
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for i := range nodes {
			currentComm := community[i]

			neighborWeight := make(map[int]float64)
			for j, w := range adjacency[i] {
				neighborWeight[community[j]] += w
			}

			bestComm := currentComm
			bestGain := cpmDelta(neighborWeight[currentComm], communitySize[currentComm]-1, resolution)

			for comm, w := range neighborWeight {
				if comm == currentComm {
					continue
				}
				gain := cpmDelta(w, communitySize[comm], resolution)
				if gain > bestGain {
					bestGain = gain
					bestComm = comm
				}
			}

			if bestComm != currentComm {
				communitySize[currentComm]--
				communitySize[bestComm]++
				community[i] = bestComm
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	out := make(map[int64]int, len(nodes))
	for i, n := range nodes {
		out[n] = community[i]
	}
	return out
}

// cpmDelta scores joining a community with existing size n where this node
// has edgeWeight total weight to members of it: the CPM gain from adding one
// node is edgeWeight - resolution*n (the new pairs formed).
func cpmDelta(edgeWeight float64, n int, resolution float64) float64 {
	return edgeWeight - resolution*float64(n)
}

// renumberBySize discards communities below minSize and renumbers the
// survivors from 0, largest first.
func renumberBySize(assignment map[int64]int, minSize int) map[int64]int {
	sizes := make(map[int]int)
	for _, c := range assignment {
		sizes[c]++
	}

	var survivors []int
	for c, size := range sizes {
		if size >= minSize {
			survivors = append(survivors, c)
		}
	}
	sort.Slice(survivors, func(i, j int) bool { return sizes[survivors[i]] > sizes[survivors[j]] })

	renumber := make(map[int]int, len(survivors))
	for newID, oldID := range survivors {
		renumber[oldID] = newID
	}

	out := make(map[int64]int)
	for doc, oldComm := range assignment {
		if newComm, ok := renumber[oldComm]; ok {
			out[doc] = newComm
		}
	}
	return out
}
