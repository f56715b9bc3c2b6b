package registry

import (
	"container/heap"
	"sort"

	"github.com/vk/assetgrid/internal/assetid"
)

// indexHeap is a min-heap of registration indices.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// stableOrder topologically sorts the included nodes. Whenever several nodes
// are ready, the one registered first goes next, which yields the unique
// order that respects dependencies and otherwise keeps registration order.
// Edges to nodes outside included are ignored.
func stableOrder(nodes []Node, byID map[assetid.ID]int, included []int) ([]int, error) {
	in := make(map[int]bool, len(included))
	for _, i := range included {
		in[i] = true
	}

	indegree := make(map[int]int, len(included))
	dependents := make(map[int][]int, len(included))
	for _, i := range included {
		for _, dep := range nodes[i].Dependencies {
			j := byID[dep]
			if !in[j] {
				continue
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := &indexHeap{}
	for _, i := range included {
		if indegree[i] == 0 {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	order := make([]int, 0, len(included))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(order) < len(included) {
		emitted := make(map[int]bool, len(order))
		for _, i := range order {
			emitted[i] = true
		}
		var stuck []int
		for _, i := range included {
			if !emitted[i] {
				stuck = append(stuck, i)
			}
		}
		return nil, cycleError(nodes, byID, stuck)
	}
	return order, nil
}

// cycleError finds the strongly connected components among the stuck nodes
// and reports the ones that really are cycles (more than one member, or a
// node depending on itself). Stuck nodes that only sit downstream of a cycle
// are left out.
func cycleError(nodes []Node, byID map[assetid.ID]int, stuck []int) *CyclicDependencyError {
	member := make(map[int]bool, len(stuck))
	for _, i := range stuck {
		member[i] = true
	}

	// Tarjan's algorithm, iterating in registration order for determinism.
	var (
		counter  int
		stack    []int
		onStack  = make(map[int]bool)
		index    = make(map[int]int)
		lowlink  = make(map[int]int)
		visited  = make(map[int]bool)
		cyclic   = make(map[int]bool)
		groups   [][]int
		strongly func(v int)
	)
	strongly = func(v int) {
		visited[v] = true
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		selfLoop := false
		for _, dep := range nodes[v].Dependencies {
			w := byID[dep]
			if !member[w] {
				continue
			}
			if w == v {
				selfLoop = true
			}
			if !visited[w] {
				strongly(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 || selfLoop {
				for _, w := range comp {
					cyclic[w] = true
				}
				groups = append(groups, comp)
			}
		}
	}

	for _, i := range stuck {
		if !visited[i] {
			strongly(i)
		}
	}

	err := &CyclicDependencyError{}
	for _, i := range stuck {
		if cyclic[i] {
			err.IDs = append(err.IDs, nodes[i].ID)
		}
	}
	sortGroups(groups)
	for _, g := range groups {
		ids := make([]assetid.ID, len(g))
		for k, i := range g {
			ids[k] = nodes[i].ID
		}
		err.Cycles = append(err.Cycles, ids)
	}
	return err
}

// sortGroups orders each component by registration index and the components
// by their first member.
func sortGroups(groups [][]int) {
	for _, g := range groups {
		sort.Ints(g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
}
