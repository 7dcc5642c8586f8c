package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/causalcore/internal/ir"
)

// CycleError reports a cycle in the parent graph.
type CycleError struct {
	Path []string // Cycle path: ["X", "Y", "X"]
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " → ")
}

// TopologicalOrder returns node indexes in an order where every node follows
// all of its parents.
//
// Kahn's algorithm with declaration-order tie-break: among ready nodes the one
// declared first is emitted first, so an already-ordered model keeps its
// declaration order. Unknown parents are ignored (Validate reports them).
// A cyclic graph returns *CycleError with one cycle path.
func TopologicalOrder(m *ir.Model) ([]int, error) {
	n := len(m.Nodes)
	index := make(map[string]int, n)
	for i, node := range m.Nodes {
		index[node.Name] = i
	}

	indegree := make([]int, n)
	children := make([][]int, n)
	for i, node := range m.Nodes {
		for _, p := range node.Parents {
			pi, ok := index[p]
			if !ok {
				continue
			}
			indegree[i]++
			children[pi] = append(children[pi], i)
		}
	}

	// ready is kept sorted ascending by declaration index
	var ready []int
	for i := range n {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)
		for _, c := range children[i] {
			indegree[c]--
			if indegree[c] == 0 {
				pos, _ := slices.BinarySearch(ready, c)
				ready = slices.Insert(ready, pos, c)
			}
		}
	}

	if len(order) < n {
		cycles := FindCycles(m)
		if len(cycles) > 0 {
			return nil, &CycleError{Path: cycles[0]}
		}
		return nil, fmt.Errorf("topological order: %d of %d nodes unreachable", n-len(order), n)
	}
	return order, nil
}

// FindCycles returns one cycle path per cyclic strongly connected component of
// the parent graph, in a deterministic order. An acyclic model returns nil.
//
// The algorithm:
//  1. Build parent → child edges over declared nodes
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle
func FindCycles(m *ir.Model) [][]string {
	graph := buildParentGraph(m)

	var cycles [][]string
	for _, scc := range tarjanSCC(m.NodeNames(), graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		if len(scc) == 1 {
			cycles = append(cycles, []string{scc[0], scc[0]})
			continue
		}
		cycles = append(cycles, reconstructCyclePath(scc, graph))
	}
	return cycles
}

// parentGraph maps node name → children, in declaration order.
type parentGraph map[string][]string

func buildParentGraph(m *ir.Model) parentGraph {
	declared := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		declared[n.Name] = true
	}
	graph := make(parentGraph, len(m.Nodes))
	for _, n := range m.Nodes {
		if graph[n.Name] == nil {
			graph[n.Name] = []string{}
		}
		for _, p := range n.Parents {
			if declared[p] {
				graph[p] = append(graph[p], n.Name)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph parentGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Roots are visited in the given order so output is deterministic.
// Each SCC is ordered by reverse finishing time and starts at its root.
func tarjanSCC(nodes []string, graph parentGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Reverse(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath returns the shortest closed path through an SCC that
// starts and ends at its first member.
func reconstructCyclePath(scc []string, graph parentGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	member := make(map[string]bool, len(scc))
	for _, node := range scc {
		member[node] = true
	}

	// Breadth-first search from start back to start, within the SCC.
	start := scc[0]
	prev := make(map[string]string, len(scc))
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range graph[current] {
			if !member[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for at := current; at != start; at = prev[at] {
					path = append(path, at)
				}
				path = append(path, start)
				slices.Reverse(path)
				return path
			}
			if _, seen := prev[next]; !seen {
				prev[next] = current
				queue = append(queue, next)
			}
		}
	}
	return []string{start}
}
