package lock

import (
	"sort"
	"storemy/pkg/concurrency/transaction"
	"sync"
)

// waitsForGraph is the directed wait-for graph used for deadlock
// detection: an edge A->B means A is blocked on a lock B holds.
type waitsForGraph struct {
	mu    sync.Mutex
	edges map[int64]map[int64]bool
}

func newWaitsForGraph() *waitsForGraph {
	return &waitsForGraph{edges: make(map[int64]map[int64]bool)}
}

func (g *waitsForGraph) addEdge(from, to *transaction.TransactionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from.Equals(to) {
		return
	}
	if g.edges[from.ID()] == nil {
		g.edges[from.ID()] = make(map[int64]bool)
	}
	g.edges[from.ID()][to.ID()] = true
}

func (g *waitsForGraph) removeTxn(txn *transaction.TransactionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges, txn.ID())
	for _, succs := range g.edges {
		delete(succs, txn.ID())
	}
}

// hasCycle runs a DFS from every node in ascending id order (matching
// the deterministic victim-selection policy below) and reports the
// highest transaction id participating in any discovered cycle, per
// BusTub's FindCycle/RunCycleDetection design: the youngest transaction
// (highest id) in the cycle is always the victim.
func (g *waitsForGraph) findCycle() (victim int64, found bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make([]int64, 0, len(g.edges))
	for n := range g.edges {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	visited := make(map[int64]bool)
	onStack := make(map[int64]bool)

	var maxInCycle int64 = -1
	var dfs func(n int64) bool
	dfs = func(n int64) bool {
		visited[n] = true
		onStack[n] = true

		succs := make([]int64, 0, len(g.edges[n]))
		for s := range g.edges[n] {
			succs = append(succs, s)
		}
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })

		for _, s := range succs {
			if onStack[s] {
				if s > maxInCycle {
					maxInCycle = s
				}
				if n > maxInCycle {
					maxInCycle = n
				}
				return true
			}
			if !visited[s] {
				if dfs(s) {
					if n > maxInCycle {
						maxInCycle = n
					}
					return true
				}
			}
		}
		onStack[n] = false
		return false
	}

	for _, n := range nodes {
		if !visited[n] {
			if dfs(n) {
				return maxInCycle, true
			}
		}
	}
	return 0, false
}
