package formula

import "sort"

// NodeKey identifies one cell across an entire workbook.
type NodeKey struct {
	Sheet string
	Addr  ARef
}

// DependencyGraph tracks, for every formula cell, the set of cells it
// reads (its precedents) and, in reverse, the set of cells that read it
// (its dependents). It never holds formula text or evaluated values —
// only the read edges the Evaluator would traverse, generalizing the
// teacher's DependencyNode/DependencyGraph (graph.go) from a single
// recursive-DFS walk to Tarjan's SCC algorithm for cycle detection and
// Kahn's algorithm for calculation ordering (spec.md §4.8).
type DependencyGraph struct {
	precedents map[NodeKey]map[NodeKey]bool
	dependents map[NodeKey]map[NodeKey]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		precedents: map[NodeKey]map[NodeKey]bool{},
		dependents: map[NodeKey]map[NodeKey]bool{},
	}
}

// SetFormula (re)registers node's precedent set, replacing whatever edges
// a prior formula at that address left behind. wb supplies the used-range
// bounds needed to expand whole-column/whole-row references without
// materializing every address in them.
func (g *DependencyGraph) SetFormula(wb WorkbookAccess, node NodeKey, expr Expr) {
	g.RemoveFormula(node)
	prec := extractPrecedents(wb, node.Sheet, expr)
	if len(prec) == 0 {
		return
	}
	g.precedents[node] = prec
	for p := range prec {
		if g.dependents[p] == nil {
			g.dependents[p] = map[NodeKey]bool{}
		}
		g.dependents[p][node] = true
	}
}

// RemoveFormula clears node's outgoing edges (it no longer holds a
// formula, or is about to receive a new one).
func (g *DependencyGraph) RemoveFormula(node NodeKey) {
	for p := range g.precedents[node] {
		delete(g.dependents[p], node)
		if len(g.dependents[p]) == 0 {
			delete(g.dependents, p)
		}
	}
	delete(g.precedents, node)
}

// Precedents returns the direct set of cells node reads from.
func (g *DependencyGraph) Precedents(node NodeKey) []NodeKey {
	return keysOf(g.precedents[node])
}

// Dependents returns the direct set of cells that read node.
func (g *DependencyGraph) Dependents(node NodeKey) []NodeKey {
	return keysOf(g.dependents[node])
}

// TransitivePrecedents returns every cell node depends on, directly or
// transitively, via breadth-first traversal.
func (g *DependencyGraph) TransitivePrecedents(node NodeKey) []NodeKey {
	return g.transitive(node, g.precedents)
}

// TransitiveDependents returns every cell that depends on node, directly
// or transitively.
func (g *DependencyGraph) TransitiveDependents(node NodeKey) []NodeKey {
	return g.transitive(node, g.dependents)
}

func (g *DependencyGraph) transitive(start NodeKey, edges map[NodeKey]map[NodeKey]bool) []NodeKey {
	seen := map[NodeKey]bool{}
	queue := []NodeKey{start}
	var out []NodeKey
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range edges[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

func keysOf(m map[NodeKey]bool) []NodeKey {
	out := make([]NodeKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortNodeKeys(out)
	return out
}

func sortNodeKeys(keys []NodeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Sheet != keys[j].Sheet {
			return keys[i].Sheet < keys[j].Sheet
		}
		if keys[i].Addr.Row != keys[j].Addr.Row {
			return keys[i].Addr.Row < keys[j].Addr.Row
		}
		return keys[i].Addr.Col < keys[j].Addr.Col
	})
}

// allNodes returns every node that appears as either a formula cell or a
// precedent of one, the full vertex set the graph algorithms operate on.
func (g *DependencyGraph) allNodes() []NodeKey {
	seen := map[NodeKey]bool{}
	for node, prec := range g.precedents {
		seen[node] = true
		for p := range prec {
			seen[p] = true
		}
	}
	out := make([]NodeKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sortNodeKeys(out)
	return out
}

// extractPrecedents walks expr collecting every cell address it reads,
// expanding range/aggregate arguments against the referenced sheet's used
// range so a whole-column reference never produces more than
// UsedRange-many edges (spec.md §4.8's bounded-extraction requirement).
func extractPrecedents(wb WorkbookAccess, hostSheet string, expr Expr) map[NodeKey]bool {
	out := map[NodeKey]bool{}
	walk(expr, func(e Expr) {
		switch n := e.(type) {
		case *Ref:
			out[NodeKey{Sheet: hostSheet, Addr: n.Addr}] = true
		case *PolyRef:
			out[NodeKey{Sheet: hostSheet, Addr: n.Addr}] = true
		case *SheetRef:
			out[NodeKey{Sheet: n.Sheet, Addr: n.Addr}] = true
		case *SheetPolyRef:
			out[NodeKey{Sheet: n.Sheet, Addr: n.Addr}] = true
		case *RangeRef:
			addBoundedRange(wb, out, hostSheet, n.Range)
		case *SheetRange:
			addBoundedRange(wb, out, n.Sheet, n.Range)
		case *Aggregate:
			sheet := hostSheet
			if n.Loc.IsCrossSheet() {
				sheet = n.Loc.Sheet
			}
			addBoundedRange(wb, out, sheet, n.Loc.Range)
		}
	})
	return out
}

func addBoundedRange(wb WorkbookAccess, out map[NodeKey]bool, sheet string, r CellRange) {
	sa, ok := wb.Sheet(sheet)
	if !ok {
		return
	}
	bounded, ok := r.Intersect(sa.UsedRange())
	if !ok {
		return
	}
	for addr := range bounded.Cells() {
		out[NodeKey{Sheet: sheet, Addr: addr}] = true
	}
}

// FindCycle runs Tarjan's strongly-connected-components algorithm over the
// "depends on" edges and returns the first cycle it discovers (a
// single-node SCC with a self-loop counts), or ok=false if the graph is
// acyclic. O(V+E), matching spec.md §4.8.
func (g *DependencyGraph) FindCycle() (path []ARef, ok bool) {
	tj := &tarjan{
		graph:   g,
		index:   map[NodeKey]int{},
		lowlink: map[NodeKey]int{},
		onStack: map[NodeKey]bool{},
	}
	for _, n := range g.allNodes() {
		if tj.found {
			break
		}
		if _, visited := tj.index[n]; !visited {
			tj.strongconnect(n)
		}
	}
	if tj.cycle == nil {
		return nil, false
	}
	out := make([]ARef, len(tj.cycle)+1)
	for i, n := range tj.cycle {
		out[i] = n.Addr
	}
	out[len(tj.cycle)] = tj.cycle[0].Addr
	return out, true
}

type tarjan struct {
	graph   *DependencyGraph
	index   map[NodeKey]int
	lowlink map[NodeKey]int
	onStack map[NodeKey]bool
	stack   []NodeKey
	counter int
	found   bool
	cycle   []NodeKey
}

func (tj *tarjan) strongconnect(v NodeKey) {
	tj.index[v] = tj.counter
	tj.lowlink[v] = tj.counter
	tj.counter++
	tj.stack = append(tj.stack, v)
	tj.onStack[v] = true

	for w := range tj.graph.precedents[v] {
		if tj.found {
			return
		}
		if _, visited := tj.index[w]; !visited {
			tj.strongconnect(w)
			if tj.lowlink[w] < tj.lowlink[v] {
				tj.lowlink[v] = tj.lowlink[w]
			}
		} else if tj.onStack[w] {
			if tj.index[w] < tj.lowlink[v] {
				tj.lowlink[v] = tj.index[w]
			}
		}
	}

	if tj.lowlink[v] != tj.index[v] {
		return
	}
	var scc []NodeKey
	for {
		n := len(tj.stack) - 1
		w := tj.stack[n]
		tj.stack = tj.stack[:n]
		tj.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	if len(scc) > 1 || tj.graph.precedents[v][v] {
		tj.found = true
		tj.cycle = scc
	}
}

// CalculationOrder returns every node reachable from roots (inclusive, via
// precedent edges) in an order where every cell appears after all of its
// precedents, computed with Kahn's algorithm. It first runs FindCycle over
// the whole graph and returns a CircularRef error naming the first cycle
// found, whether or not that cycle is reachable from roots.
func (g *DependencyGraph) CalculationOrder(roots []NodeKey) ([]NodeKey, EvalError) {
	if cyclePath, found := g.FindCycle(); found {
		return nil, &CircularRef{Path: cyclePath}
	}

	// restrict to the closure of roots over precedent edges.
	closure := map[NodeKey]bool{}
	queue := append([]NodeKey{}, roots...)
	for _, r := range roots {
		closure[r] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for p := range g.precedents[cur] {
			if !closure[p] {
				closure[p] = true
				queue = append(queue, p)
			}
		}
	}

	inDegree := map[NodeKey]int{}
	for n := range closure {
		inDegree[n] = len(g.precedents[n])
	}

	var ready []NodeKey
	for n, d := range inDegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sortNodeKeys(ready)

	var order []NodeKey
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		next := keysOf(g.dependents[n])
		for _, d := range next {
			if !closure[d] {
				continue
			}
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}
	return order, nil
}

func insertSorted(ready []NodeKey, n NodeKey) []NodeKey {
	ready = append(ready, n)
	sortNodeKeys(ready)
	return ready
}
