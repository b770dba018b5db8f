package nav

import (
	"container/heap"

	"github.com/voxhunt/server/internal/grid"
)

// DefaultMaxIterations bounds a single search when the caller passes no
// explicit budget. The planner runs synchronously on the simulation
// goroutine, so the budget is the cancellation mechanism: a maze-like or
// fully walled-off region must not stall the tick pipeline.
const DefaultMaxIterations = 1000

// cardinal neighbor offsets. No diagonals, which rules out corner-cutting
// through wall corners and keeps movement grid-aligned.
var neighborOffsets = [4]grid.Cell{
	{X: 0, Z: -1},
	{X: 1, Z: 0},
	{X: 0, Z: 1},
	{X: -1, Z: 0},
}

// Planner runs A* searches over a shared blocked-cell grid.
type Planner struct {
	grid *grid.Grid
}

func NewPlanner(g *grid.Grid) *Planner {
	return &Planner{grid: g}
}

type searchNode struct {
	cell   grid.Cell
	g      int
	f      int
	index  int
	parent *searchNode
}

type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool { return q[i].f < q[j].f }

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// FindPath searches for a shortest 4-connected route from start to goal.
// The returned path begins with start and ends with goal; consecutive cells
// are Manhattan-adjacent.
//
// Failure (false) covers a blocked goal, a blocked start, no connected
// route, and an exhausted iteration budget. Callers cannot distinguish the
// last two cases; both mean "no path right now" and are handled by retrying
// later, never as a hard error.
func (p *Planner) FindPath(start, goal grid.Cell, maxIterations int) ([]grid.Cell, bool) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if p.grid.IsBlocked(goal) {
		return nil, false
	}
	if p.grid.IsBlocked(start) {
		return nil, false
	}
	if start == goal {
		return []grid.Cell{start}, true
	}

	open := &openQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{cell: start, g: 0, f: start.Manhattan(goal)})

	gScore := map[grid.Cell]int{start: 0}
	closed := make(map[grid.Cell]struct{})

	expansions := 0
	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}

		if current.cell == goal {
			return reconstruct(current), true
		}

		expansions++
		if expansions >= maxIterations {
			return nil, false
		}

		for _, d := range neighborOffsets {
			next := grid.Cell{X: current.cell.X + d.X, Z: current.cell.Z + d.Z}
			if p.grid.IsBlocked(next) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentative := current.g + 1
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			heap.Push(open, &searchNode{
				cell:   next,
				g:      tentative,
				f:      tentative + next.Manhattan(goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstruct(end *searchNode) []grid.Cell {
	length := 0
	for n := end; n != nil; n = n.parent {
		length++
	}
	path := make([]grid.Cell, length)
	for n := end; n != nil; n = n.parent {
		length--
		path[length] = n.cell
	}
	return path
}
