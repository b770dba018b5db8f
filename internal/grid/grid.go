package grid

import (
	"math"

	"github.com/voxhunt/server/internal/geom"
)

// Cell identifies one unit square of the world by integer coordinates.
// A cell's world-space center coincides with the integer coordinate of the
// same value: cell (5,7) spans world (4.5,6.5)–(5.5,7.5).
type Cell struct {
	X int
	Z int
}

// Manhattan returns the 4-connected step distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Z-o.Z)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Grid is the authoritative blocked-cell set for the whole world.
// A cell is a member iff at least one active obstacle occupies it; membership
// is binary, there is no per-cell occupant count. Written only by the
// obstacle synchronizer, read by the planner and the AI layer; the tick
// runner guarantees the write-before-read ordering, so no locking.
type Grid struct {
	blocked map[Cell]struct{}
}

func New() *Grid {
	return &Grid{
		blocked: make(map[Cell]struct{}, 256),
	}
}

// SetBlocked marks a cell blocked. Idempotent.
func (g *Grid) SetBlocked(c Cell) {
	g.blocked[c] = struct{}{}
}

// SetWalkable unmarks a cell. Idempotent; no-op when the cell is not blocked.
func (g *Grid) SetWalkable(c Cell) {
	delete(g.blocked, c)
}

func (g *Grid) IsBlocked(c Cell) bool {
	_, ok := g.blocked[c]
	return ok
}

// BlockedCount returns the number of currently blocked cells.
func (g *Grid) BlockedCount() int { return len(g.blocked) }

// WorldToCell maps a continuous world position to the cell containing it.
// Each axis rounds to the nearest integer independently.
func WorldToCell(p geom.Vec2) Cell {
	return Cell{
		X: int(math.Round(p.X)),
		Z: int(math.Round(p.Z)),
	}
}

// CellToWorld returns the world-space center of a cell. Exact inverse of
// WorldToCell for integer coordinates.
func CellToWorld(c Cell) geom.Vec2 {
	return geom.Vec2{X: float64(c.X), Z: float64(c.Z)}
}

// CellStatus is one entry of the debug query surface.
type CellStatus struct {
	Cell    Cell
	Blocked bool
}

// StatusAround enumerates the square neighborhood of cells within radius of
// the cell containing center, with their blocked state. Read-only view for
// external visualization tooling.
func (g *Grid) StatusAround(center geom.Vec2, radius int) []CellStatus {
	if radius < 0 {
		return nil
	}
	origin := WorldToCell(center)
	side := radius*2 + 1
	out := make([]CellStatus, 0, side*side)
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			c := Cell{X: origin.X + dx, Z: origin.Z + dz}
			out = append(out, CellStatus{Cell: c, Blocked: g.IsBlocked(c)})
		}
	}
	return out
}
