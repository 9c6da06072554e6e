// Package collide tests a circular actor against grid walls.
//
// The circle is approximated by a ring of sample points on its boundary.
// A wall corner poking in between two samples goes unnoticed.
package collide

import (
	"math"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
)

// Samples is the number of boundary points tested, spaced a full turn apart
// in equal steps (π/4 for eight).
const Samples = 8

// Occupancy is the slice of the world model collision needs.
type Occupancy interface {
	CellOf(p geom.Vec2) grid.Cell
	Occupied(col, row int) bool
}

// Collides reports whether a circle of radius at pos overlaps any occupied
// cell at one of its sample points. Points off the map count as occupied.
func Collides(g Occupancy, pos geom.Vec2, radius float64) bool {
	if !pos.Finite() {
		return true
	}
	step := geom.Tau / Samples
	for i := 0; i < Samples; i++ {
		angle := -math.Pi + float64(i)*step
		p := pos.Add(geom.V(radius, 0).Rotate(angle))
		c := g.CellOf(p)
		if g.Occupied(c.Col, c.Row) {
			return true
		}
	}
	return false
}

// Move tries to displace pos by delta. On collision the move is rejected
// whole and the original position is returned with ok == false; there is no
// sliding along walls.
func Move(g Occupancy, pos, delta geom.Vec2, radius float64) (geom.Vec2, bool) {
	next := pos.Add(delta)
	if Collides(g, next, radius) {
		return pos, false
	}
	return next, true
}
