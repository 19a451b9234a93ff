// Package geometry implements the pure rectangle predicates the rest of
// warpdesk builds on: overlap, edge-touch, and point containment for
// axis-aligned displays living in the unified plane.
package geometry

// Direction is the side of a display a WarpZone exits through, relative to
// the display that owns the zone.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Reverse returns the opposite direction: Left<->Right, Up<->Down.
func (d Direction) Reverse() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

// Rect is an axis-aligned rectangle in the unified plane.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Right returns the x coordinate just past the rectangle's right edge.
func (r Rect) Right() int32 { return r.X + r.Width }

// Bottom returns the y coordinate just past the rectangle's bottom edge.
func (r Rect) Bottom() int32 { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r, using a half-open
// [min, max) test on both axes.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlap reports whether two rectangles share positive area. Callers must
// skip identity pairs themselves; a rectangle is not asserted here to never
// overlap itself.
func Overlap(a, b Rect) bool {
	return a.X < b.Right() && a.Right() > b.X && a.Y < b.Bottom() && a.Bottom() > b.Y
}

// Touch reports whether a and b share a positive-length segment along one
// of a's edges, and if so returns the shared interval (in plane
// coordinates) and the direction from a toward b.
func Touch(a, b Rect) (start, end int32, dir Direction, ok bool) {
	horizontal := (a.Right() == b.X || a.X == b.Right()) && a.Y < b.Bottom() && a.Bottom() > b.Y
	vertical := (a.Bottom() == b.Y || a.Y == b.Bottom()) && a.X < b.Right() && a.Right() > b.X

	switch {
	case horizontal:
		start = max32(a.Y, b.Y)
		end = min32(a.Bottom(), b.Bottom())
		if a.Right() == b.X {
			dir = Right
		} else {
			dir = Left
		}
		return start, end, dir, true
	case vertical:
		start = max32(a.X, b.X)
		end = min32(a.Right(), b.Right())
		if a.Bottom() == b.Y {
			dir = Down
		} else {
			dir = Up
		}
		return start, end, dir, true
	default:
		return 0, 0, 0, false
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
