// Package displaygraph implements §4.2: the unified display graph. It holds
// every known display keyed by Did, validates new geometry on attach (no
// overlap, no isolation), and derives the mirrored warp zones along
// touching edges.
package displaygraph

import (
	"fmt"
	"sync"

	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wderrors"
)

// WarpZone is a segment along one of a display's four edges through which
// the pointer may cross into a neighbouring display.
type WarpZone struct {
	Start, End int32
	Direction  geometry.Direction
	To         ids.Did
}

// Display is a display's identity, ownership, geometry, and derived warp
// zones.
type Display struct {
	ID          ids.Did
	Owner       ids.Cid // ids.ServerCid for server-side displays
	Rect        geometry.Rect
	IsPrimary   bool
	ScaleFactor float32
	Rotation    float32
	Frequency   float32
	WarpZones   []WarpZone
}

// AssignedDisplays splits the known Did set by ownership.
type AssignedDisplays struct {
	System []ids.Did
	Client []ids.Did
}

// Graph owns every Display record. Everything else in warpdesk refers to
// displays by Did; Graph never hands out a mutable pointer into its own
// state, so readers never need their own lock discipline beyond calling
// Get/TouchingZones.
type Graph struct {
	mu       sync.RWMutex
	displays map[ids.Did]Display
	focus    ids.Did
	hasFocus bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{displays: make(map[ids.Did]Display)}
}

// BuildLocal seeds the graph from the server's own monitors. It is an
// error to call this with zero displays (ConfigInvalid, fatal at startup
// per §7). The focus display is the one with IsPrimary set, else the
// first in iteration order.
func (g *Graph) BuildLocal(systemDisplays []Display) error {
	if len(systemDisplays) == 0 {
		return wderrors.New(wderrors.ConfigInvalid, "no displays reported by the OS")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	focus := systemDisplays[0].ID
	haveFocus := false
	for _, d := range systemDisplays {
		d.Owner = ids.ServerCid
		g.displays[d.ID] = d
		if d.IsPrimary && !haveFocus {
			focus = d.ID
			haveFocus = true
		}
	}

	// Derive warp zones among the system displays themselves.
	dids := make([]ids.Did, 0, len(systemDisplays))
	for _, d := range systemDisplays {
		dids = append(dids, d.ID)
	}
	for i := 0; i < len(dids); i++ {
		for j := i + 1; j < len(dids); j++ {
			a := g.displays[dids[i]]
			b := g.displays[dids[j]]
			if geometry.Overlap(a.Rect, b.Rect) {
				return wderrors.New(wderrors.LayoutInvalid, fmt.Sprintf("system displays %d and %d overlap", a.ID, b.ID))
			}
			mirrorZones(&a, &b)
			g.displays[a.ID] = a
			g.displays[b.ID] = b
		}
	}

	g.focus = focus
	g.hasFocus = true
	return nil
}

// Attach admits a batch of client-owned displays into the graph. Every
// incoming display is checked against every existing display for overlap
// (fails the whole attach on the first violation, before anything is
// mutated) and for a touching edge (which yields mirrored WarpZones on
// both sides). After admission, every incoming display must have at least
// one WarpZone or the whole attach fails as an isolated display.
func (g *Graph) Attach(incoming []Display) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing := make([]Display, 0, len(g.displays))
	for _, d := range g.displays {
		existing = append(existing, d)
	}

	// Validate before mutating: overlap against every existing display and
	// every other incoming display.
	for i, a := range incoming {
		for _, b := range existing {
			if geometry.Overlap(a.Rect, b.Rect) {
				return wderrors.New(wderrors.LayoutInvalid,
					fmt.Sprintf("incoming display %d overlaps existing display %d", a.ID, b.ID))
			}
		}
		for j := i + 1; j < len(incoming); j++ {
			if geometry.Overlap(a.Rect, incoming[j].Rect) {
				return wderrors.New(wderrors.LayoutInvalid,
					fmt.Sprintf("incoming displays %d and %d overlap", a.ID, incoming[j].ID))
			}
		}
	}

	// Mirror zones: incoming<->existing and incoming<->incoming.
	for i := range incoming {
		for k := range existing {
			mirrorZones(&incoming[i], &existing[k])
		}
		for j := i + 1; j < len(incoming); j++ {
			mirrorZones(&incoming[i], &incoming[j])
		}
	}

	for _, d := range incoming {
		if len(d.WarpZones) == 0 {
			return wderrors.New(wderrors.LayoutInvalid, fmt.Sprintf("display %d is isolated", d.ID))
		}
	}

	// Everything validated; commit.
	for _, d := range existing {
		g.displays[d.ID] = d
	}
	for _, d := range incoming {
		g.displays[d.ID] = d
	}

	return nil
}

// mirrorZones checks a and b for a touching edge and, if found, appends a
// WarpZone to each pointing at the other, satisfying P1.
func mirrorZones(a, b *Display) {
	start, end, dir, ok := geometry.Touch(a.Rect, b.Rect)
	if !ok {
		return
	}
	a.WarpZones = append(a.WarpZones, WarpZone{Start: start, End: end, Direction: dir, To: b.ID})
	b.WarpZones = append(b.WarpZones, WarpZone{Start: start, End: end, Direction: dir.Reverse(), To: a.ID})
}

// TouchingZones returns the zones outbound from the given display, in
// insertion order (stable iteration, per the Router's tie-break rule).
func (g *Graph) TouchingZones(did ids.Did) []WarpZone {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.displays[did]
	if !ok {
		return nil
	}
	out := make([]WarpZone, len(d.WarpZones))
	copy(out, d.WarpZones)
	return out
}

// Get returns a copy of the display record for did.
func (g *Graph) Get(did ids.Did) (Display, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.displays[did]
	return d, ok
}

// Focus returns the display chosen as the initial/fallback current
// display: the primary server display, or the first system display seen.
func (g *Graph) Focus() (ids.Did, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.focus, g.hasFocus
}

// ServerDisplayContaining returns the server-owned display whose rect
// contains (x, y), used both at startup and on ReturnSignal fallback.
func (g *Graph) ServerDisplayContaining(x, y int32) (ids.Did, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, d := range g.displays {
		if d.Owner == ids.ServerCid && d.Rect.Contains(x, y) {
			return d.ID, true
		}
	}
	return 0, false
}

// Assigned reports the current System/Client Did split.
func (g *Graph) Assigned() AssignedDisplays {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out AssignedDisplays
	for did, d := range g.displays {
		if d.Owner == ids.ServerCid {
			out.System = append(out.System, did)
		} else {
			out.Client = append(out.Client, did)
		}
	}
	return out
}

// Snapshot returns a copy of every known display, for building a
// DisplayMap wire message.
func (g *Graph) Snapshot() map[ids.Did]Display {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[ids.Did]Display, len(g.displays))
	for k, v := range g.displays {
		out[k] = v
	}
	return out
}

// Count returns the number of known displays.
func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.displays)
}
