// Package router implements §4.5: the single-writer state machine that
// tracks which display owns the cursor, detects edge crossings from a
// stream of pointer samples, and decides whether each input event is
// delivered locally or forwarded to a remote client.
package router

import (
	"sync"

	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// DefaultMargin is the inclusive pixel margin used to detect a pointer
// sample at a display edge (§4.5 step 2, "implementation constant, e.g.
// 1-2 pixels").
const DefaultMargin int32 = 2

// Dispatcher forwards events and warp points to a remote client's
// transport. Implemented by package transport; kept as an interface here
// so router has no network dependency.
type Dispatcher interface {
	SendEvent(to ids.Cid, ev wire.InputEvent) error
	SendWarpPoint(to ids.Cid, wp wire.WarpPoint) error
}

// LocalSink delivers an event to the local host OS. Implemented by an
// osinput.Synthesizer adapter.
type LocalSink interface {
	Deliver(ev wire.InputEvent) error
}

// PointerQuery returns the current OS pointer position, used at startup
// and on ReturnSignal fallback.
type PointerQuery func() (x, y int32, ok bool)

// Router is the server-side routing state machine. All state transitions
// happen under a single mutex held only across one sample's decision, per
// §5's concurrency discipline.
type Router struct {
	graph      *displaygraph.Graph
	dispatcher Dispatcher
	local      LocalSink
	margin     int32

	mu           sync.Mutex
	currentDid   ids.Did
	currentOwner ids.Cid
	warping      bool

	onWarpStart func(x, y int32)
	onWarpEnd   func()
}

// SetWarpHooks wires an optional side-effect pair around a cross-host warp:
// onStart fires with the unified-plane crossing point the instant ownership
// passes to a remote client, onEnd fires the moment ownership returns to the
// server. Used to raise/lower the warp-gate overlay window (§6); the
// Router's own state never depends on either callback.
func (r *Router) SetWarpHooks(onStart func(x, y int32), onEnd func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onWarpStart = onStart
	r.onWarpEnd = onEnd
}

// New builds a Router whose initial current display is the server-owned
// display containing the OS pointer position, per §4.5 "Initial state".
func New(graph *displaygraph.Graph, dispatcher Dispatcher, local LocalSink, pointer PointerQuery) (*Router, error) {
	r := &Router{
		graph:      graph,
		dispatcher: dispatcher,
		local:      local,
		margin:     DefaultMargin,
	}

	if x, y, ok := pointer(); ok {
		if did, found := graph.ServerDisplayContaining(x, y); found {
			r.currentDid = did
			r.currentOwner = ids.ServerCid
			return r, nil
		}
	}

	focus, ok := graph.Focus()
	if !ok {
		return nil, wderrors.New(wderrors.ConfigInvalid, "display graph has no focus display")
	}
	r.currentDid = focus
	r.currentOwner = ids.ServerCid
	return r, nil
}

// SetMargin overrides DefaultMargin, mainly for tests exercising exact
// boundary pixels.
func (r *Router) SetMargin(margin int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.margin = margin
}

// Current returns the display/owner the router currently believes owns
// the cursor.
func (r *Router) Current() (ids.Did, ids.Cid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentDid, r.currentOwner
}

// HandleEvent accepts one pointer/keyboard sample from the global OS hook
// and either delivers it locally or forwards it to the current owner.
// Non-move events never mutate state; MouseMove events may trigger a
// crossing. The returned passThrough reports whether the caller's hook
// should let the native event continue to the local OS (true) or must
// suppress it (false) because it has been, or is about to be, handled
// on the remote owner's behalf instead (§1, §6).
func (r *Router) HandleEvent(ev wire.InputEvent) (passThrough bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.Kind != wire.EventMouseMove {
		err = r.dispatchLocked(ev)
		return r.currentOwner == ids.ServerCid, err
	}

	if r.warping {
		// Re-entrant events from the synthesiser/overlay during an
		// in-flight warp skip zone detection and leave the state as it
		// is; they are dispatched to the current owner like any other.
		err = r.dispatchLocked(ev)
		return r.currentOwner == ids.ServerCid, err
	}

	cur, ok := r.graph.Get(r.currentDid)
	if !ok {
		return true, wderrors.New(wderrors.LayoutInvalid, "current display no longer exists in the graph")
	}

	zone, matched := matchZone(cur, ev.X, ev.Y, r.margin)
	if !matched {
		err = r.dispatchLocked(ev)
		return r.currentOwner == ids.ServerCid, err
	}

	target, ok := r.graph.Get(zone.To)
	if !ok {
		return true, wderrors.New(wderrors.LayoutInvalid, "warp zone targets an unknown display")
	}

	r.currentDid = zone.To
	r.currentOwner = target.Owner

	// Server-owned displays share one virtual-desktop coordinate system
	// with the unified plane by construction (BuildLocal copies monitor
	// offsets verbatim), so local delivery keeps the sample's plane
	// coordinates unchanged. Only a remote client's screen has its own
	// independent local origin, so only the cross-host case translates.
	if target.Owner == ids.ServerCid {
		err = r.local.Deliver(wire.InputEvent{Kind: wire.EventMouseMove, Timestamp: ev.Timestamp, X: ev.X, Y: ev.Y})
		return true, err
	}

	r.warping = true
	if r.onWarpStart != nil {
		r.onWarpStart(ev.X, ev.Y)
	}
	localX := ev.X - target.Rect.X
	localY := ev.Y - target.Rect.Y
	err = r.dispatcher.SendWarpPoint(target.Owner, wire.WarpPoint{X: localX, Y: localY})
	return false, err
}

// dispatchLocked delivers or forwards ev per the current owner. Must be
// called with r.mu held. MouseMove events forwarded to a remote owner are
// translated into that display's local frame, so the receiving client
// always injects at a coordinate valid on its own screen; local delivery
// keeps unified-plane coordinates unchanged.
func (r *Router) dispatchLocked(ev wire.InputEvent) error {
	if r.currentOwner == ids.ServerCid {
		return r.local.Deliver(ev)
	}

	if ev.Kind == wire.EventMouseMove {
		if cur, ok := r.graph.Get(r.currentDid); ok {
			ev.X -= cur.Rect.X
			ev.Y -= cur.Rect.Y
		}
	}
	return r.dispatcher.SendEvent(r.currentOwner, ev)
}

// matchZone scans cur's warp zones in insertion order (P4: the router
// picks at most one zone to cross) and returns the first one whose margin
// band contains (x, y).
func matchZone(cur displaygraph.Display, x, y, margin int32) (displaygraph.WarpZone, bool) {
	for _, z := range cur.WarpZones {
		if zoneMatches(cur, z, x, y, margin) {
			return z, true
		}
	}
	return displaygraph.WarpZone{}, false
}

func zoneMatches(cur displaygraph.Display, z displaygraph.WarpZone, x, y, margin int32) bool {
	inBand := func(v int32) bool { return v >= z.Start-margin && v <= z.End+margin }

	switch z.Direction {
	case geometry.Left:
		return x <= cur.Rect.X+margin && inBand(y)
	case geometry.Right:
		return x >= cur.Rect.Right()-margin && inBand(y)
	case geometry.Up:
		return y <= cur.Rect.Y+margin && inBand(x)
	case geometry.Down:
		return y >= cur.Rect.Bottom()-margin && inBand(x)
	default:
		return false
	}
}

// HandleReturn clears warping and reclaims server ownership of the
// cursor, per §4.5 "Release": recompute current_did from the OS pointer
// position against server-owned displays, falling back to the primary if
// none contains it. Used both for an explicit ReturnSignal and for the
// "disconnect of the current owner" fallback of §5 (pass a PointerQuery
// that always reports ok=false when there is no coordinate hint).
func (r *Router) HandleReturn(pointer PointerQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasWarping := r.warping
	r.warping = false
	if wasWarping && r.onWarpEnd != nil {
		r.onWarpEnd()
	}

	if x, y, ok := pointer(); ok {
		if did, found := r.graph.ServerDisplayContaining(x, y); found {
			r.currentDid = did
			r.currentOwner = ids.ServerCid
			return
		}
	}

	if focus, ok := r.graph.Focus(); ok {
		r.currentDid = focus
		r.currentOwner = ids.ServerCid
	}
}

// HandleClientDisconnect applies the fallback of §5 when the disconnecting
// client was the current owner: same as ReturnSignal, with no coordinate
// hint. A disconnect of a non-owning client is a no-op here; the caller is
// responsible for removing it from the client table.
func (r *Router) HandleClientDisconnect(cid ids.Cid) {
	r.mu.Lock()
	owner := r.currentOwner
	r.mu.Unlock()

	if owner != cid {
		return
	}
	r.HandleReturn(func() (int32, int32, bool) { return 0, 0, false })
}
