// Package clientrt implements §4.7: the client runtime loop that follows a
// successful handshake. It waits for WarpPoint/InputEvent frames from the
// server and mirrors them locally, while concurrently watching the local
// pointer for the reverse crossing back onto a server-owned edge.
package clientrt

import (
	"net"
	"sync"
	"time"

	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/logging"
	"github.com/warpdesk/warpdesk/wire"
)

// DefaultMargin mirrors router.DefaultMargin: the same small inclusive
// pixel band used to detect an edge sample, applied here to the client's
// own displays instead of the server's.
const DefaultMargin int32 = 2

// DefaultPollInterval is how often the local pointer is sampled while
// mirroring is active.
const DefaultPollInterval = 10 * time.Millisecond

// Synthesizer is the client-side injection collaborator (§6).
type Synthesizer interface {
	MoveTo(x, y int32)
	Deliver(ev wire.InputEvent) error
}

// PointerQuery reports the live local pointer position.
type PointerQuery func() (x, y int32, ok bool)

// ReturnZone is one of the client's own display edges that, if crossed,
// hands control back to a server-owned display.
type ReturnZone struct {
	OwnDid     ids.Did
	Start, End int32
	Direction  geometry.Direction
}

// Runtime drives one client session after a successful handshake.
type Runtime struct {
	conn  net.Conn
	synth Synthesizer
	own   []displaygraph.Display
	zones []ReturnZone
	margin int32

	mu        sync.Mutex
	injecting bool

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New builds a Runtime. own is the client's own displays, in the same
// unified-plane coordinates submitted during the handshake. server is the
// DisplayMap snapshot received from ServerLayout.
func New(conn net.Conn, synth Synthesizer, own []displaygraph.Display, server map[uint32]wire.WireDisplay) *Runtime {
	return &Runtime{
		conn:   conn,
		synth:  synth,
		own:    own,
		zones:  computeReturnZones(own, server),
		margin: DefaultMargin,
		stopCh: make(chan struct{}),
	}
}

// computeReturnZones finds, for each of the client's own displays, the
// edges that touch a server-owned display, per the same mirrored-zone
// geometry as displaygraph.Attach — duplicated here in miniature because
// the client never receives the server's own WarpZone slice, only raw
// geometry.
func computeReturnZones(own []displaygraph.Display, server map[uint32]wire.WireDisplay) []ReturnZone {
	var zones []ReturnZone
	for _, d := range own {
		for _, s := range server {
			if ids.Cid(s.Owner) != ids.ServerCid {
				continue
			}
			sRect := geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
			start, end, dir, ok := geometry.Touch(d.Rect, sRect)
			if !ok {
				continue
			}
			zones = append(zones, ReturnZone{OwnDid: d.ID, Start: start, End: end, Direction: dir})
		}
	}
	return zones
}

// Run starts the receive loop (blocking, returns when the connection
// closes) and the pointer-monitor goroutine (background). Callers
// typically invoke Run in its own goroutine and use Stop to shut down.
func (r *Runtime) Run(pointer PointerQuery) error {
	r.wg.Add(1)
	go r.monitorPointer(pointer)
	defer r.wg.Wait()

	for {
		payload, err := wire.ReadFrame(r.conn)
		if err != nil {
			r.Stop()
			return err
		}
		ev, wp, isWarp, err := wire.DecodeEventFrame(payload)
		if err != nil {
			logging.Warnf("clientrt: dropping malformed frame: %v", err)
			continue
		}
		if isWarp {
			r.synth.MoveTo(wp.X, wp.Y)
			r.setInjecting(true)
			continue
		}
		if r.isInjecting() {
			if err := r.synth.Deliver(ev); err != nil {
				logging.Warnf("clientrt: injection failed: %v", err)
			}
		}
	}
}

// Stop ends the pointer-monitor goroutine. Run itself ends when the
// connection closes or errors. Safe to call more than once.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Runtime) setInjecting(v bool) {
	r.mu.Lock()
	r.injecting = v
	r.mu.Unlock()
}

func (r *Runtime) isInjecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.injecting
}

// monitorPointer watches the local pointer while mirroring is active and
// sends ReturnSignal the moment it crosses back onto a server-owned edge
// (§4.7).
func (r *Runtime) monitorPointer(pointer PointerQuery) {
	defer r.wg.Done()
	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if !r.isInjecting() {
				continue
			}
			x, y, ok := pointer()
			if !ok {
				continue
			}
			own := r.ownDisplayContaining(x, y)
			if own == 0 {
				continue
			}
			if !r.matchesReturnZone(own, x, y) {
				continue
			}
			r.setInjecting(false)
			if err := wire.WriteFrame(r.conn, wire.EncodeReturnSignal()); err != nil {
				logging.Warnf("clientrt: failed to send return signal: %v", err)
			}
		}
	}
}

func (r *Runtime) ownDisplayContaining(x, y int32) ids.Did {
	for _, d := range r.own {
		if d.Rect.Contains(x, y) {
			return d.ID
		}
	}
	return 0
}

func (r *Runtime) matchesReturnZone(did ids.Did, x, y int32) bool {
	for _, z := range r.zones {
		if z.OwnDid != did {
			continue
		}
		if zoneMatches(r.ownRect(did), z, x, y, r.margin) {
			return true
		}
	}
	return false
}

func (r *Runtime) ownRect(did ids.Did) geometry.Rect {
	for _, d := range r.own {
		if d.ID == did {
			return d.Rect
		}
	}
	return geometry.Rect{}
}

func zoneMatches(rect geometry.Rect, z ReturnZone, x, y, margin int32) bool {
	inBand := func(v int32) bool { return v >= z.Start-margin && v <= z.End+margin }

	switch z.Direction {
	case geometry.Left:
		return x <= rect.X+margin && inBand(y)
	case geometry.Right:
		return x >= rect.Right()-margin && inBand(y)
	case geometry.Up:
		return y <= rect.Y+margin && inBand(x)
	case geometry.Down:
		return y >= rect.Bottom()-margin && inBand(x)
	default:
		return false
	}
}
