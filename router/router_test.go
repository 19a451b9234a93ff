package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wire"
)

type fakeDispatcher struct {
	events     []wire.InputEvent
	warpPoints []wire.WarpPoint
	targets    []ids.Cid
}

func (f *fakeDispatcher) SendEvent(to ids.Cid, ev wire.InputEvent) error {
	f.targets = append(f.targets, to)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeDispatcher) SendWarpPoint(to ids.Cid, wp wire.WarpPoint) error {
	f.targets = append(f.targets, to)
	f.warpPoints = append(f.warpPoints, wp)
	return nil
}

type fakeLocal struct {
	events []wire.InputEvent
}

func (f *fakeLocal) Deliver(ev wire.InputEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func rectDisplay(id ids.Did, owner ids.Cid, x, y, w, h int32) displaygraph.Display {
	return displaygraph.Display{ID: id, Owner: owner, Rect: geometry.Rect{X: x, Y: y, Width: w, Height: h}}
}

// Scenario 1: single server, no clients, pointer move across a local edge.
func TestScenarioSingleServerLocalCrossing(t *testing.T) {
	g := displaygraph.New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	b := rectDisplay(2, ids.ServerCid, 100, 0, 100, 100)
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a, b}))

	dispatcher := &fakeDispatcher{}
	local := &fakeLocal{}
	r, err := New(g, dispatcher, local, func() (int32, int32, bool) { return 50, 50, true })
	require.NoError(t, err)

	did, owner := r.Current()
	assert.Equal(t, ids.Did(1), did)
	assert.Equal(t, ids.ServerCid, owner)

	passThrough, err := r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 150, Y: 50})
	require.NoError(t, err)
	assert.True(t, passThrough)

	did, owner = r.Current()
	assert.Equal(t, ids.Did(2), did)
	assert.Equal(t, ids.ServerCid, owner)
	assert.Empty(t, dispatcher.events)
	assert.Empty(t, dispatcher.warpPoints)
	require.Len(t, local.events, 1)
	assert.Equal(t, int32(150), local.events[0].X) // unified-plane coordinates, unchanged
	assert.Equal(t, int32(50), local.events[0].Y)
}

// Scenario 4: cross-host warp sends a WarpPoint and subsequent keystrokes
// forward to the new owner in order (P6).
func TestScenarioCrossHostWarp(t *testing.T) {
	g := displaygraph.New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a}))

	clientCid := ids.Cid(42)
	c := rectDisplay(2, clientCid, 100, 0, 100, 100)
	require.NoError(t, g.Attach([]displaygraph.Display{c}))

	dispatcher := &fakeDispatcher{}
	local := &fakeLocal{}
	r, err := New(g, dispatcher, local, func() (int32, int32, bool) { return 50, 50, true })
	require.NoError(t, err)

	// A sample well clear of the edge stays local, and the hook is told to
	// pass the native event through.
	passThrough, err := r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 10, Y: 40})
	require.NoError(t, err)
	assert.True(t, passThrough)
	did, owner := r.Current()
	assert.Equal(t, ids.Did(1), did)
	assert.Equal(t, ids.ServerCid, owner)

	// A sample past the right edge triggers the crossing; since ownership
	// now belongs to a remote client, the hook must suppress it.
	passThrough, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 101, Y: 40})
	require.NoError(t, err)
	assert.False(t, passThrough)
	did, owner = r.Current()
	assert.Equal(t, ids.Did(2), did)
	assert.Equal(t, clientCid, owner)
	require.Len(t, dispatcher.warpPoints, 1)
	assert.Equal(t, wire.WarpPoint{X: 1, Y: 40}, dispatcher.warpPoints[0])

	// Subsequent keystrokes forward to the new owner, in order, and are
	// likewise suppressed locally.
	passThrough, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventKeyPress, Key: 1})
	require.NoError(t, err)
	assert.False(t, passThrough)
	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventKeyPress, Key: 2})
	require.NoError(t, err)
	require.Len(t, dispatcher.events, 2)
	assert.Equal(t, uint32(1), dispatcher.events[0].Key)
	assert.Equal(t, uint32(2), dispatcher.events[1].Key)
	assert.Equal(t, clientCid, dispatcher.targets[len(dispatcher.targets)-1])
}

// Scenario 5: return signal clears warping and reclaims the display the
// OS pointer is actually inside.
func TestScenarioReturn(t *testing.T) {
	g := displaygraph.New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a}))
	clientCid := ids.Cid(42)
	c := rectDisplay(2, clientCid, 100, 0, 100, 100)
	require.NoError(t, g.Attach([]displaygraph.Display{c}))

	dispatcher := &fakeDispatcher{}
	local := &fakeLocal{}
	r, err := New(g, dispatcher, local, func() (int32, int32, bool) { return 50, 50, true })
	require.NoError(t, err)

	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 101, Y: 40})
	require.NoError(t, err)
	did, owner := r.Current()
	assert.Equal(t, ids.Did(2), did)
	assert.Equal(t, clientCid, owner)

	r.HandleReturn(func() (int32, int32, bool) { return 10, 10, true })
	did, owner = r.Current()
	assert.Equal(t, ids.Did(1), did)
	assert.Equal(t, ids.ServerCid, owner)

	// A following MouseMove, well inside display 1, is delivered locally.
	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 50, Y: 50})
	require.NoError(t, err)
	require.Len(t, local.events, 1)
}

// P4: for a given sample, the router either stays put or crosses exactly
// one zone — never two.
func TestCornerPixelPicksFirstZoneInInsertionOrder(t *testing.T) {
	g := displaygraph.New()
	// A is a small square with both a right and a down neighbour so its
	// bottom-right corner could conceivably match two zones.
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a}))

	right := rectDisplay(2, 7, 100, 0, 100, 100)
	down := rectDisplay(3, 8, 0, 100, 100, 100)
	require.NoError(t, g.Attach([]displaygraph.Display{right, down}))

	zones := g.TouchingZones(1)
	require.Len(t, zones, 2)

	dispatcher := &fakeDispatcher{}
	local := &fakeLocal{}
	r, err := New(g, dispatcher, local, func() (int32, int32, bool) { return 50, 50, true })
	require.NoError(t, err)

	// Sample at the corner matches both the Right and Down zone bands;
	// the router must pick exactly one, and it must be the first zone in
	// insertion order.
	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 101, Y: 101})
	require.NoError(t, err)
	did, _ := r.Current()
	assert.Equal(t, zones[0].To, did)
}

func TestWarpingSuppressesZoneDetection(t *testing.T) {
	g := displaygraph.New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a}))
	clientCid := ids.Cid(42)
	c := rectDisplay(2, clientCid, 100, 0, 100, 100)
	require.NoError(t, g.Attach([]displaygraph.Display{c}))

	dispatcher := &fakeDispatcher{}
	local := &fakeLocal{}
	r, err := New(g, dispatcher, local, func() (int32, int32, bool) { return 50, 50, true })
	require.NoError(t, err)

	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 101, Y: 40})
	require.NoError(t, err)
	require.Len(t, dispatcher.warpPoints, 1)

	// While warping, further moves pass straight through as events to the
	// new owner without re-triggering a crossing.
	_, err = r.HandleEvent(wire.InputEvent{Kind: wire.EventMouseMove, X: 105, Y: 45})
	require.NoError(t, err)
	require.Len(t, dispatcher.warpPoints, 1)
	require.Len(t, dispatcher.events, 1)
}
