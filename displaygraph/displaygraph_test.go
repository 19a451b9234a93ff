package displaygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
)

func rectDisplay(id ids.Did, owner ids.Cid, x, y, w, h int32) Display {
	return Display{ID: id, Owner: owner, Rect: geometry.Rect{X: x, Y: y, Width: w, Height: h}}
}

func TestBuildLocalRejectsEmpty(t *testing.T) {
	g := New()
	err := g.BuildLocal(nil)
	assert.Error(t, err)
}

func TestBuildLocalSelectsPrimaryAsFocus(t *testing.T) {
	g := New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	b := rectDisplay(2, ids.ServerCid, 100, 0, 100, 100)
	b.IsPrimary = true

	require.NoError(t, g.BuildLocal([]Display{a, b}))

	focus, ok := g.Focus()
	require.True(t, ok)
	assert.Equal(t, ids.Did(2), focus)
}

func TestBuildLocalSymmetricWarpZones(t *testing.T) {
	g := New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	b := rectDisplay(2, ids.ServerCid, 100, 0, 100, 100)
	require.NoError(t, g.BuildLocal([]Display{a, b}))

	zonesA := g.TouchingZones(1)
	zonesB := g.TouchingZones(2)
	require.Len(t, zonesA, 1)
	require.Len(t, zonesB, 1)

	assert.Equal(t, geometry.Right, zonesA[0].Direction)
	assert.Equal(t, ids.Did(2), zonesA[0].To)
	assert.Equal(t, geometry.Left, zonesB[0].Direction)
	assert.Equal(t, ids.Did(1), zonesB[0].To)
	assert.Equal(t, zonesA[0].Start, zonesB[0].Start)
	assert.Equal(t, zonesA[0].End, zonesB[0].End)
}

func TestAttachOverlapRejected(t *testing.T) {
	g := New()
	require.NoError(t, g.BuildLocal([]Display{rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)}))

	incoming := rectDisplay(2, 42, 50, 50, 100, 100)
	err := g.Attach([]Display{incoming})
	require.Error(t, err)

	// Graph must be unchanged: the overlapping display was never added.
	_, ok := g.Get(2)
	assert.False(t, ok)
}

func TestAttachIsolatedRejected(t *testing.T) {
	g := New()
	require.NoError(t, g.BuildLocal([]Display{rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)}))

	incoming := rectDisplay(2, 42, 500, 500, 100, 100)
	err := g.Attach([]Display{incoming})
	require.Error(t, err)
	_, ok := g.Get(2)
	assert.False(t, ok)
}

func TestAttachCrossHostWarpZone(t *testing.T) {
	g := New()
	require.NoError(t, g.BuildLocal([]Display{rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)}))

	incoming := rectDisplay(2, 42, 100, 0, 100, 100)
	require.NoError(t, g.Attach([]Display{incoming}))

	assigned := g.Assigned()
	assert.ElementsMatch(t, []ids.Did{1}, assigned.System)
	assert.ElementsMatch(t, []ids.Did{2}, assigned.Client)

	zones := g.TouchingZones(1)
	require.Len(t, zones, 1)
	assert.Equal(t, geometry.Right, zones[0].Direction)
	assert.Equal(t, ids.Did(2), zones[0].To)
	assert.Equal(t, int32(0), zones[0].Start)
	assert.Equal(t, int32(100), zones[0].End)
}

func TestServerDisplayContaining(t *testing.T) {
	g := New()
	a := rectDisplay(1, ids.ServerCid, 0, 0, 100, 100)
	a.IsPrimary = true
	b := rectDisplay(2, ids.ServerCid, 100, 0, 100, 100)
	require.NoError(t, g.BuildLocal([]Display{a, b}))

	did, ok := g.ServerDisplayContaining(150, 50)
	require.True(t, ok)
	assert.Equal(t, ids.Did(2), did)

	_, ok = g.ServerDisplayContaining(9999, 9999)
	assert.False(t, ok)
}
