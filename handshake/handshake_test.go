package handshake

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpdesk/warpdesk/config"
	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wire"
)

func serverGraph(t *testing.T) *displaygraph.Graph {
	t.Helper()
	g := displaygraph.New()
	a := displaygraph.Display{ID: 1, Owner: ids.ServerCid, Rect: geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}, IsPrimary: true}
	require.NoError(t, g.BuildLocal([]displaygraph.Display{a}))
	return g
}

func TestHandshakeSuccess(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	g := serverGraph(t)
	allow := config.ServerConfig{AllowList: []uint32{42}}

	serverDone := make(chan struct {
		rec ClientRecord
		err error
	}, 1)
	go func() {
		rec, err := ServerAccept(serverConn, g, allow)
		serverDone <- struct {
			rec ClientRecord
			err error
		}{rec, err}
	}()

	myDisplays := []wire.WireDisplay{{ID: 2, X: 100, Y: 0, Width: 100, Height: 100}}
	layout, err := ClientDial(clientConn, ids.Cid(42), myDisplays)
	require.NoError(t, err)
	assert.Len(t, layout.Displays, 1)

	result := <-serverDone
	require.NoError(t, result.err)
	assert.Equal(t, ids.Cid(42), result.rec.Cid)
	assert.Equal(t, []ids.Did{2}, result.rec.Dids)

	_, ok := g.Get(2)
	assert.True(t, ok)
}

func TestHandshakeRejectsUnauthorised(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	g := serverGraph(t)
	allow := config.ServerConfig{AllowList: []uint32{42}}

	serverErr := make(chan error, 1)
	go func() {
		_, err := ServerAccept(serverConn, g, allow)
		serverErr <- err
	}()

	_, err := ClientDial(clientConn, ids.Cid(7), nil)
	assert.Error(t, err)
	assert.Error(t, <-serverErr)
}

func TestHandshakeRejectsOverlap(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	g := serverGraph(t)
	allow := config.ServerConfig{AllowList: []uint32{42}}

	serverErr := make(chan error, 1)
	go func() {
		_, err := ServerAccept(serverConn, g, allow)
		serverErr <- err
	}()

	overlapping := []wire.WireDisplay{{ID: 2, X: 50, Y: 50, Width: 100, Height: 100}}
	_, err := ClientDial(clientConn, ids.Cid(42), overlapping)
	assert.Error(t, err)
	assert.Error(t, <-serverErr)

	_, ok := g.Get(2)
	assert.False(t, ok)
}

func TestHandshakeRejectsDesync(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	g := serverGraph(t)
	allow := config.ServerConfig{
		AllowList: []uint32{42},
		Placement: map[uint32][]config.Placement{
			42: {{DisplayID: 2, X: 999, Y: 999, Width: 100, Height: 100}},
		},
	}

	serverErr := make(chan error, 1)
	go func() {
		_, err := ServerAccept(serverConn, g, allow)
		serverErr <- err
	}()

	mismatched := []wire.WireDisplay{{ID: 2, X: 100, Y: 0, Width: 100, Height: 100}}
	_, err := ClientDial(clientConn, ids.Cid(42), mismatched)
	assert.Error(t, err)
	assert.Error(t, <-serverErr)
}
