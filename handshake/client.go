package handshake

import (
	"net"

	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// ServerLayout is what the client learns from the server during the
// handshake: the full display map as of the moment it attached.
type ServerLayout struct {
	Displays map[uint32]wire.WireDisplay
}

// ClientDial runs the client side of the handshake sequence over an
// already-connected socket. myDisplays are the client's own monitors,
// already translated into unified-plane coordinates per its saved or
// interactively-chosen placement (§4.4 step 5).
func ClientDial(conn net.Conn, cid ids.Cid, myDisplays []wire.WireDisplay) (ServerLayout, error) {
	if err := wire.WriteFrame(conn, wire.EncodeHello(wire.Hello{Cid: uint32(cid)})); err != nil {
		return ServerLayout{}, err
	}

	countPayload, err := wire.ReadFrame(conn)
	if err != nil {
		return ServerLayout{}, err
	}
	count, err := wire.DecodeDisplayCount(countPayload)
	if err != nil {
		return ServerLayout{}, err
	}
	if count == 0 {
		return ServerLayout{}, wderrors.New(wderrors.Unauthorised, "server rejected this client's Cid")
	}

	mapPayload, err := wire.ReadFrame(conn)
	if err != nil {
		return ServerLayout{}, err
	}
	displays, err := wire.DecodeDisplayMap(mapPayload)
	if err != nil {
		return ServerLayout{}, err
	}

	if err := wire.WriteFrame(conn, wire.EncodeClientDisplays(myDisplays)); err != nil {
		return ServerLayout{}, err
	}

	statusPayload, err := wire.ReadFrame(conn)
	if err != nil {
		return ServerLayout{}, err
	}
	ok, err := wire.DecodeHandshakeStatus(statusPayload)
	if err != nil {
		return ServerLayout{}, err
	}
	if !ok {
		return ServerLayout{}, wderrors.New(wderrors.LayoutInvalid, "server rejected this client's geometry")
	}

	return ServerLayout{Displays: displays}, nil
}
