// Package handshake implements §4.4: the fixed per-connection negotiation
// sequence that authorises a client against the allow-list, exchanges
// display geometry, and attaches the client's displays to the unified
// graph.
package handshake

import (
	"net"

	"github.com/warpdesk/warpdesk/config"
	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/logging"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// ClientRecord is what the server keeps per attached client, per §4.4 step
// 7 ("S records {cid -> Client{tcp, ip, did-set}}").
type ClientRecord struct {
	Cid  ids.Cid
	Conn net.Conn
	IP   string
	Dids []ids.Did
}

// ServerAccept runs the server side of the handshake sequence over a
// freshly accepted connection. Any step failure closes conn and returns an
// error; per §4.4 this is never fatal to the server, only to that one
// peer.
func ServerAccept(conn net.Conn, graph *displaygraph.Graph, allowList config.ServerConfig) (ClientRecord, error) {
	allowed := allowList.AllowListSet()

	helloPayload, err := wire.ReadFrame(conn)
	if err != nil {
		conn.Close()
		return ClientRecord{}, err
	}
	hello, err := wire.DecodeHello(helloPayload)
	if err != nil {
		conn.Close()
		return ClientRecord{}, err
	}
	cid := ids.Cid(hello.Cid)

	if _, ok := allowed[cid]; !ok {
		_ = wire.WriteFrame(conn, wire.EncodeDisplayCount(0))
		conn.Close()
		logging.Infof("handshake: rejected unauthorised client cid=%d", cid)
		return ClientRecord{}, wderrors.New(wderrors.Unauthorised, "client cid is not in the allow-list")
	}

	snapshot := graph.Snapshot()
	if err := wire.WriteFrame(conn, wire.EncodeDisplayCount(uint32(len(snapshot)))); err != nil {
		conn.Close()
		return ClientRecord{}, err
	}
	if err := wire.WriteFrame(conn, wire.EncodeDisplayMap(toWireDisplayMap(snapshot))); err != nil {
		conn.Close()
		return ClientRecord{}, err
	}

	clientDisplaysPayload, err := wire.ReadFrame(conn)
	if err != nil {
		conn.Close()
		return ClientRecord{}, err
	}
	wireDisplays, err := wire.DecodeClientDisplays(clientDisplaysPayload)
	if err != nil {
		conn.Close()
		return ClientRecord{}, err
	}

	if remembered, ok := allowList.RememberedPlacement(cid); ok {
		if err := checkDesync(remembered, wireDisplays); err != nil {
			_ = wire.WriteFrame(conn, wire.EncodeHandshakeStatus(false))
			conn.Close()
			return ClientRecord{}, err
		}
	}

	incoming := make([]displaygraph.Display, 0, len(wireDisplays))
	dids := make([]ids.Did, 0, len(wireDisplays))
	for _, wd := range wireDisplays {
		incoming = append(incoming, fromWireDisplay(wd, cid))
		dids = append(dids, ids.Did(wd.ID))
	}

	if err := graph.Attach(incoming); err != nil {
		_ = wire.WriteFrame(conn, wire.EncodeHandshakeStatus(false))
		conn.Close()
		return ClientRecord{}, err
	}

	if err := wire.WriteFrame(conn, wire.EncodeHandshakeStatus(true)); err != nil {
		conn.Close()
		return ClientRecord{}, err
	}

	ip := ""
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		ip = addr.IP.String()
	}

	logging.Infof("handshake: attached client cid=%d displays=%d ip=%s", cid, len(dids), ip)
	return ClientRecord{Cid: cid, Conn: conn, IP: ip, Dids: dids}, nil
}

// checkDesync fails the handshake if the client's submitted geometry for a
// display id it has presented before no longer matches the server's
// recorded view (§4.4 "the server verifies that names/ids match ... on
// mismatch the handshake fails").
func checkDesync(remembered []config.Placement, submitted []wire.WireDisplay) error {
	byID := make(map[uint32]config.Placement, len(remembered))
	for _, p := range remembered {
		byID[p.DisplayID] = p
	}
	for _, wd := range submitted {
		p, ok := byID[wd.ID]
		if !ok {
			continue
		}
		if p.X != wd.X || p.Y != wd.Y || p.Width != wd.Width || p.Height != wd.Height {
			return wderrors.New(wderrors.Desync, "client geometry does not match the server's recorded placement")
		}
	}
	return nil
}
