// Package transport implements §4.6: per-client send/receive halves over
// the framed wire protocol. Writes are synchronous and ordered; reads of
// the reverse ReturnSignal channel are polled non-blocking so they never
// stall the Router's hook callback.
package transport

import (
	"net"
	"sync"
	"time"

	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/logging"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// DefaultWriteTimeout bounds how long a send call may block on a slow
// client before the connection is considered dead, per §5's "Suspension
// points": a bounded send buffer so a slow client can't stall input
// capture indefinitely.
const DefaultWriteTimeout = 200 * time.Millisecond

// DefaultPollInterval is how often the reverse-signal thread checks for an
// inbound ReturnSignal on an idle connection.
const DefaultPollInterval = 5 * time.Millisecond

// Transport owns one client's network endpoint: a dedicated writer for
// InputEvent/WarpPoint frames and a non-blocking poll of the reverse
// ReturnSignal channel.
type Transport struct {
	Cid  ids.Cid
	conn net.Conn

	writeMu      sync.Mutex
	writeTimeout time.Duration

	closed   sync.Once
	closeErr error
}

// New wraps an established, handshake-verified connection.
func New(cid ids.Cid, conn net.Conn) *Transport {
	return &Transport{Cid: cid, conn: conn, writeTimeout: DefaultWriteTimeout}
}

// SendEvent serialises and writes an InputEvent frame. Writes on a single
// connection are never reordered across calls: writeMu guarantees it.
func (t *Transport) SendEvent(ev wire.InputEvent) error {
	return t.write(wire.EncodeEventFrame(ev))
}

// SendWarpPoint serialises and writes a WarpPoint frame.
func (t *Transport) SendWarpPoint(wp wire.WarpPoint) error {
	return t.write(wire.EncodeWarpPointFrame(wp, time.Now().UnixNano()))
}

func (t *Transport) write(payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return wderrors.Wrap(wderrors.WriteBlocked, "setting write deadline", err)
	}
	if err := wire.WriteFrame(t.conn, payload); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			_ = t.Close()
			return wderrors.Wrap(wderrors.WriteBlocked, "client did not accept write within timeout", err)
		}
		_ = t.Close()
		return err
	}
	return nil
}

// PollReturnSignal performs one non-blocking check for an inbound
// ReturnSignal frame. It returns (true, nil) if one was received, (false,
// nil) if nothing was waiting, and a non-nil error if the connection
// failed outright (distinct from an ordinary "would block" timeout).
func (t *Transport) PollReturnSignal() (bool, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(DefaultPollInterval)); err != nil {
		return false, err
	}
	payload, err := wire.ReadFrame(t.conn)
	if err != nil {
		if ne, ok := unwrapNetErr(err); ok && ne.Timeout() {
			return false, nil
		}
		_ = t.Close()
		return false, err
	}
	if payload != nil {
		logging.Debugf("transport: client %d sent unexpected non-empty ReturnSignal payload (%d bytes), ignoring contents", t.Cid, len(payload))
	}
	return true, nil
}

func unwrapNetErr(err error) (net.Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for e := err; e != nil; {
		if ne, ok := e.(net.Error); ok {
			return ne, true
		}
		u, ok := e.(unwrapper)
		if !ok {
			return nil, false
		}
		e = u.Unwrap()
	}
	return nil, false
}

// Close closes the underlying connection exactly once.
func (t *Transport) Close() error {
	t.closed.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
