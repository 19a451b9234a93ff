// Package wire implements the protocol codec: §4.3 of the specification.
// Every logical message is serialised to a deterministic binary payload and
// framed as [u32 big-endian length][payload]. There is no fragmentation
// beyond this framing and no multiplexing — one logical stream per
// connection, matching the teacher's own length-delimited packet framing
// in protocol/protocol.go, generalised to a fixed deterministic encoding
// instead of binary.Write's platform-dependent struct layout.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/warpdesk/warpdesk/wderrors"
)

// MaxPayloadSize is the cap on a single frame's payload, per §6.
const MaxPayloadSize = 1 << 20 // 1 MiB

// WriteFrame writes payload as one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return wderrors.New(wderrors.Oversized, "payload exceeds 1 MiB cap")
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return wderrors.Wrap(wderrors.Truncated, "writing frame length", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return wderrors.Wrap(wderrors.Truncated, "writing frame payload", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and returns its payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, wderrors.Wrap(wderrors.Truncated, "reading frame length", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxPayloadSize {
		return nil, wderrors.New(wderrors.Oversized, "frame length exceeds 1 MiB cap")
	}
	if n == 0 {
		return nil, nil
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, wderrors.Wrap(wderrors.Truncated, "reading frame payload", err)
	}
	return payload, nil
}
