package wire

import (
	"sort"

	"github.com/warpdesk/warpdesk/wderrors"
)

// WireDisplay is the on-wire shape of a Display (§3): identity, ownership,
// and geometry, plus the diagnostic-only fields. WarpZones are never
// serialised — they're derived by the receiving side's display graph.
type WireDisplay struct {
	ID          uint32
	Owner       uint32
	X, Y        int32
	Width       int32
	Height      int32
	IsPrimary   bool
	ScaleFactor float32
	Rotation    float32
	Frequency   float32
}

func encodeDisplay(w *byteWriter, d WireDisplay) {
	w.u32(d.ID)
	w.u32(d.Owner)
	w.i32(d.X)
	w.i32(d.Y)
	w.i32(d.Width)
	w.i32(d.Height)
	w.b(d.IsPrimary)
	w.f32(d.ScaleFactor)
	w.f32(d.Rotation)
	w.f32(d.Frequency)
}

func decodeDisplay(r *byteReader) (WireDisplay, error) {
	var d WireDisplay
	var err error
	if d.ID, err = r.u32(); err != nil {
		return d, err
	}
	if d.Owner, err = r.u32(); err != nil {
		return d, err
	}
	if d.X, err = r.i32(); err != nil {
		return d, err
	}
	if d.Y, err = r.i32(); err != nil {
		return d, err
	}
	if d.Width, err = r.i32(); err != nil {
		return d, err
	}
	if d.Height, err = r.i32(); err != nil {
		return d, err
	}
	if d.IsPrimary, err = r.boolean(); err != nil {
		return d, err
	}
	if d.ScaleFactor, err = r.f32(); err != nil {
		return d, err
	}
	if d.Rotation, err = r.f32(); err != nil {
		return d, err
	}
	if d.Frequency, err = r.f32(); err != nil {
		return d, err
	}
	return d, nil
}

// Hello is the first frame, client->server.
type Hello struct {
	Cid uint32
}

func EncodeHello(m Hello) []byte {
	w := &byteWriter{}
	w.u32(m.Cid)
	return w.bytes()
}

func DecodeHello(payload []byte) (Hello, error) {
	r := newByteReader(payload)
	cid, err := r.u32()
	return Hello{Cid: cid}, err
}

// DisplayCount is server->client; 0 means "rejected".
func EncodeDisplayCount(n uint32) []byte {
	w := &byteWriter{}
	w.u32(n)
	return w.bytes()
}

func DecodeDisplayCount(payload []byte) (uint32, error) {
	return newByteReader(payload).u32()
}

// DisplayMap is server->client: the current known layout, keyed by Did.
func EncodeDisplayMap(m map[uint32]WireDisplay) []byte {
	w := &byteWriter{}
	w.u32(uint32(len(m)))
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		encodeDisplay(w, m[k])
	}
	return w.bytes()
}

func DecodeDisplayMap(payload []byte) (map[uint32]WireDisplay, error) {
	r := newByteReader(payload)
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]WireDisplay, n)
	for i := uint32(0); i < n; i++ {
		d, err := decodeDisplay(r)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	return out, nil
}

// ClientDisplays is client->server: the client's own displays, already
// translated into unified-plane coordinates.
func EncodeClientDisplays(displays []WireDisplay) []byte {
	w := &byteWriter{}
	w.u32(uint32(len(displays)))
	for _, d := range displays {
		encodeDisplay(w, d)
	}
	return w.bytes()
}

func DecodeClientDisplays(payload []byte) ([]WireDisplay, error) {
	r := newByteReader(payload)
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	out := make([]WireDisplay, 0, n)
	for i := uint32(0); i < n; i++ {
		d, err := decodeDisplay(r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// HandshakeStatus is server->client, the final verdict.
func EncodeHandshakeStatus(ok bool) []byte {
	w := &byteWriter{}
	w.b(ok)
	return w.bytes()
}

func DecodeHandshakeStatus(payload []byte) (bool, error) {
	return newByteReader(payload).boolean()
}

// WarpPoint is server->client: local coordinates to warp the cursor to.
type WarpPoint struct {
	X, Y int32
}

func EncodeWarpPoint(p WarpPoint) []byte {
	w := &byteWriter{}
	w.i32(p.X)
	w.i32(p.Y)
	return w.bytes()
}

func DecodeWarpPoint(payload []byte) (WarpPoint, error) {
	r := newByteReader(payload)
	x, err := r.i32()
	if err != nil {
		return WarpPoint{}, err
	}
	y, err := r.i32()
	if err != nil {
		return WarpPoint{}, err
	}
	return WarpPoint{X: x, Y: y}, nil
}

// EventKind tags the variant of a post-handshake InputEvent/WarpPoint
// frame. Per §9's recommended redesign, every post-handshake frame carries
// one of these as its leading byte instead of relying on the receiver's
// "awaiting warp" state to disambiguate — see DESIGN.md for the rationale.
type EventKind byte

const (
	EventWarpPoint EventKind = iota
	EventKeyPress
	EventKeyRelease
	EventButtonPress
	EventButtonRelease
	EventMouseMove
	EventWheel
)

// InputEvent is server->client: a tagged union of the six input samples,
// carrying the Router's acceptance timestamp.
type InputEvent struct {
	Kind      EventKind
	Timestamp int64
	Key       uint32 // KeyPress / KeyRelease
	Button    byte   // ButtonPress / ButtonRelease
	X, Y      int32  // MouseMove
	Dx, Dy    int32  // Wheel
}

// EncodeEventFrame encodes an InputEvent behind a single leading
// discriminant byte (its Kind), the unit of what actually crosses the wire
// after handshake. WarpPoint frames are built by EncodeWarpPointFrame.
func EncodeEventFrame(ev InputEvent) []byte {
	w := &byteWriter{}
	w.byte(byte(ev.Kind))
	w.i64(ev.Timestamp)
	switch ev.Kind {
	case EventKeyPress, EventKeyRelease:
		w.u32(ev.Key)
	case EventButtonPress, EventButtonRelease:
		w.byte(ev.Button)
	case EventMouseMove:
		w.i32(ev.X)
		w.i32(ev.Y)
	case EventWheel:
		w.i32(ev.Dx)
		w.i32(ev.Dy)
	}
	return w.bytes()
}

func EncodeWarpPointFrame(p WarpPoint, timestamp int64) []byte {
	w := &byteWriter{}
	w.byte(byte(EventWarpPoint))
	w.i64(timestamp)
	w.i32(p.X)
	w.i32(p.Y)
	return w.bytes()
}

// DecodeEventFrame decodes a post-handshake server->client frame, returning
// either a populated InputEvent (isWarp=false) or a WarpPoint
// (isWarp=true), or a non-nil err if the frame cannot be decoded.
func DecodeEventFrame(payload []byte) (ev InputEvent, wp WarpPoint, isWarp bool, err error) {
	r := newByteReader(payload)
	kindByte, err := r.byteVal()
	if err != nil {
		return InputEvent{}, WarpPoint{}, false, err
	}
	kind := EventKind(kindByte)
	ts, err := r.i64()
	if err != nil {
		return InputEvent{}, WarpPoint{}, false, err
	}

	switch kind {
	case EventWarpPoint:
		x, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		y, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		return InputEvent{}, WarpPoint{X: x, Y: y}, true, nil
	case EventKeyPress, EventKeyRelease:
		key, err := r.u32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		return InputEvent{Kind: kind, Timestamp: ts, Key: key}, WarpPoint{}, false, nil
	case EventButtonPress, EventButtonRelease:
		button, err := r.byteVal()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		return InputEvent{Kind: kind, Timestamp: ts, Button: button}, WarpPoint{}, false, nil
	case EventMouseMove:
		x, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		y, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		return InputEvent{Kind: kind, Timestamp: ts, X: x, Y: y}, WarpPoint{}, false, nil
	case EventWheel:
		dx, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		dy, err := r.i32()
		if err != nil {
			return InputEvent{}, WarpPoint{}, false, err
		}
		return InputEvent{Kind: kind, Timestamp: ts, Dx: dx, Dy: dy}, WarpPoint{}, false, nil
	default:
		return InputEvent{}, WarpPoint{}, false, wderrors.New(wderrors.Malformed, "unknown event kind")
	}
}

// ReturnSignal is client->server: a zero-length payload announcing that
// the pointer has crossed back into a server-owned region.
func EncodeReturnSignal() []byte { return nil }
