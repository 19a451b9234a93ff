package wire

import (
	"encoding/binary"
	"math"

	"github.com/warpdesk/warpdesk/wderrors"
)

// byteWriter is a tiny deterministic binary encoder: fixed-width integers,
// length-prefixed strings, and length-prefixed sequences, matching §4.3's
// requirement that every implementation produce identical bytes for the
// same value.
type byteWriter struct {
	buf []byte
}

func (w *byteWriter) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *byteWriter) i32(v int32) { w.u32(uint32(v)) }

func (w *byteWriter) i64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *byteWriter) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *byteWriter) b(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *byteWriter) byte(v byte) { w.buf = append(w.buf, v) }

func (w *byteWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *byteWriter) bytes() []byte { return w.buf }

// byteReader is the matching deterministic binary decoder. Every read
// checks remaining length and returns a Malformed error rather than
// panicking on short input.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader { return &byteReader{buf: buf} }

func (r *byteReader) need(n int) error {
	if len(r.buf)-r.pos < n {
		return wderrors.New(wderrors.Malformed, "unexpected end of payload")
	}
	return nil
}

func (r *byteReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *byteReader) i64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return int64(v), nil
}

func (r *byteReader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *byteReader) boolean() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

func (r *byteReader) byteVal() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *byteReader) done() bool { return r.pos >= len(r.buf) }
