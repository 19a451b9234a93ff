package osinput

import (
	"github.com/go-vgo/robotgo"

	"github.com/warpdesk/warpdesk/router"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// Synthesizer injects input into the local OS: the client-side collaborator
// that turns a received WarpPoint/InputEvent back into a real pointer move
// or keystroke. Wraps go-vgo/robotgo, the synthesis half of the same
// hook/synthesis pair the retrieval pack's other KVM-style tool uses.
type Synthesizer struct{}

// NewSynthesizer returns a ready-to-use Synthesizer.
func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

// MoveTo places the pointer at an absolute local coordinate, used on
// WarpPoint receipt (§4.7).
func (Synthesizer) MoveTo(x, y int32) {
	robotgo.Move(int(x), int(y))
}

// Deliver injects ev into the local OS. It implements router.LocalSink so
// the server side can drive it directly; the client side calls it too for
// mirrored InputEvent frames (§4.7).
func (s Synthesizer) Deliver(ev wire.InputEvent) error {
	switch ev.Kind {
	case wire.EventMouseMove:
		robotgo.Move(int(ev.X), int(ev.Y))
	case wire.EventKeyPress:
		return robotgo.KeyToggle(keyName(ev.Key), "down")
	case wire.EventKeyRelease:
		return robotgo.KeyToggle(keyName(ev.Key), "up")
	case wire.EventButtonPress:
		robotgo.Toggle(buttonName(ev.Button), "down")
	case wire.EventButtonRelease:
		robotgo.Toggle(buttonName(ev.Button), "up")
	case wire.EventWheel:
		robotgo.Scroll(int(ev.Dx), int(ev.Dy))
	default:
		return wderrors.New(wderrors.Malformed, "unknown event kind in synthesis")
	}
	return nil
}

var _ router.LocalSink = Synthesizer{}

// keyName maps a raw OS keycode to robotgo's key-name vocabulary. warpdesk
// carries the raw platform keycode across the wire (§3 GLOSSARY) rather
// than normalising to a shared keysym set, so the receiving client must be
// running the same OS family as the sender for key identity to line up —
// the same constraint the original implementation's rdev-based capture
// carried.
func keyName(code uint32) string {
	return robotgo.Keycode2Keychar(int(code), []string{})
}

func buttonName(b byte) string {
	switch b {
	case 1:
		return "right"
	case 2:
		return "center"
	default:
		return "left"
	}
}
