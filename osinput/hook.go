package osinput

import (
	"time"

	hook "github.com/robotn/gohook"

	"github.com/warpdesk/warpdesk/wire"
)

// Hook delivers every low-level input sample the OS reports, regardless of
// which display currently owns the cursor. onEvent decides, per sample,
// whether the native event should still reach the local OS: it returns
// true to pass the event through untouched, false to suppress it (the
// Router has already forwarded or will forward it to a remote owner
// instead). This is the suppression contract of §1/§6 — input is
// "captured at the source" and never double-delivered to a host that
// doesn't currently own the cursor. Implemented over robotn/gohook, the
// same OS-hook library the retrieval pack's other KVM-style tool reaches
// for in place of a platform-specific raw-input binding.
type Hook interface {
	Start(onEvent func(wire.InputEvent) bool) error
	Stop()
}

// GlobalHook wraps gohook's process-wide event channel.
//
// gohook's public Start()/event-channel API is listen-only: it has no
// per-event "consume" call that blocks the native OS from also delivering
// the sample (unlike, say, a low-level SetWindowsHookEx callback that can
// return non-zero to swallow an event). So the onEvent return value is
// honoured at the Router/Synthesizer boundary - a suppressed sample is
// never re-injected or forwarded a second time - but GlobalHook cannot
// itself stop the OS from also delivering the original, unsuppressed
// event to whatever window has focus locally. See DESIGN.md.
type GlobalHook struct {
	stopCh chan struct{}
}

// NewGlobalHook returns an unstarted hook.
func NewGlobalHook() *GlobalHook {
	return &GlobalHook{}
}

// Start begins listening for OS input events and invokes onEvent for each
// one, timestamped when the hook translates the native event. Start
// returns once the listener goroutine is running; it does not block. The
// onEvent return value is discarded: per the GlobalHook doc comment,
// gohook itself has no mechanism to act on it.
func (h *GlobalHook) Start(onEvent func(wire.InputEvent) bool) error {
	evChan := hook.Start()
	h.stopCh = make(chan struct{})

	go func() {
		for {
			select {
			case <-h.stopCh:
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				if wdEv, isInput := translate(ev); isInput {
					onEvent(wdEv)
				}
			}
		}
	}()
	return nil
}

// Stop ends the hook and releases the OS-level listener.
func (h *GlobalHook) Stop() {
	hook.End()
	if h.stopCh != nil {
		close(h.stopCh)
	}
}

func translate(ev hook.Event) (wire.InputEvent, bool) {
	now := time.Now().UnixNano()
	switch ev.Kind {
	case hook.KeyDown:
		return wire.InputEvent{Kind: wire.EventKeyPress, Timestamp: now, Key: uint32(ev.Rawcode)}, true
	case hook.KeyUp:
		return wire.InputEvent{Kind: wire.EventKeyRelease, Timestamp: now, Key: uint32(ev.Rawcode)}, true
	case hook.MouseDown:
		return wire.InputEvent{Kind: wire.EventButtonPress, Timestamp: now, Button: byte(ev.Button)}, true
	case hook.MouseUp:
		return wire.InputEvent{Kind: wire.EventButtonRelease, Timestamp: now, Button: byte(ev.Button)}, true
	case hook.MouseMove, hook.MouseDrag:
		return wire.InputEvent{Kind: wire.EventMouseMove, Timestamp: now, X: int32(ev.X), Y: int32(ev.Y)}, true
	case hook.MouseWheel:
		return wire.InputEvent{Kind: wire.EventWheel, Timestamp: now, Dx: 0, Dy: int32(ev.Rotation)}, true
	default:
		return wire.InputEvent{}, false
	}
}
