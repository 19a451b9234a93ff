// Package osinput adapts the host OS to the rest of warpdesk: monitor
// enumeration, the low-level input hook, pointer/keyboard synthesis, and
// the warp-gate overlay window (§6 collaborators). Every concrete adapter
// here wraps third-party OS libraries so the rest of the module only
// ever depends on the small interfaces.
package osinput

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/kbinani/screenshot"

	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
)

// Monitors reports the local OS's display geometry, translated into the
// unified plane.
type Monitors interface {
	Enumerate() ([]displaygraph.Display, error)
}

// ScreenshotMonitors enumerates monitors via kbinani/screenshot, the same
// library the teacher uses for client-side monitor detection. It supplies
// bounds and enumeration order only; scale/rotation/frequency are left at
// neutral defaults. Prefer GLFWMonitors where richer metadata is wanted.
type ScreenshotMonitors struct{}

// Enumerate returns one displaygraph.Display per active display, in
// screenshot's own enumeration order, with Owner left unset (the caller
// decides whether these are server- or client-owned).
func (ScreenshotMonitors) Enumerate() ([]displaygraph.Display, error) {
	n := screenshot.NumActiveDisplays()
	if n < 1 {
		return nil, fmt.Errorf("osinput: no active displays found")
	}

	out := make([]displaygraph.Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		out = append(out, displaygraph.Display{
			ID:          ids.Did(i + 1),
			Rect:        rectFromBounds(bounds),
			IsPrimary:   i == 0,
			ScaleFactor: 1,
			Rotation:    0,
			Frequency:   60,
		})
	}
	return out, nil
}

func rectFromBounds(b image.Rectangle) geometry.Rect {
	return geometry.Rect{X: int32(b.Min.X), Y: int32(b.Min.Y), Width: int32(b.Dx()), Height: int32(b.Dy())}
}

// GLFWMonitors enumerates monitors the same way ScreenshotMonitors does
// (bounds come from kbinani/screenshot, which agrees with the OS's own
// display ordering on every platform the teacher targets), then enriches
// each entry with glfw.Monitor metadata: content scale and the current
// video mode's refresh rate. glfw has no notion of monitor rotation — only
// orientation-agnostic physical size and video modes — so Rotation stays 0;
// that is a genuine gap in glfw's API, not an oversight here.
//
// Must be called from the main OS thread. It calls glfw.Init itself and
// calls glfw.Terminate before returning, which also tears down any glfw
// state (such as an open Overlay) created before the call.
type GLFWMonitors struct{}

func (GLFWMonitors) Enumerate() ([]displaygraph.Display, error) {
	base, err := (ScreenshotMonitors{}).Enumerate()
	if err != nil {
		return nil, err
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("osinput: glfw init for monitor metadata: %w", err)
	}
	defer glfw.Terminate()

	monitors := glfw.GetMonitors()
	for i := range base {
		if i >= len(monitors) {
			break
		}
		m := monitors[i]
		scaleX, _ := m.GetContentScale()
		if scaleX > 0 {
			base[i].ScaleFactor = scaleX
		}
		if mode := m.GetVideoMode(); mode != nil {
			base[i].Frequency = float32(mode.RefreshRate)
		}
	}
	return base, nil
}
