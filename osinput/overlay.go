package osinput

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/warpdesk/warpdesk/logging"
)

// Overlay is the optional warp-gate window (§6): a 1x1 transparent,
// undecorated, always-on-top window the server raises during a warp to
// absorb residual native pointer feedback. It is a side-effect helper —
// the Router's state never depends on it; ReturnSignal alone clears
// warping.
//
// Unlike the teacher's per-monitor video windows (client/display.go,
// recreated on every frame-loop restart), this window is created exactly
// once at startup and only shown/hidden thereafter, closing the teacher's
// own TODO about window lifecycle churn.
type Overlay struct {
	window *glfw.Window
}

// NewOverlay must be called from the main OS thread. It initialises glfw
// itself if it isn't already running.
func NewOverlay() (*Overlay, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("osinput: glfw init for overlay: %w", err)
	}

	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.Floating, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)

	window, err := glfw.CreateWindow(1, 1, "warpdesk-gate", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("osinput: creating overlay window: %w", err)
	}
	return &Overlay{window: window}, nil
}

// Raise moves the overlay to (x, y), focuses it to steal the native
// pointer, and shows it, for the duration of one warp.
func (o *Overlay) Raise(x, y int32) {
	o.window.SetPos(int(x), int(y))
	o.window.Show()
	o.window.Focus()
	glfw.PollEvents()
}

// Lower hides the overlay again once the warp has completed.
func (o *Overlay) Lower() {
	o.window.Hide()
	glfw.PollEvents()
}

// Close destroys the overlay window and tears down glfw at shutdown.
func (o *Overlay) Close() {
	logging.Debug("osinput: destroying overlay window")
	o.window.Destroy()
	glfw.Terminate()
}
