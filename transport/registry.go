package transport

import (
	"sync"

	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wderrors"
	"github.com/warpdesk/warpdesk/wire"
)

// Registry tracks one Transport per connected client and implements
// router.Dispatcher by looking up the target Cid on every call. This is
// the only place that needs to know about more than one client at a time.
type Registry struct {
	mu    sync.RWMutex
	byCid map[ids.Cid]*Transport
}

// NewRegistry returns an empty client registry.
func NewRegistry() *Registry {
	return &Registry{byCid: make(map[ids.Cid]*Transport)}
}

// Add registers t under its Cid, replacing any prior transport for that
// client (a reconnect without an intervening disconnect is treated as
// superseding the old session, whose connection is closed).
func (reg *Registry) Add(t *Transport) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if old, ok := reg.byCid[t.Cid]; ok && old != t {
		_ = old.Close()
	}
	reg.byCid[t.Cid] = t
}

// Remove drops cid from the registry and closes its transport, if present.
func (reg *Registry) Remove(cid ids.Cid) {
	reg.mu.Lock()
	t, ok := reg.byCid[cid]
	delete(reg.byCid, cid)
	reg.mu.Unlock()
	if ok {
		_ = t.Close()
	}
}

// Get returns the transport registered for cid, if any.
func (reg *Registry) Get(cid ids.Cid) (*Transport, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	t, ok := reg.byCid[cid]
	return t, ok
}

// SendEvent implements router.Dispatcher.
func (reg *Registry) SendEvent(to ids.Cid, ev wire.InputEvent) error {
	t, ok := reg.Get(to)
	if !ok {
		return wderrors.New(wderrors.Desync, "no transport registered for target client")
	}
	return t.SendEvent(ev)
}

// SendWarpPoint implements router.Dispatcher.
func (reg *Registry) SendWarpPoint(to ids.Cid, wp wire.WarpPoint) error {
	t, ok := reg.Get(to)
	if !ok {
		return wderrors.New(wderrors.Desync, "no transport registered for target client")
	}
	return t.SendWarpPoint(wp)
}
