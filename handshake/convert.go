package handshake

import (
	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/geometry"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wire"
)

func toWireDisplay(d displaygraph.Display) wire.WireDisplay {
	return wire.WireDisplay{
		ID:          uint32(d.ID),
		Owner:       uint32(d.Owner),
		X:           d.Rect.X,
		Y:           d.Rect.Y,
		Width:       d.Rect.Width,
		Height:      d.Rect.Height,
		IsPrimary:   d.IsPrimary,
		ScaleFactor: d.ScaleFactor,
		Rotation:    d.Rotation,
		Frequency:   d.Frequency,
	}
}

func toWireDisplayMap(m map[ids.Did]displaygraph.Display) map[uint32]wire.WireDisplay {
	out := make(map[uint32]wire.WireDisplay, len(m))
	for _, d := range m {
		wd := toWireDisplay(d)
		out[wd.ID] = wd
	}
	return out
}

func fromWireDisplay(d wire.WireDisplay, owner ids.Cid) displaygraph.Display {
	return displaygraph.Display{
		ID:          ids.Did(d.ID),
		Owner:       owner,
		Rect:        geometry.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height},
		IsPrimary:   d.IsPrimary,
		ScaleFactor: d.ScaleFactor,
		Rotation:    d.Rotation,
		Frequency:   d.Frequency,
	}
}
