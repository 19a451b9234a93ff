// warpctl is a small diagnostic client: it performs the handshake against
// a running warpdesk server and prints the resulting display layout, then
// exits. It never injects input — a stripped-down stand-in for the full
// client runtime, in the same spirit as the teacher's own simplified
// debug client, generalised to warpdesk's handshake instead of its video
// pipeline.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/warpdesk/warpdesk/handshake"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/osinput"
	"github.com/warpdesk/warpdesk/wire"
)

func main() {
	address := flag.String("address", "localhost:8000", "Server address")
	cid := flag.Uint("cid", 0, "Cid to present; 0 generates a fresh one")
	flag.Parse()

	clientCid := ids.Cid(*cid)
	if clientCid == 0 {
		clientCid = ids.NewCid()
	}

	fmt.Printf("warpctl: connecting to %s as cid=%d\n", *address, clientCid)

	conn, err := net.Dial("tcp", *address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warpctl: dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	displays, err := osinput.GLFWMonitors{}.Enumerate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warpctl: enumerating local displays: %v\n", err)
		os.Exit(1)
	}

	myDisplays := make([]wire.WireDisplay, len(displays))
	for i, d := range displays {
		myDisplays[i] = wire.WireDisplay{
			ID: uint32(d.ID), X: d.Rect.X, Y: d.Rect.Y,
			Width: d.Rect.Width, Height: d.Rect.Height, IsPrimary: d.IsPrimary,
		}
	}

	layout, err := handshake.ClientDial(conn, clientCid, myDisplays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warpctl: handshake failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("warpctl: attached, server reports %d displays:\n", len(layout.Displays))
	for _, d := range layout.Displays {
		fmt.Printf("  did=%d owner=%d rect=(%d,%d,%d,%d) primary=%v\n",
			d.ID, d.Owner, d.X, d.Y, d.Width, d.Height, d.IsPrimary)
	}
}
