package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/warpdesk/warpdesk/clientrt"
	"github.com/warpdesk/warpdesk/config"
	"github.com/warpdesk/warpdesk/displaygraph"
	"github.com/warpdesk/warpdesk/handshake"
	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/logging"
	"github.com/warpdesk/warpdesk/osinput"
	"github.com/warpdesk/warpdesk/router"
	"github.com/warpdesk/warpdesk/transport"
	"github.com/warpdesk/warpdesk/wire"
)

func main() {
	isServer := flag.Bool("server", false, "Run as server")
	address := flag.String("address", "localhost:8000", "Address to listen on (server) or connect to (client)")
	configPath := flag.String("config", "warpdesk.yaml", "Path to the logical config file")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		logging.SetLevel(log.DebugLevel)
	}

	if *isServer {
		if err := runServer(*address, *configPath); err != nil {
			logging.Errorf("server: %v", err)
			os.Exit(1)
		}
		return
	}
	if err := runClient(*address, *configPath); err != nil {
		logging.Errorf("client: %v", err)
		os.Exit(1)
	}
}

func runServer(address, configPath string) error {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	systemDisplays, err := osinput.GLFWMonitors{}.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerating displays: %w", err)
	}

	graph := displaygraph.New()
	if err := graph.BuildLocal(systemDisplays); err != nil {
		return fmt.Errorf("building local display graph: %w", err)
	}

	registry := transport.NewRegistry()
	synth := osinput.NewSynthesizer()
	r, err := router.New(graph, registry, synth, osinput.PointerPosition)
	if err != nil {
		return fmt.Errorf("starting router: %w", err)
	}

	overlay, err := osinput.NewOverlay()
	if err != nil {
		return fmt.Errorf("creating warp-gate overlay: %w", err)
	}
	defer overlay.Close()
	r.SetWarpHooks(overlay.Raise, overlay.Lower)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	defer listener.Close()
	logging.Infof("server: listening on %s with %d local displays", address, graph.Count())

	go acceptLoop(listener, graph, cfg, registry, r)

	hook := osinput.NewGlobalHook()
	if err := hook.Start(func(ev wire.InputEvent) bool {
		passThrough, err := r.HandleEvent(ev)
		if err != nil {
			logging.Debugf("router: dropping event: %v", err)
			return true
		}
		return passThrough
	}); err != nil {
		return fmt.Errorf("starting input hook: %w", err)
	}
	defer hook.Stop()

	waitForSignal()
	return nil
}

func acceptLoop(listener net.Listener, graph *displaygraph.Graph, cfg config.ServerConfig, registry *transport.Registry, r *router.Router) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			logging.Warnf("server: accept failed: %v", err)
			return
		}
		go func() {
			rec, err := handshake.ServerAccept(conn, graph, cfg)
			if err != nil {
				logging.Infof("server: handshake failed: %v", err)
				return
			}
			registry.Add(transport.New(rec.Cid, rec.Conn))
			monitorDisconnect(rec, registry, r)
		}()
	}
}

// monitorDisconnect polls ReturnSignal for one client's connection until it
// disconnects, then cleans up its transport and, if it was the current
// owner, reclaims the cursor via the router's fallback path (§5).
func monitorDisconnect(rec handshake.ClientRecord, registry *transport.Registry, r *router.Router) {
	t, ok := registry.Get(rec.Cid)
	if !ok {
		return
	}
	for {
		got, err := t.PollReturnSignal()
		if err != nil {
			break
		}
		if got {
			r.HandleReturn(osinput.PointerPosition)
		}
	}
	registry.Remove(rec.Cid)
	r.HandleClientDisconnect(rec.Cid)
	logging.Infof("server: client cid=%d disconnected", rec.Cid)
}

func runClient(address, configPath string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return fmt.Errorf("loading client config: %w", err)
	}
	cid := ids.Cid(cfg.Cid)
	if cid == 0 {
		cid = ids.NewCid()
		cfg.Cid = uint32(cid)
		if err := config.SaveClient(configPath, cfg); err != nil {
			logging.Warnf("client: failed to persist new cid: %v", err)
		}
	}

	systemDisplays, err := osinput.GLFWMonitors{}.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerating displays: %w", err)
	}
	own := placeClientDisplays(systemDisplays, cfg)

	conn, err := net.Dial("tcp", address)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", address, err)
	}
	defer conn.Close()

	layout, err := handshake.ClientDial(conn, cid, toWireDisplays(own))
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	logging.Infof("client: attached, server reports %d displays", len(layout.Displays))

	synth := osinput.NewSynthesizer()
	rt := clientrt.New(conn, synth, own, layout.Displays)

	done := make(chan error, 1)
	go func() { done <- rt.Run(osinput.PointerPosition) }()

	select {
	case err := <-done:
		return err
	case <-signalChan():
		rt.Stop()
		return nil
	}
}

// placeClientDisplays applies any previously remembered placement to the
// locally-enumerated monitors, falling back to their raw OS offsets on
// first run (§6 "Persistent state").
func placeClientDisplays(systemDisplays []displaygraph.Display, cfg config.ClientConfig) []displaygraph.Display {
	remembered := make(map[uint32]config.Placement, len(cfg.Placements))
	for _, p := range cfg.Placements {
		remembered[p.DisplayID] = p
	}

	out := make([]displaygraph.Display, len(systemDisplays))
	for i, d := range systemDisplays {
		if p, ok := remembered[uint32(d.ID)]; ok {
			d.Rect.X, d.Rect.Y = p.X, p.Y
			d.Rect.Width, d.Rect.Height = p.Width, p.Height
			d.IsPrimary = p.IsPrimary
		}
		out[i] = d
	}
	return out
}

func toWireDisplays(displays []displaygraph.Display) []wire.WireDisplay {
	out := make([]wire.WireDisplay, len(displays))
	for i, d := range displays {
		out[i] = wire.WireDisplay{
			ID:          uint32(d.ID),
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
	return out
}

func waitForSignal() {
	<-signalChan()
}

func signalChan() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}
