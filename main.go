package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
)

const dialTimeout = 10 * time.Second

// defaultMap is used when no -map is given
const defaultMap = `
##############################
#............................#
#..1......................2..#
#............................#
#ll......................#.ll#
####........#####........#####
#...........#####............#
#............................#
#.....##.............##......#
#.....##.............##......#
#............................#
#...........llllll...........#
##############################
`

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("shutting down...")
		cancel()
	}()

	switch cfg.Mode {
	case "serve":
		err = runServe(ctx, cfg)
	case "join":
		err = runJoin(ctx, cfg)
	default:
		err = runLocal(ctx, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", cfg.Mode, err)
	}
}

// parseConfig layers flags over the YAML file and .env overrides. Only
// flags set on the command line win.
func parseConfig(args []string) (Config, error) {
	def := DefaultConfig()
	fs := flag.NewFlagSet("lander", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	envFile := fs.String("env", ".env", "dotenv file with LANDER_* overrides")
	mode := fs.String("mode", def.Mode, "local, serve or join")
	addr := fs.String("addr", def.Addr, "relay listen (serve) or dial (join) address")
	spectate := fs.String("spectate", "", "spectator HTTP address (serve)")
	db := fs.String("db", "", "SQLite stats file (serve)")
	replay := fs.String("replay", "", "replay log directory (serve)")
	mapPath := fs.String("map", "", "terrain file (default: built-in map)")
	keys := fs.String("keys", def.Keys, "key scheme in join mode: wasd or arrows")
	logFile := fs.String("log", "", "log file for terminal modes (default: discard)")
	fps := fs.Int("fps", def.FPS, "simulation ticks per second")
	policy := fs.String("policy", string(def.ScorePolicy), "wall death scoring: clamp or negative")
	audio := fs.Bool("audio", def.Audio, "play sound effects")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*configPath, *envFile)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "addr":
			cfg.Addr = *addr
		case "spectate":
			cfg.Spectate = *spectate
		case "db":
			cfg.DB = *db
		case "replay":
			cfg.Replay = *replay
		case "map":
			cfg.Map = *mapPath
		case "keys":
			cfg.Keys = *keys
		case "log":
			cfg.LogFile = *logFile
		case "fps":
			cfg.FPS = *fps
		case "policy":
			cfg.ScorePolicy = ScorePolicy(*policy)
		case "audio":
			cfg.Audio = *audio
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadGrid(cfg Config) (*Grid, *TextureSet, error) {
	ts := DefaultTextures(cfg.TileSize)
	if cfg.Map == "" {
		g, err := ParseGrid(strings.NewReader(strings.TrimLeft(defaultMap, "\n")), ts)
		return g, ts, err
	}
	g, err := LoadGrid(cfg.Map, ts)
	return g, ts, err
}

// openScreen takes over the terminal; log output moves to cfg.LogFile
func openScreen(cfg Config) (tcell.Screen, func(), error) {
	var logOut io.WriteCloser
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		logOut = f
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	screen, err := tcell.NewScreen()
	if err == nil {
		err = screen.Init()
	}
	if err != nil {
		log.SetOutput(os.Stderr)
		if logOut != nil {
			logOut.Close()
		}
		return nil, nil, fmt.Errorf("init screen: %w", err)
	}
	return screen, func() {
		screen.Fini()
		log.SetOutput(os.Stderr)
		if logOut != nil {
			logOut.Close()
		}
	}, nil
}

func attachAudio(cfg Config, s *Session) func() {
	if !cfg.Audio {
		return func() {}
	}
	a := NewAudio()
	if err := a.Initialize(); err != nil {
		log.Printf("audio disabled: %v", err)
		return func() {}
	}
	s.SetEffectSink(a)
	return a.Close
}

// runLocal is the hot-seat mode: player 1 on wasd, player 2 on the arrows
func runLocal(ctx context.Context, cfg Config) error {
	grid, ts, err := loadGrid(cfg)
	if err != nil {
		return err
	}
	s, err := NewSession(cfg.Tuning, grid, ts)
	if err != nil {
		return err
	}

	screen, closeScreen, err := openScreen(cfg)
	if err != nil {
		return err
	}
	defer closeScreen()
	defer attachAudio(cfg, s)()

	wasd, _ := Bindings("wasd")
	arrows, _ := Bindings("arrows")
	term := NewTerminal(screen, [2]KeyBindings{wasd, arrows})
	go term.Listen()

	return NewLoop(s, term, term).Run(ctx)
}

// joinSession builds the local session for a relay peer: the server's
// spawn places our craft and the opponent slot follows relayed snapshots.
func joinSession(cfg Config, spawn Snapshot) (*Session, error) {
	if spawn.Player < 1 || spawn.Player > 2 {
		return nil, fmt.Errorf("relay assigned invalid player %d", spawn.Player)
	}
	grid, ts, err := loadGrid(cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(cfg.Tuning, grid, ts)
	if err != nil {
		return nil, err
	}
	s.Craft(spawn.Player).ApplySnapshot(spawn)
	s.SetRemote(Opponent(spawn.Player), true)
	return s, nil
}

// syncRemote publishes our craft and applies the opponent after each tick
func syncRemote(p *Pump, player int) TickHook {
	return func(s *Session, _ []KillEvent) {
		p.Publish(s.LocalSnapshot(player))
		if remote, ok := p.Remote(); ok {
			s.ApplyRemote(remote)
		}
	}
}

func runJoin(ctx context.Context, cfg Config) error {
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	client, err := DialRelay(dctx, cfg.Addr)
	cancel()
	if err != nil {
		return err
	}
	s, err := joinSession(cfg, client.Spawn)
	if err != nil {
		client.Close()
		return err
	}
	player := client.Spawn.Player

	screen, closeScreen, err := openScreen(cfg)
	if err != nil {
		client.Close()
		return err
	}
	defer closeScreen()
	defer attachAudio(cfg, s)()
	log.Printf("joined relay %s as player %d", cfg.Addr, player)

	var controls [2]KeyBindings
	controls[player-1], _ = Bindings(cfg.Keys)
	term := NewTerminal(screen, controls)
	go term.Listen()

	pctx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	pump := NewPump(client, time.Second/time.Duration(cfg.FPS))
	go pump.Run(pctx)
	go func() {
		<-pump.Done()
		if err := pump.Err(); err != nil {
			log.Printf("relay: connection lost: %v", err)
		}
	}()

	loop := NewLoop(s, term, term)
	loop.OnTick(syncRemote(pump, player))
	return loop.Run(ctx)
}

// advertiseAddr fills in the host of a listen address for the join QR code
func advertiseAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host != "" {
		return addr
	}
	if h, err := os.Hostname(); err == nil {
		host = h
	}
	return net.JoinHostPort(host, port)
}

// sessionSpawner hands out spawn-marker crafts from a private session
func sessionSpawner(t Tuning, g *Grid, ts *TextureSet) (SpawnFunc, error) {
	spawner, err := NewSession(t, g, ts)
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex
	return func(index int) (Snapshot, error) {
		mu.Lock()
		defer mu.Unlock()
		c, err := spawner.SpawnCraft(index + 1)
		if err != nil {
			return Snapshot{}, err
		}
		return c.Snapshot(), nil
	}, nil
}

// runServe hosts the relay plus the optional spectator, stats and replay
// sides until ctx ends.
func runServe(ctx context.Context, cfg Config) error {
	grid, ts, err := loadGrid(cfg)
	if err != nil {
		return err
	}
	spawn, err := sessionSpawner(cfg.Tuning, grid, ts)
	if err != nil {
		return err
	}
	relay := NewRelayServer(cfg.Addr, spawn)

	matchID := GenerateUUID()

	var db *DB
	var rec *Recorder
	if cfg.DB != "" {
		if db, err = OpenDB(cfg.DB); err != nil {
			return fmt.Errorf("open stats db: %w", err)
		}
		defer db.Close()
		if err := db.StartMatch(matchID, cfg.Addr, time.Now()); err != nil {
			return fmt.Errorf("start match: %w", err)
		}
		rec = NewRecorder(db, matchID)
		relay.AddObserver(rec)
	}

	var replay *ReplayWriter
	if cfg.Replay != "" {
		replay = NewReplayWriter(cfg.Replay, "relay", matchID)
		relay.AddObserver(replay)
	}

	var hub *Hub
	var server *http.Server
	if cfg.Spectate != "" {
		hub = NewHub(matchID, advertiseAddr(cfg.Addr), cfg.ScorePolicy, db)
		relay.AddObserver(hub)
		go hub.Run()
		server = &http.Server{Addr: cfg.Spectate, Handler: SetupRoutes(hub)}
		go func() {
			log.Printf("spectator server starting on %s", cfg.Spectate)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				log.Printf("spectator server: %v", err)
			}
		}()
	}

	if err := relay.Start(); err != nil {
		return err
	}
	log.Printf("relay listening on %s (match %s)", relay.Addr(), matchID)

	<-ctx.Done()

	if server != nil {
		server.Close()
	}
	relay.Close()
	if hub != nil {
		hub.Stop()
	}
	if rec != nil {
		rec.Stop()
	}
	if replay != nil {
		if err := replay.Close(); err != nil {
			log.Printf("replay close: %v", err)
		}
	}
	if db != nil {
		if err := db.EndMatch(matchID, time.Now()); err != nil {
			log.Printf("end match: %v", err)
		}
	}
	return nil
}
