// Package app composes the server: configuration, logging router,
// collaborators, room engine, and the HTTP listener.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"

	game "github.com/nastosinka/oops-trap-sub000"
	servernet "github.com/nastosinka/oops-trap-sub000/internal/net"
	"github.com/nastosinka/oops-trap-sub000/levels"
	"github.com/nastosinka/oops-trap-sub000/lobby"
	"github.com/nastosinka/oops-trap-sub000/logging"
	loggingSinks "github.com/nastosinka/oops-trap-sub000/logging/sinks"
	"github.com/nastosinka/oops-trap-sub000/stats"
)

// Run starts the server and blocks until the listener fails or ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig(os.Getenv("TRAPRUN_CONFIG"))
	if err != nil {
		return err
	}

	router, err := buildLoggingRouter(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	levelProvider, err := levels.Load(cfg.LevelsDir)
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	log.Printf("loaded %d level(s) from %s", len(levelProvider.MapIDs()), cfg.LevelsDir)

	lobbyService := lobby.NewService()
	if cfg.LobbySeed != "" {
		if err := lobbyService.LoadFile(cfg.LobbySeed); err != nil {
			return fmt.Errorf("seed lobby: %w", err)
		}
	}

	// Stats persistence degrades to a no-op sink: gameplay never depends
	// on the database being reachable.
	var sink game.StatsSink = game.NopStatsSink{}
	if cfg.StatsPath != "" {
		store, err := stats.Open(cfg.StatsPath)
		if err != nil {
			log.Printf("stats store disabled: %v", err)
		} else {
			defer store.Close()
			sink = store
		}
	}

	hubCfg := game.DefaultHubConfig()
	hubCfg.Levels = levelProvider
	hubCfg.Lobby = lobbyService
	hubCfg.Stats = sink
	hubCfg.Publisher = router
	hub := game.NewHub(hubCfg)

	stop := make(chan struct{})
	go hub.RunSweeper(stop)
	defer close(stop)

	handler := servernet.NewHandler(hub, servernet.HandlerConfig{Publisher: router})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func buildLoggingRouter(cfg LoggingConfig) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	if len(cfg.Sinks) > 0 {
		logCfg.EnabledSinks = cfg.Sinks
	}
	logCfg.Fields = map[string]any{"runId": uuid.NewString()}

	var named []logging.NamedSink
	if logCfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)})
	}
	if logCfg.HasSink("json") {
		path := cfg.JSONPath
		if path == "" {
			path = "server-events.ndjson"
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json log: %w", err)
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(file, logCfg.JSON.FlushInterval)})
	}

	return logging.NewRouter(logCfg, logging.SystemClock{}, nil, named), nil
}
