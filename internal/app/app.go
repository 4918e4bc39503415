// Package app wires configuration, logging, storage, and the session
// into a runnable server.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"run-and-leap/server/internal/config"
	"run-and-leap/server/internal/journal"
	"run-and-leap/server/internal/session"
	"run-and-leap/server/internal/sim"
	"run-and-leap/server/internal/storage"
	"run-and-leap/server/internal/telemetry"
	"run-and-leap/server/logging"
	loggingSinks "run-and-leap/server/logging/sinks"
)

// Options configure a server run.
type Options struct {
	ConfigPath string
	Logger     telemetry.Logger
}

// Run starts a session and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	telemetryLogger := opts.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.Logging.Sinks
	if cfg.Logging.JSONPath != "" {
		logConfig.JSON.FilePath = cfg.Logging.JSONPath
	}

	sinks, closeSinks, err := buildSinks(logConfig)
	if err != nil {
		return err
	}
	defer closeSinks()

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			telemetryLogger.Printf("close logging router: %v", cerr)
		}
	}()

	metrics := logging.NewMetrics()

	world := sim.NewWorld(cfg.SimRules(), sim.Deps{
		Metrics:   metrics,
		Clock:     logging.SystemClock{},
		Publisher: router,
	})
	loop := sim.NewLoop(world, cfg.LoopConfig())

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := session.New(ctx, session.Deps{
		World:            world,
		Loop:             loop,
		Journal:          journal.New(cfg.Journal.KeyframeCapacity, time.Duration(cfg.Journal.MaxAgeSeconds)*time.Second),
		Store:            store,
		Publisher:        router,
		Metrics:          telemetry.WrapMetrics(metrics),
		Clock:            logging.SystemClock{},
		KeyframeInterval: uint64(cfg.Journal.KeyframeIntervalTicks),
		HeartbeatTimeout: cfg.HeartbeatTimeout(),
	})
	if err != nil {
		return err
	}

	telemetryLogger.Printf("session %s started, tick rate %d", sess.ID, cfg.Simulation.TickRate)
	go runDemoDriver(ctx, sess, loop.TickInterval(), telemetryLogger)
	sess.Run(ctx)

	if err := sess.Close(context.Background()); err != nil {
		telemetryLogger.Printf("persist session state: %v", err)
	}
	telemetryLogger.Printf("session %s stopped at tick %d", sess.ID, sess.CurrentTick())
	return nil
}

func buildSinks(cfg logging.Config) ([]logging.NamedSink, func(), error) {
	var sinks []logging.NamedSink
	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			sinks = append(sinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console),
			})
		case "json":
			path := cfg.JSON.FilePath
			if path == "" {
				path = "events.ndjson"
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("open json sink %s: %w", path, err)
			}
			files = append(files, file)
			sinks = append(sinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewJSONSink(file, cfg.JSON.FlushInterval),
			})
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown logging sink %q", name)
		}
	}
	return sinks, closeAll, nil
}
