package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsio "github.com/nats-io/nats.go"

	"arrsync/internal/cache"
	"arrsync/internal/config"
	"arrsync/internal/dispatch"
	"arrsync/internal/events"
	"arrsync/internal/fetch"
	"arrsync/internal/filter"
	"arrsync/internal/logging"
	"arrsync/internal/notify"
	"arrsync/internal/transport"
	natssource "arrsync/internal/transport/nats"
	wssource "arrsync/internal/transport/websocket"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Initialize Logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()
	logger := slog.Default()

	// 3. Build the pipeline: cache, fetcher, sinks, handler table
	store := cache.NewMemory(cache.WithStaleFunc(func(key cache.Key) {
		logger.Debug("cache entry stale", "key", key.String())
	}))

	client, err := fetch.NewClient(fetch.Config{
		BaseURL: cfg.Server.URL,
		APIKey:  cfg.Server.APIKey,
		Timeout: cfg.Server.Timeout.Std(),
	})
	if err != nil {
		logger.Error("failed to create API client", "error", err)
		os.Exit(1)
	}

	status := notify.NewStatus()
	sink := notify.NewLogSink(logger)
	jobs := dispatch.NewJobReconciler(store, client, logger)

	registry, err := dispatch.Table(dispatch.Deps{
		Cache:    store,
		Jobs:     jobs,
		Notifier: sink,
		Status:   status,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to build handler table", "error", err)
		os.Exit(1)
	}
	dispatcher := dispatch.NewDispatcher(registry, logger)

	flt, err := filter.New(cfg.Filter.Expression, logger)
	if err != nil {
		logger.Error("failed to compile event filter", "error", err)
		os.Exit(1)
	}

	// 4. Connect the transport and consume until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, cleanup, err := buildSource(cfg, logger)
	if err != nil {
		logger.Error("failed to create transport source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(ctx, source, flt, dispatcher, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down")
	case <-done:
		logger.Info("event stream ended")
	}

	cancel()
	<-done
	jobs.Wait()
	logger.Info("stopped")
}

// buildSource creates the configured transport source and a cleanup for
// any connection it owns.
func buildSource(cfg *config.Config, logger *slog.Logger) (transport.Source, func(), error) {
	switch cfg.Transport.Kind {
	case config.TransportNATS:
		nc, err := natsio.Connect(cfg.Transport.NATS.URL)
		if err != nil {
			return nil, nil, err
		}
		src, err := natssource.New(nc, natssource.Config{
			Subject: cfg.Transport.NATS.Subject,
			Buffer:  cfg.Transport.Buffer,
		}, logger)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return src, nc.Close, nil
	default:
		src := wssource.New(wssource.Config{
			URL:    cfg.Transport.Websocket.URL,
			APIKey: cfg.Server.APIKey,
			Buffer: cfg.Transport.Buffer,
		}, logger)
		return src, func() {}, nil
	}
}

// consume subscribes to the source and routes events through the filter
// into the dispatcher. A failed subscribe surfaces as a connect_error
// event so the connectivity handlers fire.
func consume(ctx context.Context, source transport.Source, flt *filter.Filter, dispatcher *dispatch.Dispatcher, logger *slog.Logger) {
	ch, err := source.Subscribe(ctx)
	if err != nil {
		logger.Warn("event feed subscribe failed", "error", err)
		dispatcher.Dispatch(ctx, events.Event{Key: events.KeyConnectError})
		return
	}

	for e := range ch {
		if !flt.Allow(e) {
			continue
		}
		dispatcher.Dispatch(ctx, e)
	}
}
