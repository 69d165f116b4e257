package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/scheduler"
	"TradeSim/internal/service/feed"
	"TradeSim/pkg/config"
	xhttp "TradeSim/pkg/http"
	pkgkafka "TradeSim/pkg/kafka"
	applogger "TradeSim/pkg/logger"
)

// App owns the full lifecycle: storage init, background jobs, the optional
// Kafka ticks consumer and the HTTP server.
type App struct {
	cfg          *config.Config
	l            *applogger.Logger
	store        domrepo.MarketStore
	source       domrepo.PriceSource
	pub          domrepo.TradePublisher
	consumer     *pkgkafka.Consumer
	ticksHandler pkgkafka.MessageHandler
	sched        *scheduler.Scheduler
	httpHandler  xhttp.Handler

	httpServer *xhttp.Server
}

// New creates an App with all dependencies injected.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	store domrepo.MarketStore,
	source domrepo.PriceSource,
	pub domrepo.TradePublisher,
	consumer *pkgkafka.Consumer,
	ticksHandler pkgkafka.MessageHandler,
	sched *scheduler.Scheduler,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:          cfg,
		l:            l,
		store:        store,
		source:       source,
		pub:          pub,
		consumer:     consumer,
		ticksHandler: ticksHandler,
		sched:        sched,
		httpHandler:  httpHandler,
	}
}

// Run starts everything and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		return err
	}

	// websocket feeds keep their own read loop; start it before the jobs
	if ws, ok := a.source.(*feed.WSSource); ok {
		if err := ws.Start(ctx); err != nil {
			a.l.Warn("websocket feed start failed, retrying in background", applogger.Error(err))
		}
	}

	if a.consumer != nil && a.ticksHandler != nil {
		a.consumer.RegisterHandler(a.ticksHandler)
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.l.Info("kafka ticks consumer started", applogger.String("topic", a.ticksHandler.Topic()))
	}

	a.sched.Start()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.l.Info("trading simulator running",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Storage.Backend),
		applogger.String("feed", a.cfg.Feed.Source),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.sched.Stop(ctx); err != nil {
		a.l.Warn("scheduler stop error", applogger.Error(err))
	}
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.l.Warn("feed close error", applogger.Error(err))
		}
	}
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.l.Warn("store close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
