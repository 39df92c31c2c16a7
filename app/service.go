// Package app wires configuration, the order controller and its observers
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/orderbot/api/orders"
	"github.com/kilianp07/orderbot/config"
	"github.com/kilianp07/orderbot/core/clock"
	"github.com/kilianp07/orderbot/core/controller"
	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/journal"
	coremetrics "github.com/kilianp07/orderbot/core/metrics"
	coremon "github.com/kilianp07/orderbot/core/monitoring"
	"github.com/kilianp07/orderbot/infra/logger"
	"github.com/kilianp07/orderbot/infra/metrics"
	inframon "github.com/kilianp07/orderbot/infra/monitoring"
	"github.com/kilianp07/orderbot/infra/mqtt"
	"github.com/kilianp07/orderbot/internal/eventbus"
)

// drainTimeout bounds how long Close waits for the journal to catch up.
const drainTimeout = 2 * time.Second

type eventPublisher interface {
	Start(ctx context.Context, bus *eventbus.TypedBus[events.Event])
	Disconnect()
}

type commandListener interface {
	Start(ctx context.Context) error
	Disconnect()
}

// Constructors replaced in tests.
var (
	newPublisher = func(cfg mqtt.Config) (eventPublisher, error) {
		p, err := mqtt.NewEventPublisher(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	newCommandListener = func(cfg mqtt.Config, ctrl mqtt.Commander) (commandListener, error) {
		l, err := mqtt.NewCommandListener(cfg, ctrl)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	newController = controller.New
)

// Service orchestrates the controller, the event observers and the HTTP
// surfaces.
type Service struct {
	Controller *controller.Controller
	Journal    journal.Store

	cfg       *config.Config
	bus       *eventbus.TypedBus[events.Event]
	sink      coremetrics.MetricsSink
	publisher eventPublisher
	commands  commandListener
	api       *orders.Server
	log       logger.Logger

	cancel       context.CancelFunc
	recorderDone <-chan struct{}
}

// New creates a Service from the configuration. Nothing runs until Start.
func New(cfg *config.Config) (*Service, error) {
	return NewWithClock(cfg, clock.Real{})
}

// NewWithClock is New with an explicit clock.
func NewWithClock(cfg *config.Config, clk clock.Clock) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	store, err := journal.New(cfg.Journal)
	if err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var pub eventPublisher
	if cfg.MQTT.Enabled {
		pub, err = newPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}
	release := func() {
		if pub != nil {
			pub.Disconnect()
		}
		_ = store.Close()
	}

	bus := eventbus.NewTyped[events.Event]()
	ctrl, err := newController(controller.Config{
		FirstOrderID:   cfg.Orders.FirstID,
		ProcessingTime: cfg.Bot.ProcessingTime(),
	}, clk, bus, logger.New("orders"))
	if err != nil {
		release()
		return nil, err
	}

	var cmds commandListener
	if cfg.MQTT.Enabled && cfg.MQTT.CommandPrefix != "" {
		cmds, err = newCommandListener(cfg.MQTT, ctrl)
		if err != nil {
			release()
			return nil, fmt.Errorf("mqtt commands: %w", err)
		}
	}

	return &Service{
		Controller: ctrl,
		Journal:    store,
		cfg:        cfg,
		bus:        bus,
		sink:       sink,
		publisher:  pub,
		commands:   cmds,
		api:        orders.NewServer(ctrl, store, cfg.HTTP.Token, logger.New("api")),
		log:        logg,
	}, nil
}

// Start subscribes the observers, starts the Prometheus endpoint and the
// dispatcher polling loop. It returns immediately.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	// the journal outlives ctx so that Close can drain it
	s.recorderDone = journal.StartRecorder(context.WithoutCancel(ctx), s.bus, s.Journal, logger.New("journal"))
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		s.publisher.Start(ctx, s.bus)
	}
	if s.commands != nil {
		coremon.Go(func() {
			if err := s.commands.Start(ctx); err != nil {
				s.log.Errorf("mqtt commands: %v", err)
			}
		})
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		coremon.Go(func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}
	if interval := s.cfg.Dispatcher.PollInterval(); interval > 0 {
		coremon.Go(func() { s.Controller.Run(ctx, interval) })
	}
}

// Run starts the service and serves the HTTP API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)
	if s.cfg.HTTP.Addr == "" {
		<-ctx.Done()
		return nil
	}
	return s.api.Start(ctx, s.cfg.HTTP.Addr)
}

// Close stops the observers, drains the journal and releases resources.
func (s *Service) Close() error {
	s.bus.Close()
	if s.recorderDone != nil {
		select {
		case <-s.recorderDone:
		case <-time.After(drainTimeout):
			s.log.Warnf("journal did not drain within %s", drainTimeout)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.commands != nil {
		s.commands.Disconnect()
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	var errs []error
	if err := s.Journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("journal close: %w", err))
	}
	coremon.Flush(drainTimeout)
	return errors.Join(errs...)
}
