package app

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/kilianp07/jobgate/api/admin"
	"github.com/kilianp07/jobgate/config"
	"github.com/kilianp07/jobgate/core/audit"
	"github.com/kilianp07/jobgate/core/catalog"
	"github.com/kilianp07/jobgate/core/dispatch"
	"github.com/kilianp07/jobgate/core/events"
	coremetrics "github.com/kilianp07/jobgate/core/metrics"
	coremon "github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/infra/logger"
	"github.com/kilianp07/jobgate/infra/metrics"
	"github.com/kilianp07/jobgate/infra/monitoring"
	"github.com/kilianp07/jobgate/infra/mqtt"
	"github.com/kilianp07/jobgate/infra/udp"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

// EventBuffer is the per-subscriber buffer of the controller event bus.
const EventBuffer = 256

// Service wires the transport, the dispatch controller and the optional
// audit, metrics, MQTT and admin components.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	bus       *eventbus.Bus[events.Event]
	ctrl      *dispatch.Controller
	transport *udp.Transport
	store     audit.Store
	sink      coremetrics.MetricsSink
	bridge    *mqtt.Bridge
	// pipes are closed when the bus subscribers have drained.
	pipes []<-chan struct{}
}

// New creates a Service from the configuration. The UDP socket is bound
// here so that a bad address fails before Run.
func New(cfg *config.Config) (svc *Service, err error) {
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format == "console")
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	cat, err := catalog.Build(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	s := &Service{cfg: cfg, log: logg, bus: eventbus.New[events.Event](EventBuffer)}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if s.store, err = audit.Open(cfg.Audit); err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if s.transport, err = udp.Listen(cfg.Server.UDP(), logger.New("udp")); err != nil {
		return nil, err
	}
	if s.ctrl, err = dispatch.NewController(cfg.Dispatch, cat, s.transport, logger.New("dispatch")); err != nil {
		return nil, fmt.Errorf("dispatch controller: %w", err)
	}
	s.ctrl.SetEventBus(s.bus)
	if cfg.MQTT.Enabled {
		if s.bridge, err = mqtt.NewBridge(cfg.MQTT, s.ctrl, logger.New("mqtt")); err != nil {
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
	}
	logg.Infow("service configured", map[string]any{
		"mode":    string(cfg.Dispatch.Mode),
		"catalog": cat.Len(),
		"audit":   cfg.Audit.Backend,
		"mqtt":    cfg.MQTT.Enabled,
	})
	return s, nil
}

// Addr returns the bound UDP address.
func (s *Service) Addr() netip.AddrPort { return s.transport.Addr() }

// Controller exposes the dispatch controller.
func (s *Service) Controller() *dispatch.Controller { return s.ctrl }

// Store exposes the audit store.
func (s *Service) Store() audit.Store { return s.store }

// Run starts every component and blocks until ctx is canceled. On return
// the controller has stopped and the transport no longer reads.
func (s *Service) Run(ctx context.Context) error {
	// Subscribers outlive ctx so they can drain events published during
	// shutdown; they stop when the bus is closed.
	pipeCtx := context.WithoutCancel(ctx)
	s.pipes = append(s.pipes,
		audit.StartRecorder(pipeCtx, s.bus, s.store, string(s.ctrl.Mode()), logger.New("audit")),
		metrics.StartEventCollector(pipeCtx, s.bus, s.sink, logger.New("metrics")),
	)
	if s.bridge != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.bridge.Run(pipeCtx, s.bus)
		}()
		s.pipes = append(s.pipes, done)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctrlErr := make(chan error, 1)
	go func() { ctrlErr <- s.ctrl.Run(runCtx) }()
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.transport.Serve(runCtx, s.ctrl) }()
	if addr := s.cfg.Server.AdminAddr; addr != "" {
		mux := admin.NewMux(admin.Deps{Store: s.store, Status: s.ctrl, Token: s.cfg.Server.APIToken})
		go func() {
			if err := admin.Serve(runCtx, addr, mux, logger.New("admin")); err != nil {
				s.log.Errorf("admin server: %v", err)
				coremon.CaptureException(err, map[string]string{"component": "admin"})
			}
		}()
	}

	var err error
	served := false
	select {
	case <-ctx.Done():
	case err = <-ctrlErr:
	case err = <-serveErr:
		served = true
	}
	cancel()
	<-s.ctrl.Done()
	if !served {
		if serr := <-serveErr; serr != nil && err == nil {
			err = serr
		}
	}
	s.log.Infof("service stopped")
	return err
}

// Close releases the socket, flushes the event subscribers and closes the
// stores and sinks. It is safe to call after a failed New.
func (s *Service) Close() error {
	var errs []error
	if s.transport != nil {
		errs = append(errs, s.transport.Close())
	}
	s.bus.Close()
	for _, done := range s.pipes {
		<-done
	}
	if s.bridge != nil {
		s.bridge.Disconnect()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
