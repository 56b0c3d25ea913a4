package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/pihole-card-core/internal/card"
	"github.com/nerrad567/pihole-card-core/internal/hass"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/config"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by infrastructure clients reported on /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SetupFunc receives every newly assembled setup. setup is nil when no
// device is configured.
type SetupFunc func(setup *card.SetupRecord)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Card      card.Config
	Logger    *logging.Logger
	Store     *hass.Store
	Commander card.Commander
	Checks    map[string]HealthChecker
	DB        DBStatsProvider // optional, reported on /metrics
	Version   string
}

// Server is the HTTP API server for the Pi-hole card.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	secCfg  config.SecurityConfig
	card    card.Config
	logger  *logging.Logger
	store   *hass.Store
	actions *card.Actions
	checks  map[string]HealthChecker
	db      DBStatsProvider
	version string
	server  *http.Server
	hub     *Hub
	cancel  context.CancelFunc // cancels background goroutines on Close()

	startTime time.Time

	// changed coalesces store notifications; one pending signal is enough.
	changed   chan struct{}
	onSetup   []SetupFunc
	onSetupMu sync.RWMutex

	// published is the encoding of the last setup pushed out. Owned by the
	// watcher goroutine after New returns.
	published []byte
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called. It registers with the
// store immediately so changes made before Start are not lost.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if deps.Commander == nil {
		return nil, fmt.Errorf("commander is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		secCfg:  deps.Security,
		card:    deps.Card,
		logger:  deps.Logger,
		store:   deps.Store,
		actions: card.NewActions(deps.Commander),
		checks:  deps.Checks,
		db:      deps.DB,
		version: deps.Version,
		hub:     NewHub(deps.Logger),
		changed: make(chan struct{}, 1),

		startTime: time.Now(),
	}

	setup, _ := s.assemble()
	s.published = encodeSetup(setup)

	s.store.OnChange(func(uint64) {
		select {
		case s.changed <- struct{}{}:
		default:
		}
	})

	return s, nil
}

// OnSetupChanged registers fn to run after each re-assembly triggered by a
// store change. Callbacks run on the server's watcher goroutine.
func (s *Server) OnSetupChanged(fn SetupFunc) {
	s.onSetupMu.Lock()
	s.onSetup = append(s.onSetup, fn)
	s.onSetupMu.Unlock()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and the setup watcher, then launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	go s.watchSetup(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.Timeouts.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      s.cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       s.cfg.Timeouts.IdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// assemble builds the setup from the current snapshot.
func (s *Server) assemble() (*card.SetupRecord, bool) {
	return card.AssembleSetup(s.store.Snapshot(), &s.card)
}

// watchSetup re-assembles the setup after store changes until ctx is done.
func (s *Server) watchSetup(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.changed:
			s.publishSetup()
		}
	}
}

// publishSetup broadcasts the current setup and runs the change callbacks.
// Nothing is published when the setup encodes the same as the last one,
// which is the case for writes to entities outside the configured devices.
func (s *Server) publishSetup() {
	setup, _ := s.assemble()
	encoded := encodeSetup(setup)
	if encoded != nil && bytes.Equal(encoded, s.published) {
		return
	}
	s.published = encoded

	s.hub.Broadcast(ChannelSetupChanged, newSetupResponse(setup))

	s.onSetupMu.RLock()
	callbacks := make([]SetupFunc, len(s.onSetup))
	copy(callbacks, s.onSetup)
	s.onSetupMu.RUnlock()

	for _, fn := range callbacks {
		fn(setup)
	}
}

// encodeSetup returns the JSON form used to detect unchanged setups, or nil
// if it cannot be encoded.
func encodeSetup(setup *card.SetupRecord) []byte {
	data, err := json.Marshal(setup)
	if err != nil {
		return nil
	}
	return data
}
