// Package httpserver exposes session and transient data, plus a health
// endpoint backed by internal/monitor, over a small echo API.
package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/onsetgo/correntropy/internal/datastore"
	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/onsetgo/correntropy/internal/monitor"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionListCacheKey = "sessions"

// Server wraps an echo instance wired to a Store and a resource Monitor.
type Server struct {
	echo  *echo.Echo
	store *datastore.Store
	mon   *monitor.Monitor
	// cache holds the /sessions listing for a few seconds so a dashboard
	// polling at 1s intervals doesn't hit the datastore on every request.
	cache *cache.Cache
}

// New builds a Server; call Start to listen. metrics, if non-nil, is
// registered against a dedicated registry and served at /metrics (e.g.
// internal/engine.Registry()'s session counters).
func New(store *datastore.Store, mon *monitor.Monitor, metrics ...prometheus.Collector) *Server {
	s := &Server{echo: echo.New(), store: store, mon: mon, cache: cache.New(5*time.Second, 30*time.Second)}
	s.echo.HideBanner = true

	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/sessions", s.handleListSessions)
	s.echo.GET("/sessions/:id/transients", s.handleListTransients)

	if len(metrics) > 0 {
		registry := prometheus.NewRegistry()
		for _, c := range metrics {
			registry.MustRegister(c)
		}
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return s
}

// Start listens on addr, blocking until the server stops or errors.
func (s *Server) Start(addr string) error {
	logging.ForService("httpserver").Debug("listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) handleHealth(c echo.Context) error {
	snap := s.mon.Last()
	status := http.StatusOK
	degraded := monitor.DefaultThresholds().Degraded(snap)
	if degraded {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"degraded": degraded,
		"cpu":      snap.CPUPercent,
		"mem":      snap.MemPercent,
		"disk":     snap.DiskPercent,
	})
}

func (s *Server) handleListSessions(c echo.Context) error {
	if cached, ok := s.cache.Get(sessionListCacheKey); ok {
		return c.JSON(http.StatusOK, cached)
	}

	sessions, err := s.store.ListSessions()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	s.cache.SetDefault(sessionListCacheKey, sessions)
	return c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleListTransients(c echo.Context) error {
	id := c.Param("id")
	records, err := s.store.ListTransients(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}
