package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fundingboard/config"
	"fundingboard/internal/poller"
	"fundingboard/internal/state"
	"fundingboard/internal/view"
	"fundingboard/logger"
)

//go:embed templates/*.tmpl
var embeddedFS embed.FS

// Server hosts the Gin-powered funding dashboard. It renders the current view
// state as HTML, exposes the same state as JSON, and pushes updates to
// connected pages over a websocket whenever the state changes.
type Server struct {
	cfg               config.DashboardConfig
	log               *logger.Log
	store             *state.Store
	poller            *poller.Poller
	history           *historyStore
	hub               *wsHub
	listenerID        state.ListenerID
	httpServer        *http.Server
	refreshIntervalMs int
}

// NewServer constructs a dashboard server when the dashboard feature is
// enabled. When the dashboard is disabled the returned server will be nil.
func NewServer(cfg config.DashboardConfig, refreshInterval time.Duration, store *state.Store, p *poller.Poller, log *logger.Log) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cfg.Address = normalizeAddress(cfg.Address)

	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 200
	}
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Second
	}

	history := newHistoryStore(cfg.HistorySize)
	if p != nil {
		p.SetRecorder(history.record)
	}

	hub := newWSHub(log)

	server := &Server{
		cfg:               cfg,
		log:               log,
		store:             store,
		poller:            p,
		history:           history,
		hub:               hub,
		refreshIntervalMs: int(refreshInterval / time.Millisecond),
	}

	server.listenerID = store.Subscribe(func(v state.View) {
		hub.broadcast(view.BuildPage(v))
	})

	return server, nil
}

// Run starts the dashboard HTTP server and blocks until the provided context
// is cancelled or the underlying HTTP server exits with an error.
func (s *Server) Run(ctx context.Context, appName string) error {
	if s == nil {
		return nil
	}

	defer s.cleanup()

	router, err := s.buildRouter(appName)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    s.cfg.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) cleanup() {
	if s.listenerID != 0 {
		s.store.Unsubscribe(s.listenerID)
	}
	if s.history != nil {
		s.history.close()
	}
	if s.hub != nil {
		s.hub.close()
	}
}

// Address reports the network address the dashboard server listens on.
func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter(appName string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	// No proxies are trusted; client IPs come straight from the socket.
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	tmpl := template.Must(template.New("dashboard").ParseFS(embeddedFS, "templates/index.tmpl"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(c *gin.Context) {
		page := view.BuildPage(s.store.View())
		c.HTML(http.StatusOK, "index.tmpl", gin.H{
			"AppName":           appName,
			"RefreshIntervalMs": s.refreshIntervalMs,
			"Page":              page,
		})
	})

	router.GET("/api/snapshot", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.store.View())
	})

	router.GET("/api/page", func(c *gin.Context) {
		c.JSON(http.StatusOK, view.BuildPage(s.store.View()))
	})

	router.POST("/api/refresh", func(c *gin.Context) {
		if s.poller == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poller not running"})
			return
		}
		if err := s.poller.Refresh(c.Request.Context()); err != nil {
			if errors.Is(err, poller.ErrRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s.store.View())
	})

	router.PUT("/api/autorefresh", func(c *gin.Context) {
		var body struct {
			Enabled *bool `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"enabled\": bool}"})
			return
		}
		if s.poller != nil {
			s.poller.SetEnabled(*body.Enabled)
		} else {
			s.store.SetAutoRefresh(*body.Enabled)
		}
		c.JSON(http.StatusOK, s.store.View())
	})

	router.GET("/api/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fetches": s.history.snapshot()})
	})

	router.GET("/ws", func(c *gin.Context) {
		s.hub.handle(c.Writer, c.Request)
	})

	return router, nil
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		return "0.0.0.0:8080"
	}

	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil {
			if host := parsed.Host; host != "" {
				addr = host
			} else if parsed.Opaque != "" {
				addr = parsed.Opaque
			}
		}
	}

	if strings.HasPrefix(addr, ":") {
		if len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
			return "0.0.0.0" + addr
		}
	}

	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}

	if ip := net.ParseIP(addr); ip != nil {
		return net.JoinHostPort(addr, "8080")
	}

	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "8080")
	}

	return addr
}
