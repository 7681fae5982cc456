// Package devserver serves a shader project over HTTP and, in development
// mode, tells open browser tabs to reload or redraw when files change.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shaderbox/shaderbox/internal/watch"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Root is the directory to serve and, in development mode, to watch.
	Root string

	// DeployID enables deploy mode when non-empty.
	DeployID string

	// Debounce is the per-file change delay; zero means watch.DefaultDelay.
	Debounce time.Duration

	Logger *zap.Logger
}

// Server is the development HTTP server.
type Server struct {
	opts     Options
	files    fs.FS
	logger   *zap.Logger
	changes  *watch.Broadcaster
	upgrader websocket.Upgrader
	metrics  *metrics

	mu      sync.Mutex
	clients map[string]*client
}

// New returns a Server over opts.Root.
func New(opts Options) *Server {
	return NewFS(opts, os.DirFS(opts.Root))
}

// NewFS returns a Server reading files from files instead of opts.Root.
// opts.Root is still the directory watched in development mode.
func NewFS(opts Options, files fs.FS) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		opts:    opts,
		files:   files,
		logger:  logger.Named("devserver"),
		changes: watch.NewBroadcaster(),
		metrics: newMetrics(),
		clients: make(map[string]*client),
	}
}

// Changes is the broadcaster dev sockets listen on. The watcher started by
// Serve feeds it; tests and embedders may notify it directly.
func (s *Server) Changes() *watch.Broadcaster {
	return s.changes
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dev-socket", s.serveSocket)
	mux.HandleFunc("/fs/", s.metrics.instrument(s.serveFS))
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/", s.metrics.instrument(s.serveStatic))
	return mux
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. In
// development mode it also watches Options.Root.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.opts.DeployID == "" {
		w, err := watch.New(s.opts.Root, s.changes, s.logger)
		if err != nil {
			ln.Close()
			return err
		}
		defer w.Close()
		if s.opts.Debounce > 0 {
			w.Delay = s.opts.Debounce
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Watcher stopped", zap.Error(err))
			}
		}()
	} else {
		s.logger.Info("Deploy mode, not watching", zap.String("deploy_id", s.opts.DeployID))
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("Listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	s.closeClients()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
