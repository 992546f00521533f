// Package server assembles the HTTP application: router, CORS policy,
// startup hooks and the root status endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/sailor-swift/internal/config"
	"github.com/benvon/sailor-swift/internal/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// ShutdownTimeout bounds graceful shutdown after the run context ends.
	ShutdownTimeout = 30 * time.Second

	statusMessage = "Sailor Swift API is running!"
)

// Info is the static application metadata.
type Info struct {
	Name        string
	Description string
	Version     string
}

// DefaultInfo describes the Sailor Swift API.
var DefaultInfo = Info{
	Name:        "Sailor Swift API",
	Description: "Authentication API with email, Google OAuth, and WalletConnect support",
	Version:     "1.0.0",
}

// Options configures an App.
type Options struct {
	// Environment is echoed by GET /. Nil renders as JSON null.
	Environment *string
	// CORSOrigins is the allow-list. Nil or empty uses config.DefaultCORSOrigin.
	CORSOrigins []string
	Logger      *zap.Logger
}

// RouteRegistrar is a self-contained set of routes.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

// StartupFunc is run once before the server accepts requests.
type StartupFunc func(ctx context.Context) error

type startupHook struct {
	name string
	fn   StartupFunc
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Message     string  `json:"message"`
	Version     string  `json:"version"`
	Environment *string `json:"environment"`
}

// App is the HTTP application.
type App struct {
	info        Info
	environment *string
	origins     []string
	router      *mux.Router
	logger      *zap.Logger

	hooks       []startupHook
	startupOnce sync.Once
	startupErr  error
}

// New builds an App with the root status endpoint registered.
func New(info Info, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{config.DefaultCORSOrigin}
	}

	var environment *string
	if opts.Environment != nil {
		env := *opts.Environment
		environment = &env
	}

	a := &App{
		info:        info,
		environment: environment,
		origins:     append([]string(nil), origins...),
		router:      mux.NewRouter(),
		logger:      logger,
	}
	a.router.HandleFunc("/", a.status).Methods("GET")
	return a
}

// CORSOrigins returns a copy of the effective allow-list.
func (a *App) CORSOrigins() []string {
	return append([]string(nil), a.origins...)
}

// Use adds router middleware. Middleware runs only for matched routes.
func (a *App) Use(mw ...mux.MiddlewareFunc) {
	a.router.Use(mw...)
}

// OnStartup registers a hook run by Startup. Hooks run in registration order.
func (a *App) OnStartup(name string, fn StartupFunc) {
	a.hooks = append(a.hooks, startupHook{name: name, fn: fn})
}

// Startup runs the startup hooks once per App. Later calls return the first result.
// The first failing hook stops the sequence.
func (a *App) Startup(ctx context.Context) error {
	a.startupOnce.Do(func() {
		for _, h := range a.hooks {
			start := time.Now()
			if err := h.fn(ctx); err != nil {
				a.logger.Error("startup_hook_failed", zap.String("hook", h.name), zap.Error(err))
				a.startupErr = fmt.Errorf("startup hook %s: %w", h.name, err)
				return
			}
			a.logger.Info("startup_hook_completed",
				zap.String("hook", h.name),
				zap.Duration("duration", time.Since(start)),
			)
		}
	})
	return a.startupErr
}

// Mount registers routes on the root router.
func (a *App) Mount(rr RouteRegistrar) {
	rr.RegisterRoutes(a.router)
}

// Handler returns the router wrapped in CORS. CORS is outermost so preflight
// requests are answered for every path, matched or not.
func (a *App) Handler() http.Handler {
	return middleware.CORS(a.origins)(a.router)
}

// Run runs startup, then serves on addr until ctx is cancelled and shuts down
// gracefully. A startup failure is returned before the listener opens.
func (a *App) Run(ctx context.Context, addr string) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           addr,
		Handler:        a.Handler(),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server_starting",
			zap.String("addr", addr),
			zap.String("version", a.info.Version),
			zap.Strings("cors_origins", a.origins),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server_exited")
	return nil
}

func (a *App) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Message:     statusMessage,
		Version:     a.info.Version,
		Environment: a.environment,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Error("failed_to_encode_status", zap.Error(err))
	}
}
