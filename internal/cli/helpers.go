package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/simplebot"
	"github.com/aretw0/simplebot/internal/config"
	"github.com/aretw0/simplebot/internal/logging"
	httpadapter "github.com/aretw0/simplebot/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger on stderr, so stdout stays
// free for replies. debug forces the debug level.
func NewLogger(cfg *config.Config, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.Format(cfg.Log.Format))
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// NewServer builds the HTTP server hosting the bot.
func NewServer(cfg *config.Config, svc *Services) *http.Server {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(svc.Logger),
		httpadapter.WithVersion(simplebot.Version),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, httpadapter.WithMetrics(promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{})))
	}

	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpadapter.NewHandler(svc.Bot, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
