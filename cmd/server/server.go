// Command server renders Mandelbrot images for websocket clients.
//
// Clients send JSON render requests to /ws and receive PNG images back.
// The preset regions are listed at /regions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mandel "github.com/marben/mandelbrot"
	"github.com/marben/mandelbrot/wsrender"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		workers   = flag.Int("workers", 0, "render goroutines per job; 0 uses all CPUs")
		maxPixels = flag.Int("max-pixels", wsrender.DefaultMaxPixels, "largest width*height a job may request")
		origins   = flag.String("origins", "", "comma-separated host patterns allowed to connect cross-origin")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Every connection renders on this machine; jobs from separate
	// connections run concurrently.
	renderer := mandel.LocalRenderer{Workers: *workers}
	opts := []wsrender.Option{wsrender.WithMaxPixels(*maxPixels), wsrender.WithLogger(logger)}
	if *origins != "" {
		opts = append(opts, wsrender.WithOriginPatterns(strings.Split(*origins, ",")...))
	}
	srv := webServer(ctx, *addr, renderer, opts...)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
