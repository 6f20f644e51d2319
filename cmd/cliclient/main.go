// Command cliclient asks a render server for a Mandelbrot image and saves it.
//
//	cliclient [-server URL] [-limit N] [-v] FILE PIXELS UPPERLEFT LOWERRIGHT
//	cliclient [-server URL] [-limit N] [-v] -region NAME FILE PIXELS
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	mandel "github.com/marben/mandelbrot"
	"github.com/marben/mandelbrot/internal/imgio"
	"github.com/marben/mandelbrot/wsrender"
)

var errUsage = errors.New("usage error")

// main is the entry point for the CLI client.
// All rendering happens on the server; the client only saves the result.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "cliclient: %v\n", err)
		os.Exit(1)
	}
}

// run connects to the render server, requests the image and saves it.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("cliclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		server  = fs.String("server", "ws://localhost:8080/ws", "render server websocket URL")
		region  = fs.String("region", "", "render a preset region instead of explicit corners")
		limit   = fs.Uint("limit", mandel.DefaultLimit, "iteration limit, 1 to 255")
		timeout = fs.Duration("timeout", time.Minute, "give up after this long")
		verbose = fs.Bool("v", false, "debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cliclient [flags] FILE PIXELS UPPERLEFT LOWERRIGHT\n")
		fmt.Fprintf(stderr, "       cliclient [flags] -region NAME FILE PIXELS\n")
		fmt.Fprintf(stderr, "Example: cliclient mandel.png 1000x750 -1.20,0.35 -1,0.20\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	want := 4
	if *region != "" {
		want = 2
	}
	if fs.NArg() != want {
		fs.Usage()
		return fmt.Errorf("%w: want %d arguments, got %d", errUsage, want, fs.NArg())
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Step 1: Validate everything local before touching the network
	file := fs.Arg(0)
	if _, err := imgio.FormatFromPath(file); err != nil {
		return err
	}
	b, err := mandel.ParseSize(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("image size: %w", err)
	}
	var job mandel.Job
	if *region == "" {
		v, err := mandel.ParseViewport(fs.Arg(2), fs.Arg(3))
		if err != nil {
			return fmt.Errorf("viewport: %w", err)
		}
		job = mandel.Job{Bounds: b, Viewport: v, Limit: *limit}
		if err := job.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	// Step 2: Connect to the render server
	log.Debug("connecting", "server", *server)
	client, err := wsrender.Dial(ctx, *server)
	if err != nil {
		return err
	}
	defer client.Close()

	// Step 3: Request the rendered image
	start := time.Now()
	var img *image.Gray
	if *region != "" {
		img, err = client.RenderRegion(ctx, *region, b, *limit)
	} else {
		img, err = client.Render(ctx, job)
	}
	if err != nil {
		return err
	}
	log.Debug("image received", "bounds", img.Rect.Size(), "elapsed", time.Since(start))

	// Step 4: Save it
	if err := imgio.WriteFile(file, img); err != nil {
		return err
	}
	log.Info("image written", "file", file, "bounds", b)
	return nil
}
