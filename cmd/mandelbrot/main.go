// Command mandelbrot renders a region of the Mandelbrot set to a grayscale image file.
//
//	mandelbrot [-limit N] [-workers N] [-v] FILE PIXELS UPPERLEFT LOWERRIGHT
//
// The output format follows FILE's extension: .png, .bmp, .tif or .tiff.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	mandel "github.com/marben/mandelbrot"
	"github.com/marben/mandelbrot/internal/imgio"
)

const example = "mandelbrot mandel.png 1000x750 -1.20,0.35 -1,0.20"

// errUsage marks errors that should print usage and exit with status 2.
var errUsage = errors.New("usage error")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "mandelbrot: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mandelbrot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		limit   = fs.Uint("limit", mandel.DefaultLimit, "iteration limit, 1 to 255")
		workers = fs.Int("workers", 1, "render goroutines; 0 uses all CPUs")
		verbose = fs.Bool("v", false, "debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mandelbrot [flags] FILE PIXELS UPPERLEFT LOWERRIGHT\n")
		fmt.Fprintf(stderr, "Example: %s\n", example)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return fmt.Errorf("%w: want 4 arguments, got %d", errUsage, fs.NArg())
	}

	log := newLogger(stderr, *verbose)
	mandel.SetLogger(log)
	defer mandel.SetLogger(nil)

	file := fs.Arg(0)
	job, err := parseJob(fs.Arg(1), fs.Arg(2), fs.Arg(3), *limit)
	if err != nil {
		return err
	}
	// Fail on a bad extension before spending time rendering.
	if _, err := imgio.FormatFromPath(file); err != nil {
		return err
	}

	start := time.Now()
	img, err := mandel.LocalRenderer{Workers: *workers}.Render(ctx, job)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := imgio.WriteFile(file, img); err != nil {
		return err
	}

	log.Info("image written", "file", file, "bounds", job.Bounds, "elapsed", time.Since(start))
	return nil
}

func parseJob(size, upperLeft, lowerRight string, limit uint) (mandel.Job, error) {
	b, err := mandel.ParseSize(size)
	if err != nil {
		return mandel.Job{}, fmt.Errorf("image size: %w", err)
	}
	v, err := mandel.ParseViewport(upperLeft, lowerRight)
	if err != nil {
		return mandel.Job{}, fmt.Errorf("viewport: %w", err)
	}
	job := mandel.Job{Bounds: b, Viewport: v, Limit: limit}
	if err := job.Validate(); err != nil {
		return mandel.Job{}, err
	}
	return job, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
