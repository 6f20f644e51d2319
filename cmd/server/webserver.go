package main

import (
	"context"
	"net"
	"net/http"
	"time"

	mandel "github.com/marben/mandelbrot"
	"github.com/marben/mandelbrot/wsrender"
)

// webServer builds the http server exposing the render service at /ws
// and the preset list at /regions.
// Request contexts derive from ctx, so cancelling it ends open websocket
// connections, which http.Server.Shutdown does not track once hijacked.
func webServer(ctx context.Context, addr string, r mandel.Renderer, opts ...wsrender.Option) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", wsrender.NewHandler(r, opts...))
	mux.HandleFunc("GET /regions", wsrender.RegionsHandler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
