package wsrender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelbrot"
	"github.com/marben/mandelbrot/internal/imgio"
)

// DefaultMaxPixels caps the size of a single job.
const DefaultMaxPixels = 1 << 24

// ErrTooLarge is returned for jobs over the handler's pixel cap.
var ErrTooLarge = errors.New("wsrender: image too large")

// Handler accepts websocket connections and renders the jobs they send.
type Handler struct {
	renderer       mandel.Renderer
	maxPixels      int
	originPatterns []string
	log            *slog.Logger
}

type Option func(*Handler)

// WithMaxPixels sets the largest width*height a job may request.
func WithMaxPixels(n int) Option {
	return func(h *Handler) { h.maxPixels = n }
}

// WithOriginPatterns allows cross-origin websocket upgrades from the given host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) { h.originPatterns = patterns }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

func NewHandler(r mandel.Renderer, opts ...Option) *Handler {
	h := &Handler{
		renderer:  r,
		maxPixels: DefaultMaxPixels,
	}
	for _, o := range opts {
		o(h)
	}
	if h.log == nil {
		h.log = mandel.Logger()
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer c.CloseNow()

	log := h.log.With("remote", r.RemoteAddr)
	log.Debug("connection opened")

	err = h.serveConn(r.Context(), c, log)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Debug("connection closed")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("connection failed", "err", err)
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
}

// serveConn answers requests on c until the peer goes away.
func (h *Handler) serveConn(ctx context.Context, c *websocket.Conn, log *slog.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			if err := h.replyError(ctx, c, errors.New("requests must be JSON text messages")); err != nil {
				return err
			}
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			if err := h.replyError(ctx, c, fmt.Errorf("bad request: %w", err)); err != nil {
				return err
			}
			continue
		}

		img, err := h.render(ctx, req, log)
		if err != nil {
			log.Warn("request rejected", "size", req.Size, "region", req.Region, "err", err)
			if err := h.replyError(ctx, c, err); err != nil {
				return err
			}
			continue
		}

		if err := c.Write(ctx, websocket.MessageBinary, img); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
	}
}

// render resolves req, renders it and returns the PNG encoding.
func (h *Handler) render(ctx context.Context, req Request, log *slog.Logger) ([]byte, error) {
	job, err := req.Job()
	if err != nil {
		return nil, err
	}
	if job.Bounds.Pixels() > h.maxPixels {
		return nil, fmt.Errorf("%w: %s exceeds %d pixels", ErrTooLarge, job.Bounds, h.maxPixels)
	}

	start := time.Now()
	img, err := h.renderer.Render(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var buf bytes.Buffer
	if err := imgio.Encode(&buf, imgio.PNG, img); err != nil {
		return nil, err
	}
	log.Info("rendered", "bounds", job.Bounds, "limit", job.Limit, "bytes", buf.Len(), "elapsed", time.Since(start))
	return buf.Bytes(), nil
}

func (h *Handler) replyError(ctx context.Context, c *websocket.Conn, err error) error {
	return wsjson.Write(ctx, c, errorReply{Error: err.Error()})
}

// RegionsHandler serves the preset viewports as JSON.
func RegionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(regionInfos()); err != nil {
			mandel.Logger().Warn("write regions", "err", err)
		}
	}
}
