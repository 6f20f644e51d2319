package wsrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelbrot"
)

// maxReplySize bounds a single image reply; PNG of DefaultMaxPixels
// grayscale pixels stays well below it.
const maxReplySize = 64 << 20

// Client renders jobs on a remote render service.
// Calls are serialized over one connection.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to a render service at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsrender: dial %s: %w", url, err)
	}
	c.SetReadLimit(maxReplySize)
	return &Client{conn: c}, nil
}

// Render implements mandel.Renderer.
func (c *Client) Render(ctx context.Context, job mandel.Job) (*image.Gray, error) {
	return c.do(ctx, NewRequest(job))
}

// RenderRegion renders a preset viewport by name.
func (c *Client) RenderRegion(ctx context.Context, name string, b mandel.Bounds, limit uint) (*image.Gray, error) {
	return c.do(ctx, Request{Size: mandel.FormatSize(b), Region: name, Limit: limit})
}

func (c *Client) do(ctx context.Context, req Request) (*image.Gray, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		return nil, fmt.Errorf("wsrender: send request: %w", err)
	}

	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("wsrender: read reply: %w", err)
	}

	if typ == websocket.MessageText {
		var reply errorReply
		if err := json.Unmarshal(data, &reply); err != nil {
			return nil, fmt.Errorf("wsrender: bad error reply: %w", err)
		}
		return nil, &RemoteError{Message: reply.Error}
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("wsrender: decode image: %w", err)
	}
	return toGray(img), nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Rect, img, b.Min, draw.Src)
	return g
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

var _ mandel.Renderer = (*Client)(nil)
