// Package wsrender serves Mandelbrot renders over a websocket and provides
// a client implementing mandel.Renderer on top of it.
//
// Each request is a JSON text message; each reply is either a binary
// message holding a PNG image or a JSON text message carrying an error.
// A connection may carry any number of requests, answered in order.
package wsrender

import (
	"errors"
	"fmt"

	mandel "github.com/marben/mandelbrot"
)

// ErrUnknownRegion is returned for a request naming no known preset.
var ErrUnknownRegion = errors.New("wsrender: unknown region")

// Request is the wire form of a render job. Either Region or both corners
// must be set. A zero Limit means mandel.DefaultLimit.
type Request struct {
	Size       string `json:"size"`
	UpperLeft  string `json:"upper_left,omitempty"`
	LowerRight string `json:"lower_right,omitempty"`
	Region     string `json:"region,omitempty"`
	Limit      uint   `json:"limit,omitempty"`
}

type errorReply struct {
	Error string `json:"error"`
}

// NewRequest converts a job into its wire form.
func NewRequest(job mandel.Job) Request {
	return Request{
		Size:       mandel.FormatSize(job.Bounds),
		UpperLeft:  mandel.FormatComplex(job.Viewport.UpperLeft),
		LowerRight: mandel.FormatComplex(job.Viewport.LowerRight),
		Limit:      job.Limit,
	}
}

// Job resolves and validates the request.
func (r Request) Job() (mandel.Job, error) {
	b, err := mandel.ParseSize(r.Size)
	if err != nil {
		return mandel.Job{}, err
	}

	var v mandel.Viewport
	switch {
	case r.Region != "" && (r.UpperLeft != "" || r.LowerRight != ""):
		return mandel.Job{}, fmt.Errorf("%w: region and corners are exclusive", mandel.ErrViewport)
	case r.Region != "":
		var ok bool
		if v, ok = mandel.Landmark(r.Region); !ok {
			return mandel.Job{}, fmt.Errorf("%w: %q", ErrUnknownRegion, r.Region)
		}
	default:
		if v, err = mandel.ParseViewport(r.UpperLeft, r.LowerRight); err != nil {
			return mandel.Job{}, err
		}
	}

	limit := r.Limit
	if limit == 0 {
		limit = mandel.DefaultLimit
	}

	job := mandel.Job{Bounds: b, Viewport: v, Limit: limit}
	if err := job.Validate(); err != nil {
		return mandel.Job{}, err
	}
	return job, nil
}

// RemoteError is an error reported by the render service.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "wsrender: remote: " + e.Message
}

// RegionInfo is the wire form of a preset viewport.
type RegionInfo struct {
	UpperLeft  string `json:"upper_left"`
	LowerRight string `json:"lower_right"`
}

func regionInfos() map[string]RegionInfo {
	out := make(map[string]RegionInfo, len(mandel.Landmarks))
	for _, name := range mandel.LandmarkNames() {
		v := mandel.Landmarks[name]
		out[name] = RegionInfo{
			UpperLeft:  mandel.FormatComplex(v.UpperLeft),
			LowerRight: mandel.FormatComplex(v.LowerRight),
		}
	}
	return out
}
