package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/onsetgo/correntropy/internal/errors"
	"golang.org/x/time/rate"
)

// FrameMs is the frame length a SilenceGate's mask is aligned to. Spec.md
// §6 allows 10, 20 or 30ms frames; detfunc's own chunking is unrelated to
// this and never consults it directly.
type FrameMs int

const (
	Frame10ms FrameMs = 10
	Frame20ms FrameMs = 20
	Frame30ms FrameMs = 30
)

// SilenceGate reports, per frame, whether a span of audio is voice/note
// activity (true) or silence (false). A future caller would run this
// ahead of detfunc to skip quiet stretches; nothing in this tree calls it.
type SilenceGate interface {
	// Mask returns one bool per FrameMs-long frame spanning samples,
	// sampled at samplerate.
	Mask(ctx context.Context, samples []float64, samplerate int, frame FrameMs) ([]bool, error)
}

// HTTPSilenceGate calls out to an external VAD service that returns a
// JSON array of per-frame booleans, parsed with jason the same way the
// teacher's wikipedia image provider picks fields out of an external
// service's response.
type HTTPSilenceGate struct {
	Endpoint string
	Client   *http.Client
	// limiter caps outbound requests so a fast caller (e.g. a
	// frame-at-a-time live session) can't hammer the VAD endpoint, the
	// same global-rate-limiter pattern the teacher's Wikipedia image
	// provider applies to its own external API calls.
	limiter *rate.Limiter
}

var _ SilenceGate = (*HTTPSilenceGate)(nil)

// NewHTTPSilenceGate returns a gate posting raw sample frames to
// endpoint, which must answer with {"mask": [true, false, ...]}, rate
// limited to at most requestsPerSecond calls (a non-positive value means
// 5 per second).
func NewHTTPSilenceGate(endpoint string, requestsPerSecond float64) *HTTPSilenceGate {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &HTTPSilenceGate{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (g *HTTPSilenceGate) Mask(ctx context.Context, samples []float64, samplerate int, frame FrameMs) ([]bool, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, wrapSilenceErr("wait for rate limiter", err)
	}

	body := encodeFrameRequest(samples, samplerate, frame)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, body)
	if err != nil {
		return nil, wrapSilenceErr("build silence gate request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, wrapSilenceErr("call silence gate endpoint", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapSilenceErr("read silence gate response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, wrapSilenceErr("silence gate endpoint error", fmt.Errorf("status %d", resp.StatusCode))
	}

	obj, err := jason.NewObjectFromBytes(raw)
	if err != nil {
		return nil, wrapSilenceErr("parse silence gate response", err)
	}
	values, err := obj.GetValueArray("mask")
	if err != nil {
		return nil, wrapSilenceErr("read mask field", err)
	}

	mask := make([]bool, len(values))
	for i, v := range values {
		b, err := v.Boolean()
		if err != nil {
			return nil, wrapSilenceErr("mask entry not boolean", err)
		}
		mask[i] = b
	}
	return mask, nil
}

// frameRequest is the payload posted to an HTTPSilenceGate's endpoint.
type frameRequest struct {
	Samples    []float64 `json:"samples"`
	Samplerate int       `json:"samplerate"`
	FrameMs    int       `json:"frame_ms"`
}

func encodeFrameRequest(samples []float64, samplerate int, frame FrameMs) *bytes.Reader {
	body, _ := json.Marshal(frameRequest{Samples: samples, Samplerate: samplerate, FrameMs: int(frame)})
	return bytes.NewReader(body)
}

func wrapSilenceErr(msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component("collab").
		Category(errors.CategoryCollab).
		Context("cause", cause.Error()).
		Build()
}
