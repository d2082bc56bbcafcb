package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prepverse/interview-gateway/internal/metrics"
)

// Synthesizer produces audio from text.
type Synthesizer interface {
	SynthesizeAudio(ctx context.Context, text string) ([]byte, error)
}

// SynthResult is the typed outcome of a synthesis attempt. A non-nil Err
// means the result is degraded: no audio, but the session continues.
type SynthResult struct {
	Audio     []byte
	Format    string
	LatencyMs float64
	Err       error
}

// Degraded reports whether synthesis failed and the session should proceed
// without audio.
func (r SynthResult) Degraded() bool {
	return r.Err != nil
}

// TTSRouter dispatches to the correct TTS backend based on engine name.
// Wraps the generic Router with a Synthesize method that adds timing/metrics
// and converts errors into a degraded SynthResult.
type TTSRouter struct {
	*Router[Synthesizer]
}

// NewTTSRouter creates a router with registered TTS backends and a fallback default.
func NewTTSRouter(backends map[string]Synthesizer, fallback string) *TTSRouter {
	return &TTSRouter{Router: NewRouter(backends, fallback)}
}

// Synthesize routes to the requested backend and synthesizes the text.
// It never returns an error: failure is folded into a degraded result.
func (r *TTSRouter) Synthesize(ctx context.Context, text, engine string) SynthResult {
	start := time.Now()

	backend, err := r.Route(engine)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "route").Inc()
		return SynthResult{Err: err}
	}

	audio, err := backend.SynthesizeAudio(ctx, text)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "synth").Inc()
		return SynthResult{Err: err}
	}

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("tts").Observe(latency.Seconds())

	return SynthResult{
		Audio:     audio,
		Format:    "wav",
		LatencyMs: float64(latency.Milliseconds()),
	}
}

// --- Piper backend (local neural TTS via piper-tts, returns WAV) ---

type piperSynthesizer struct {
	url    string
	voice  string
	client *http.Client
}

// NewPiperSynthesizer creates a backend for a piper-tts HTTP server.
func NewPiperSynthesizer(url, voice string, client *http.Client) Synthesizer {
	return &piperSynthesizer{url: url, voice: voice, client: client}
}

func (p *piperSynthesizer) SynthesizeAudio(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}{Text: text, Voice: p.voice})
	if err != nil {
		return nil, fmt.Errorf("marshal piper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.url+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create piper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doTTSRequest(p.client, req)
}

// --- OpenAI-compatible backend (any server exposing /v1/audio/speech) ---

type openaiSynthesizer struct {
	url    string
	model  string
	voice  string
	client *http.Client
}

// NewOpenAISynthesizer creates a backend for an OpenAI-compatible speech endpoint.
func NewOpenAISynthesizer(url, model, voice string, client *http.Client) Synthesizer {
	return &openaiSynthesizer{url: url, model: model, voice: voice, client: client}
}

func (o *openaiSynthesizer) SynthesizeAudio(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(struct {
		Input          string `json:"input"`
		Model          string `json:"model"`
		Voice          string `json:"voice"`
		ResponseFormat string `json:"response_format"`
	}{Input: text, Model: o.model, Voice: o.voice, ResponseFormat: "wav"})
	if err != nil {
		return nil, fmt.Errorf("marshal openai tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create openai tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doTTSRequest(o.client, req)
}

// --- shared HTTP helper ---

func doTTSRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
