package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/prepverse/interview-gateway/internal/metrics"
)

// Recognizer produces transcriptions from recorded audio.
type Recognizer interface {
	TranscribeAudio(ctx context.Context, audio []byte) (*Transcription, error)
}

// Transcription holds the recognition output.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	LatencyMs  float64 `json:"latency_ms"`
}

// ASRRouter dispatches to the correct recognition backend based on engine name.
type ASRRouter struct {
	*Router[Recognizer]
}

// NewASRRouter creates a router with registered recognition backends and a
// fallback default.
func NewASRRouter(backends map[string]Recognizer, fallback string) *ASRRouter {
	return &ASRRouter{Router: NewRouter(backends, fallback)}
}

// Transcribe routes to the requested backend and transcribes the audio.
// An error here means the recording was not consumed: the caller keeps its
// buffer and may retry.
func (r *ASRRouter) Transcribe(ctx context.Context, audio []byte, engine string) (*Transcription, error) {
	backend, err := r.Route(engine)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "route").Inc()
		return nil, err
	}
	return backend.TranscribeAudio(ctx, audio)
}

// MultipartRecognizer sends recorded audio as a multipart upload to any
// whisper-compatible HTTP endpoint. Backends only vary by endpoint path;
// the label field is used in error messages and logs.
type MultipartRecognizer struct {
	url      string
	endpoint string
	label    string
	client   *http.Client
}

// NewWhisperRecognizer creates a client for whisper.cpp (/inference endpoint).
func NewWhisperRecognizer(url string, poolSize int) *MultipartRecognizer {
	return &MultipartRecognizer{
		url:      url,
		endpoint: "/inference",
		label:    "whisper",
		client:   NewPooledHTTPClient(poolSize, 60*time.Second),
	}
}

// Warmup sends a short silent clip to verify the server is responsive.
func (c *MultipartRecognizer) Warmup(ctx context.Context) error {
	body, contentType, err := buildMultipartAudio(SilenceWAV(1000, 16000))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.url+c.endpoint, body)
	if err != nil {
		return fmt.Errorf("create warmup request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s warmup: %w", c.label, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s warmup status %d", c.label, resp.StatusCode)
	}
	return nil
}

// TranscribeAudio uploads the recorded audio and returns the transcript.
// The audio bytes are forwarded as received from the peer; the engine is
// expected to handle the container format the client recorded in.
func (c *MultipartRecognizer) TranscribeAudio(ctx context.Context, audio []byte) (*Transcription, error) {
	start := time.Now()

	body, contentType, err := buildMultipartAudio(audio)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", c.label, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "http").Inc()
		return nil, fmt.Errorf("%s request: %w", c.label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.Errors.WithLabelValues("asr", "status").Inc()
		return nil, fmt.Errorf("%s status %d: %s", c.label, resp.StatusCode, string(respBody))
	}

	var result whisperResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", c.label, err)
	}

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("asr").Observe(latency.Seconds())

	return &Transcription{
		Text:       result.Text,
		Confidence: result.Confidence,
		LatencyMs:  float64(latency.Milliseconds()),
	}, nil
}

type whisperResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func buildMultipartAudio(audio []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}

	if _, err = part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
