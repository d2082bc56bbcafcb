package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepverse/interview-gateway/internal/speech"
)

type stubSynth struct{}

func (stubSynth) SynthesizeAudio(context.Context, string) ([]byte, error) {
	return []byte("wav"), nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		cfg: config{
			defaultTTSEngine: "piper",
			defaultASREngine: "whisper",
			historyPageSize:  20,
		},
		tts:       speech.NewTTSRouter(map[string]speech.Synthesizer{"piper": stubSynth{}}, "piper"),
		asr:       speech.NewASRRouter(map[string]speech.Recognizer{}, "whisper"),
		wsHandler: http.NotFoundHandler(),
	})
	return mux
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEnginesEndpoint(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/engines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		TTS struct {
			Engines []string `json:"engines"`
			Default string   `json:"default"`
		} `json:"tts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"piper"}, body.TTS.Engines)
	assert.Equal(t, "piper", body.TTS.Default)
}

func TestCategoriesEndpoint(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/questions/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Categories     []string `json:"categories"`
		InterviewTypes []string `json:"interview_types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Categories, "technical")
	assert.Contains(t, body.Categories, "behavioral")
	assert.Contains(t, body.InterviewTypes, "balanced-mixed")
}

func TestWarmupUnknownEngine(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("POST", "/api/tts/warmup", strings.NewReader(`{"engine":"ghost"}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWarmupKnownEngine(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("POST", "/api/tts/warmup", strings.NewReader(`{"engine":"piper"}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryDisabledWithoutStore(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{"/api/interviews", "/api/interviews/some-id"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/interviews?limit=5&offset=bad", nil)

	assert.Equal(t, 5, queryInt(req, "limit", 20))
	assert.Equal(t, 0, queryInt(req, "offset", 0))
	assert.Equal(t, 20, queryInt(req, "missing", 20))
}
