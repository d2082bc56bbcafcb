package speech

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSynth struct {
	audio []byte
	err   error
}

func (s stubSynth) SynthesizeAudio(context.Context, string) ([]byte, error) {
	return s.audio, s.err
}

func TestRouterFallback(t *testing.T) {
	r := NewRouter(map[string]string{"piper": "a", "openai": "b"}, "piper")

	got, err := r.Route("openai")
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	got, err = r.Route("unknown")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	assert.True(t, r.Has("piper"))
	assert.False(t, r.Has("unknown"))
	assert.ElementsMatch(t, []string{"piper", "openai"}, r.Engines())
}

func TestRouterNoFallback(t *testing.T) {
	r := NewRouter(map[string]string{}, "piper")

	_, err := r.Route("anything")
	assert.Error(t, err)
}

func TestTTSRouterSynthesize(t *testing.T) {
	router := NewTTSRouter(map[string]Synthesizer{"piper": stubSynth{audio: []byte("wav")}}, "piper")

	res := router.Synthesize(context.Background(), "hello", "piper")

	assert.False(t, res.Degraded())
	assert.Equal(t, []byte("wav"), res.Audio)
	assert.Equal(t, "wav", res.Format)
}

func TestTTSRouterDegradesOnBackendError(t *testing.T) {
	router := NewTTSRouter(map[string]Synthesizer{"piper": stubSynth{err: errors.New("down")}}, "piper")

	res := router.Synthesize(context.Background(), "hello", "piper")

	assert.True(t, res.Degraded())
	assert.Nil(t, res.Audio)
}

func TestTTSRouterDegradesOnUnknownEngine(t *testing.T) {
	router := NewTTSRouter(map[string]Synthesizer{}, "piper")

	res := router.Synthesize(context.Background(), "hello", "missing")

	assert.True(t, res.Degraded())
}

func TestPiperSynthesizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/synthesize", r.URL.Path)
		var req struct {
			Text  string `json:"text"`
			Voice string `json:"voice"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello there", req.Text)
		assert.Equal(t, "en_US-amy-medium", req.Voice)
		w.Write([]byte("fake-wav"))
	}))
	defer srv.Close()

	synth := NewPiperSynthesizer(srv.URL, "en_US-amy-medium", srv.Client())

	audio, err := synth.SynthesizeAudio(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-wav"), audio)
}

func TestPiperSynthesizerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	synth := NewPiperSynthesizer(srv.URL, "voice", srv.Client())

	_, err := synth.SynthesizeAudio(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWhisperRecognizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "audio.wav", header.Filename)
		json.NewEncoder(w).Encode(map[string]any{"text": "hello world", "confidence": 0.95})
	}))
	defer srv.Close()

	rec := NewWhisperRecognizer(srv.URL, 2)

	tr, err := rec.TranscribeAudio(context.Background(), []byte("pcm-data"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", tr.Text)
	assert.Equal(t, 0.95, tr.Confidence)
}

func TestWhisperRecognizerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := NewWhisperRecognizer(srv.URL, 1)

	_, err := rec.TranscribeAudio(context.Background(), []byte("pcm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestWhisperWarmup(t *testing.T) {
	var gotWarmup bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWarmup = true
		json.NewEncoder(w).Encode(map[string]any{"text": ""})
	}))
	defer srv.Close()

	rec := NewWhisperRecognizer(srv.URL, 1)

	require.NoError(t, rec.Warmup(context.Background()))
	assert.True(t, gotWarmup)
}

func TestSilenceWAV(t *testing.T) {
	wav := SilenceWAV(100, 16000)

	require.Greater(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))

	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	assert.Equal(t, uint32(16000), sampleRate)

	// 100ms at 16kHz mono 16-bit is 3200 data bytes.
	assert.Equal(t, 44+3200, len(wav))
}

func TestASRRouterTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"text": "routed", "confidence": 0.8})
	}))
	defer srv.Close()

	router := NewASRRouter(map[string]Recognizer{"whisper": NewWhisperRecognizer(srv.URL, 1)}, "whisper")

	tr, err := router.Transcribe(context.Background(), []byte("pcm"), "")
	require.NoError(t, err)
	assert.Equal(t, "routed", tr.Text)
}

func TestNewPooledHTTPClient(t *testing.T) {
	client := NewPooledHTTPClient(8, 30*time.Second)

	require.NotNil(t, client)
	assert.Equal(t, 30*time.Second, client.Timeout)
}
