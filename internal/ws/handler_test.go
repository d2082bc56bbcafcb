package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepverse/interview-gateway/internal/question"
	"github.com/prepverse/interview-gateway/internal/session"
	"github.com/prepverse/interview-gateway/internal/speech"
)

type stubSynth struct{}

func (stubSynth) SynthesizeAudio(context.Context, string) ([]byte, error) {
	return []byte("wav"), nil
}

type stubRecognizer struct{}

func (stubRecognizer) TranscribeAudio(context.Context, []byte) (*speech.Transcription, error) {
	return &speech.Transcription{Text: "a decent answer about the topic at hand", Confidence: 0.9}, nil
}

func newTestServer(t *testing.T, maxConcurrent int) (*httptest.Server, *session.Registry) {
	t.Helper()
	bank, err := question.LoadBank()
	require.NoError(t, err)

	registry := session.NewRegistry()
	handler := NewHandler(HandlerConfig{
		TTS:              speech.NewTTSRouter(map[string]speech.Synthesizer{"piper": stubSynth{}}, "piper"),
		ASR:              speech.NewASRRouter(map[string]speech.Recognizer{"whisper": stubRecognizer{}}, "whisper"),
		Bank:             bank,
		Registry:         registry,
		DefaultQuestions: 2,
		MaxConcurrent:    maxConcurrent,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws/interview", handler)
	mux.Handle("/ws/interview/{id}", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readEvent skips binary frames and returns the next JSON event.
func readEvent(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		msgType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if msgType != websocket.TextMessage {
			continue
		}
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, eventType string) frame {
	t.Helper()
	for range 20 {
		f := readEvent(t, conn)
		if f.Type == eventType {
			return f
		}
	}
	t.Fatalf("never received %q event", eventType)
	return frame{}
}

func TestInterviewOverWebsocket(t *testing.T) {
	srv, registry := newTestServer(t, 10)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/interview/sess-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	start := `{"type":"start","interview_type":"technical","num_questions":2,` +
		`"profile":{"technical_skills":["Go"],"projects":[]}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(start)))

	f := readUntil(t, conn, "question")
	var q struct {
		Number int `json:"number"`
		Total  int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &q))
	assert.Equal(t, 1, q.Number)
	assert.Equal(t, 2, q.Total)

	readUntil(t, conn, "status")
	assert.Equal(t, 1, registry.Len())

	// Answer question 1.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("chunk-1")))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("chunk-2")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop_recording"}`)))

	tr := readUntil(t, conn, "transcription")
	var trBody struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(tr.Data, &trBody))
	assert.Equal(t, "a decent answer about the topic at hand", trBody.Text)

	readUntil(t, conn, "feedback")

	// Skip question 2; the interview completes.
	readUntil(t, conn, "question")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"skip_question"}`)))

	done := readUntil(t, conn, "complete")
	var report struct {
		TotalQuestions    int `json:"total_questions"`
		QuestionsAnswered int `json:"questions_answered"`
	}
	require.NoError(t, json.Unmarshal(done.Data, &report))
	assert.Equal(t, 2, report.TotalQuestions)
	assert.Equal(t, 1, report.QuestionsAnswered)

	// Server closes its side once the session completes.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	require.Eventually(t, func() bool { return registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBadCommandFrameReportsError(t *testing.T) {
	srv, _ := newTestServer(t, 10)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/interview"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))

	f := readUntil(t, conn, "error")
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &body))
	assert.Contains(t, body.Message, "dance")
}

func TestAdmissionControl(t *testing.T) {
	srv, _ := newTestServer(t, 1)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/interview"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// The single slot is held by the first connection.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/interview"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
