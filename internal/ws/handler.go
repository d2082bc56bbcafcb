package ws

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/prepverse/interview-gateway/internal/metrics"
	"github.com/prepverse/interview-gateway/internal/profile"
	"github.com/prepverse/interview-gateway/internal/protocol"
	"github.com/prepverse/interview-gateway/internal/question"
	"github.com/prepverse/interview-gateway/internal/session"
	"github.com/prepverse/interview-gateway/internal/speech"
	"github.com/prepverse/interview-gateway/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerConfig holds the shared collaborators for all interview sessions.
type HandlerConfig struct {
	TTS              *speech.TTSRouter
	ASR              *speech.ASRRouter
	Profiles         profile.Provider
	Bank             *question.Bank
	Recorder         *store.Recorder
	Registry         *session.Registry
	PacingDelay      time.Duration
	DefaultQuestions int
	DefaultTTSEngine string
	DefaultASREngine string
	MaxConcurrent    int
}

// Handler manages websocket interview sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a websocket handler with shared collaborators and a
// concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// ServeHTTP upgrades the connection and runs the interview session.
// Returns 503 at max concurrent session capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.PathValue("id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	metrics.InterviewsActive.Inc()
	defer metrics.InterviewsActive.Dec()

	h.runSession(conn, sessionID)
}

func (h *Handler) runSession(conn *websocket.Conn, sessionID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("websocket connected", "session_id", sessionID)

	sink := newEventSender(conn)
	orch := session.New(session.Config{
		SessionID:        sessionID,
		TTS:              h.cfg.TTS,
		ASR:              h.cfg.ASR,
		Profiles:         h.cfg.Profiles,
		Bank:             h.cfg.Bank,
		Recorder:         h.cfg.Recorder,
		Sink:             sink,
		Rand:             rand.New(rand.NewSource(time.Now().UnixNano())),
		PacingDelay:      h.cfg.PacingDelay,
		DefaultQuestions: h.cfg.DefaultQuestions,
		DefaultTTSEngine: h.cfg.DefaultTTSEngine,
		DefaultASREngine: h.cfg.DefaultASREngine,
	})

	h.cfg.Registry.Add(sessionID, orch)
	defer func() {
		h.cfg.Registry.Remove(sessionID)
		orch.Discard()
		slog.Info("websocket disconnected", "session_id", sessionID)
	}()

	h.processMessages(ctx, conn, orch, sink)
}

// processMessages reads peer frames in a loop and feeds them to the
// orchestrator one at a time. Binary frames are audio chunks; text frames are
// JSON commands. The loop ends when the connection drops or the session
// completes; no further commands are accepted after the completion report.
func (h *Handler) processMessages(ctx context.Context, conn *websocket.Conn, orch *session.Orchestrator, sink session.EventSink) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("connection closed", "error", err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			orch.HandleCommand(ctx, protocol.AudioChunkCommand{Data: data})
		case websocket.TextMessage:
			cmd, parseErr := protocol.ParseCommand(data)
			if parseErr != nil {
				slog.Warn("bad command frame", "error", parseErr)
				sink(protocol.ErrorEvent{Message: parseErr.Error()})
				continue
			}
			orch.HandleCommand(ctx, cmd)
		default:
			continue
		}

		if orch.Completed() {
			return
		}
	}
}

// newEventSender serializes events onto the connection. gorilla/websocket
// allows only one concurrent writer, so writes are mutex-guarded.
func newEventSender(conn *websocket.Conn) session.EventSink {
	var mu sync.Mutex
	return func(ev protocol.Event) {
		mu.Lock()
		defer mu.Unlock()

		data, err := protocol.MarshalEvent(ev, time.Now())
		if err != nil {
			slog.Error("marshal event", "error", err)
			return
		}
		if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Error("write event", "type", protocol.EventType(ev), "error", err)
		}
	}
}
