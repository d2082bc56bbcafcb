// Package protocol defines the typed message sets exchanged with the peer
// over the interview websocket. Each direction is a closed set: events flow
// server to peer, commands peer to server. Every wire message is a JSON
// envelope {type, data, timestamp}; audio chunks travel as raw binary frames.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/prepverse/interview-gateway/internal/score"
)

// Event is a message emitted to the peer. Implemented only by the variant
// structs in this package.
type Event interface {
	eventType() string
}

// StatusEvent announces a session phase change.
type StatusEvent struct {
	Message        string `json:"message"`
	TotalQuestions int    `json:"total_questions,omitempty"`
	Recording      *bool  `json:"recording,omitempty"`
}

// QuestionEvent delivers one question to the candidate. Expected keywords are
// deliberately absent: they are scoring-internal.
type QuestionEvent struct {
	Number   int    `json:"number"`
	Total    int    `json:"total"`
	Text     string `json:"text"`
	Category string `json:"type"`
}

// AudioEvent carries synthesized question audio, base64-encoded.
type AudioEvent struct {
	AudioData string `json:"audio_data"`
	Format    string `json:"format"`
}

// TranscriptionEvent echoes the recognized answer back to the peer.
type TranscriptionEvent struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// FeedbackEvent reports the score for the answer just given.
type FeedbackEvent struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// CompleteEvent carries the final report. Sent exactly once per session.
type CompleteEvent struct {
	Report            *score.Report `json:"report"`
	TotalQuestions    int           `json:"total_questions"`
	QuestionsAnswered int           `json:"questions_answered"`
}

// ErrorEvent reports a recoverable protocol or collaborator error.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (StatusEvent) eventType() string        { return "status" }
func (QuestionEvent) eventType() string      { return "question" }
func (AudioEvent) eventType() string         { return "audio" }
func (TranscriptionEvent) eventType() string { return "transcription" }
func (FeedbackEvent) eventType() string      { return "feedback" }
func (CompleteEvent) eventType() string      { return "complete" }
func (ErrorEvent) eventType() string         { return "error" }

type envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// MarshalEvent wraps an event in the wire envelope and serializes it.
func MarshalEvent(ev Event, at time.Time) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Type:      ev.eventType(),
		Data:      ev,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.eventType(), err)
	}
	return data, nil
}

// EventType exposes the wire tag of an event, for logging and tests.
func EventType(ev Event) string {
	return ev.eventType()
}
