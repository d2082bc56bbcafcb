package store

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const maxTranscriptLen = 2000

type recordMsg struct {
	kind string // "interview_start", "answer", "finish"
	// interview fields
	interviewID    string
	candidateID    string
	interviewType  string
	totalQuestions int
	report         json.RawMessage
	// answer fields
	answer Answer
}

// Recorder writes interview snapshots asynchronously via a buffered channel,
// so the session loop never blocks on the database. All methods are nil-safe
// (no-op on nil receiver).
type Recorder struct {
	store *Store
	ch    chan recordMsg
	done  chan struct{}
}

// NewRecorder creates a recorder over the store. Must call Close when done.
func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store: store,
		ch:    make(chan recordMsg, 64),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for msg := range r.ch {
		r.handle(msg)
	}
}

func (r *Recorder) handle(m recordMsg) {
	var err error
	switch m.kind {
	case "interview_start":
		err = r.store.CreateInterview(m.interviewID, m.candidateID, m.interviewType, m.totalQuestions)
	case "answer":
		err = r.store.CreateAnswer(m.answer)
	case "finish":
		err = r.store.FinishInterview(m.interviewID, m.report)
	default:
		return
	}
	if err != nil {
		slog.Warn("interview snapshot write failed", "kind", m.kind, "error", err)
	}
}

// InterviewStarted records a new session.
func (r *Recorder) InterviewStarted(interviewID, candidateID, interviewType string, totalQuestions int) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{
		kind:           "interview_start",
		interviewID:    interviewID,
		candidateID:    candidateID,
		interviewType:  interviewType,
		totalQuestions: totalQuestions,
	}
}

// AnswerScored records one scored answer.
func (r *Recorder) AnswerScored(interviewID string, questionNumber int, questionText, transcript string, score float64, feedback string) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{
		kind: "answer",
		answer: Answer{
			ID:             uuid.NewString(),
			InterviewID:    interviewID,
			QuestionNumber: questionNumber,
			QuestionText:   questionText,
			Transcript:     truncate(transcript, maxTranscriptLen),
			Score:          score,
			Feedback:       feedback,
			AnsweredAt:     time.Now().UTC(),
		},
	}
}

// InterviewFinished records the final report.
func (r *Recorder) InterviewFinished(interviewID string, report json.RawMessage) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{kind: "finish", interviewID: interviewID, report: report}
}

// Close drains pending writes and shuts down the background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.ch)
	<-r.done
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
