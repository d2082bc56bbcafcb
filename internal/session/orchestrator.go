// Package session drives live interview sessions. One Orchestrator owns one
// connection's interview from start to completion: it sequences question
// delivery, response capture, transcription, scoring, and the final report.
package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/prepverse/interview-gateway/internal/metrics"
	"github.com/prepverse/interview-gateway/internal/profile"
	"github.com/prepverse/interview-gateway/internal/protocol"
	"github.com/prepverse/interview-gateway/internal/question"
	"github.com/prepverse/interview-gateway/internal/score"
	"github.com/prepverse/interview-gateway/internal/speech"
	"github.com/prepverse/interview-gateway/internal/store"
)

// State is the lifecycle state of a session.
type State string

const (
	StateIdle       State = "idle"
	StateAsking     State = "asking"
	StateRecording  State = "recording"
	StateEvaluating State = "evaluating"
	StateCompleted  State = "completed"
)

// EventSink receives every event the orchestrator emits, in order.
type EventSink func(protocol.Event)

// Config holds one session's collaborators and tuning.
type Config struct {
	SessionID string
	TTS       *speech.TTSRouter
	ASR       *speech.ASRRouter
	Profiles  profile.Provider
	Bank      *question.Bank
	Recorder  *store.Recorder
	Sink      EventSink

	// Rand seeds question selection; injected so tests can fix the seed.
	Rand *rand.Rand

	// PacingDelay is the pause between scoring one answer and asking the
	// next question. User-experience pacing only.
	PacingDelay time.Duration

	DefaultQuestions int
	DefaultTTSEngine string
	DefaultASREngine string
}

// Orchestrator is the per-connection interview state machine. Commands must
// be delivered sequentially from a single goroutine; the orchestrator holds
// no locks of its own.
type Orchestrator struct {
	cfg   Config
	state State

	questions []question.Question
	cursor    int
	responses []score.Response
	audioBuf  [][]byte

	ttsEngine string
	asrEngine string

	startedAt      time.Time
	recordingSince time.Time
}

// New creates an orchestrator in the Idle state.
func New(cfg Config) *Orchestrator {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.DefaultQuestions <= 0 {
		cfg.DefaultQuestions = 10
	}
	return &Orchestrator{cfg: cfg, state: StateIdle}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Completed reports whether the session reached its terminal state.
func (o *Orchestrator) Completed() bool {
	return o.state == StateCompleted
}

// Responses returns the responses collected so far.
func (o *Orchestrator) Responses() []score.Response {
	return o.responses
}

// HandleCommand applies one peer command to the state machine. Processing is
// strictly sequential: the call returns only after all resulting collaborator
// calls and events have finished.
func (o *Orchestrator) HandleCommand(ctx context.Context, cmd protocol.Command) {
	switch c := cmd.(type) {
	case protocol.StartCommand:
		o.start(ctx, c)
	case protocol.AudioChunkCommand:
		o.appendChunk(c.Data)
	case protocol.StopRecordingCommand:
		o.stopRecording(ctx)
	case protocol.SkipQuestionCommand:
		o.skip(ctx)
	case protocol.EndInterviewCommand:
		o.end(ctx)
	}
}

// Discard releases the session's in-memory resources. Called when the
// connection goes away; no events are emitted.
func (o *Orchestrator) Discard() {
	o.questions = nil
	o.responses = nil
	o.audioBuf = nil
}

func (o *Orchestrator) emit(ev protocol.Event) {
	o.cfg.Sink(ev)
}

func (o *Orchestrator) protocolError(msg string) {
	metrics.Errors.WithLabelValues("session", "protocol").Inc()
	o.emit(protocol.ErrorEvent{Message: msg})
}

func (o *Orchestrator) start(ctx context.Context, cmd protocol.StartCommand) {
	if o.state != StateIdle {
		o.protocolError("interview already started")
		return
	}

	cand := o.resolveProfile(ctx, cmd)

	n := cmd.NumQuestions
	if n <= 0 {
		n = o.cfg.DefaultQuestions
	}
	o.ttsEngine = firstNonEmpty(cmd.TTSEngine, o.cfg.DefaultTTSEngine)
	o.asrEngine = firstNonEmpty(cmd.ASREngine, o.cfg.DefaultASREngine)

	interviewType := question.ParseInterviewType(cmd.InterviewType)
	selector := question.NewSelector(o.cfg.Bank, o.cfg.Rand)
	o.questions = selector.Select(question.Request{
		Candidate:    cand,
		Type:         interviewType,
		NumQuestions: n,
	})
	o.cursor = 0
	o.startedAt = time.Now()

	metrics.InterviewsTotal.Inc()
	o.cfg.Recorder.InterviewStarted(o.cfg.SessionID, cmd.CandidateID, string(interviewType), len(o.questions))

	slog.Info("interview started",
		"session_id", o.cfg.SessionID,
		"interview_type", interviewType,
		"total_questions", len(o.questions),
		"skills", len(cand.TechnicalSkills),
		"projects", len(cand.Projects),
	)

	o.emit(protocol.StatusEvent{
		Message:        "Interview starting...",
		TotalQuestions: len(o.questions),
	})

	o.ask(ctx)
}

// resolveProfile prefers the inline profile; a candidate ID is resolved via
// the provider. Provider failure degrades to an empty profile, the selector's
// generic buckets cover the rest.
func (o *Orchestrator) resolveProfile(ctx context.Context, cmd protocol.StartCommand) *profile.Candidate {
	if cmd.Profile != nil {
		return cmd.Profile
	}
	if cmd.CandidateID != "" && o.cfg.Profiles != nil {
		cand, err := o.cfg.Profiles.Fetch(ctx, cmd.CandidateID)
		if err != nil {
			metrics.Errors.WithLabelValues("profile", "fetch").Inc()
			slog.Warn("profile fetch failed, using empty profile",
				"session_id", o.cfg.SessionID, "candidate_id", cmd.CandidateID, "error", err)
			return &profile.Candidate{}
		}
		return cand
	}
	return &profile.Candidate{}
}

// ask performs the Asking action for the question at the cursor: emit the
// question, synthesize its audio (best effort), reset the buffer, and enter
// Recording. Transitions to Completed when the cursor is exhausted.
func (o *Orchestrator) ask(ctx context.Context) {
	if o.cursor >= len(o.questions) {
		o.complete(ctx)
		return
	}
	o.state = StateAsking

	q := o.questions[o.cursor]
	slog.Info("asking question",
		"session_id", o.cfg.SessionID, "number", q.Number, "category", q.Category, "difficulty", q.Difficulty)

	o.emit(protocol.QuestionEvent{
		Number:   q.Number,
		Total:    len(o.questions),
		Text:     q.Text,
		Category: string(q.Category),
	})
	metrics.QuestionsAsked.Inc()

	// Synthesis is best effort: a degraded result means no audio, not a
	// stalled interview.
	res := o.cfg.TTS.Synthesize(ctx, q.Text, o.ttsEngine)
	if res.Degraded() {
		slog.Warn("tts synthesis failed, continuing without audio",
			"session_id", o.cfg.SessionID, "number", q.Number, "error", res.Err)
	} else {
		o.emit(protocol.AudioEvent{
			AudioData: base64.StdEncoding.EncodeToString(res.Audio),
			Format:    res.Format,
		})
	}

	o.audioBuf = nil
	o.state = StateRecording
	o.recordingSince = time.Now()

	recording := true
	o.emit(protocol.StatusEvent{Message: "Recording your response...", Recording: &recording})
}

func (o *Orchestrator) appendChunk(data []byte) {
	if o.state != StateRecording {
		return
	}
	o.audioBuf = append(o.audioBuf, data)
	metrics.AudioChunks.Inc()
}

func (o *Orchestrator) stopRecording(ctx context.Context) {
	if o.state != StateRecording {
		o.protocolError("not recording")
		return
	}
	if len(o.audioBuf) == 0 {
		o.emit(protocol.ErrorEvent{Message: "No audio received"})
		return
	}

	o.state = StateEvaluating
	recording := false
	o.emit(protocol.StatusEvent{Message: "Processing your response...", Recording: &recording})

	combined := bytes.Join(o.audioBuf, nil)
	tr, err := o.cfg.ASR.Transcribe(ctx, combined, o.asrEngine)
	if err != nil {
		// Recognition failure does not consume the answer: back to
		// Recording with the buffer intact so the peer can retry or skip.
		slog.Error("transcription failed", "session_id", o.cfg.SessionID, "error", err)
		o.emit(protocol.ErrorEvent{Message: "Error processing audio"})
		o.state = StateRecording
		return
	}

	o.emit(protocol.TranscriptionEvent{Text: tr.Text, Confidence: tr.Confidence})

	q := o.questions[o.cursor]
	o.responses = append(o.responses, score.Response{
		QuestionNumber: q.Number,
		Text:           tr.Text,
		DurationMs:     time.Since(o.recordingSince).Milliseconds(),
	})

	eval := score.Evaluate(q, tr.Text)
	metrics.AnswerScores.Observe(eval.Score)
	slog.Info("answer scored",
		"session_id", o.cfg.SessionID, "number", q.Number, "score", eval.Score, "transcript_len", len(tr.Text))

	o.emit(protocol.FeedbackEvent{Score: eval.Score, Feedback: eval.BriefFeedback})
	o.cfg.Recorder.AnswerScored(o.cfg.SessionID, q.Number, q.Text, tr.Text, eval.Score, eval.BriefFeedback)

	o.cursor++
	o.pause(ctx)
	o.ask(ctx)
}

func (o *Orchestrator) skip(ctx context.Context) {
	if o.state != StateRecording && o.state != StateAsking {
		o.protocolError("no question to skip")
		return
	}
	slog.Info("question skipped", "session_id", o.cfg.SessionID, "number", o.cursor+1)
	metrics.QuestionsSkipped.Inc()
	o.audioBuf = nil
	o.cursor++
	o.ask(ctx)
}

func (o *Orchestrator) end(ctx context.Context) {
	if o.state == StateCompleted {
		o.protocolError("interview already completed")
		return
	}
	o.complete(ctx)
}

// complete produces the report exactly once and discards working state.
func (o *Orchestrator) complete(ctx context.Context) {
	o.emit(protocol.StatusEvent{Message: "Interview completed! Generating your report..."})

	report := score.BuildReport(o.questions, o.responses)
	o.emit(protocol.CompleteEvent{
		Report:            report,
		TotalQuestions:    len(o.questions),
		QuestionsAnswered: len(o.responses),
	})

	if data, err := json.Marshal(report); err == nil {
		o.cfg.Recorder.InterviewFinished(o.cfg.SessionID, data)
	}

	metrics.InterviewsCompleted.Inc()
	if !o.startedAt.IsZero() {
		metrics.SessionDuration.Observe(time.Since(o.startedAt).Seconds())
	}

	slog.Info("interview completed",
		"session_id", o.cfg.SessionID,
		"total_questions", len(o.questions),
		"questions_answered", len(o.responses),
		"overall_score", report.OverallScore,
		"grade", report.Grade,
	)

	o.state = StateCompleted
	o.audioBuf = nil
}

// pause waits out the pacing delay between answers, or returns early when the
// session context is cancelled.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.cfg.PacingDelay <= 0 {
		return
	}
	t := time.NewTimer(o.cfg.PacingDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
