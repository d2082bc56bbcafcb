package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InterviewsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "interview_sessions_active",
		Help: "Currently active interview sessions",
	})

	InterviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_total",
		Help: "Total interview sessions started",
	})

	InterviewsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_completed_total",
		Help: "Sessions that reached the completion report",
	})

	QuestionsAsked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_questions_asked_total",
		Help: "Questions delivered to candidates",
	})

	QuestionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_questions_skipped_total",
		Help: "Questions skipped by candidates",
	})

	AudioChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_audio_chunks_total",
		Help: "Audio chunks received from candidates",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interview_stage_duration_seconds",
		Help:    "Per-stage latency (tts, asr, score)",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"stage"})

	SessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interview_session_duration_seconds",
		Help:    "Wall-clock duration of completed sessions",
		Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
	})

	AnswerScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interview_answer_scores",
		Help:    "Distribution of per-answer scores",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})
)
