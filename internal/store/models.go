package store

import (
	"encoding/json"
	"time"
)

// Interview is one persisted interview session snapshot.
type Interview struct {
	ID             string          `json:"id"`
	CandidateID    string          `json:"candidate_id,omitempty"`
	InterviewType  string          `json:"interview_type"`
	TotalQuestions int             `json:"total_questions"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        *time.Time      `json:"ended_at,omitempty"`
	AnswerCount    int             `json:"answer_count"`
	Report         json.RawMessage `json:"report,omitempty"`
}

// Answer is one persisted scored answer.
type Answer struct {
	ID             string    `json:"id"`
	InterviewID    string    `json:"interview_id"`
	QuestionNumber int       `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	Transcript     string    `json:"transcript"`
	Score          float64   `json:"score"`
	Feedback       string    `json:"feedback"`
	AnsweredAt     time.Time `json:"answered_at"`
}
