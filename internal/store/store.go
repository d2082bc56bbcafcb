// Package store persists interview snapshots to PostgreSQL. The session core
// is in-memory and ephemeral; this layer only observes it, through the
// asynchronous Recorder.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// maxInterviews bounds the retained history; older sessions are pruned.
const maxInterviews = 200

// Store persists interview data to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the interview database at connStr and applies migrations.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateInterview inserts a new interview and prunes old ones.
func (s *Store) CreateInterview(id, candidateID, interviewType string, totalQuestions int) error {
	_, err := s.db.Exec(
		`INSERT INTO interviews (id, candidate_id, interview_type, total_questions, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, candidateID, interviewType, totalQuestions, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`DELETE FROM interviews WHERE id NOT IN (SELECT id FROM interviews ORDER BY started_at DESC LIMIT $1)`,
		maxInterviews,
	)
	return err
}

// CreateAnswer inserts one scored answer.
func (s *Store) CreateAnswer(a Answer) error {
	_, err := s.db.Exec(
		`INSERT INTO answers (id, interview_id, question_number, question_text, transcript, score, feedback, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.InterviewID, a.QuestionNumber, a.QuestionText, a.Transcript, a.Score, a.Feedback, a.AnsweredAt.UTC(),
	)
	return err
}

// FinishInterview stores the final report and sets ended_at.
func (s *Store) FinishInterview(id string, report json.RawMessage) error {
	_, err := s.db.Exec(
		`UPDATE interviews SET ended_at = $1, report = $2 WHERE id = $3`,
		time.Now().UTC(), []byte(report), id,
	)
	return err
}

// ListInterviews returns interviews ordered newest first, with answer counts.
func (s *Store) ListInterviews(limit, offset int) ([]Interview, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM interviews`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT i.id, i.candidate_id, i.interview_type, i.total_questions, i.started_at, i.ended_at, COUNT(a.id) AS answer_count
		FROM interviews i
		LEFT JOIN answers a ON a.interview_id = i.id
		GROUP BY i.id
		ORDER BY i.started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var interviews []Interview
	for rows.Next() {
		var iv Interview
		var endedAt sql.NullTime
		if err = rows.Scan(&iv.ID, &iv.CandidateID, &iv.InterviewType, &iv.TotalQuestions, &iv.StartedAt, &endedAt, &iv.AnswerCount); err != nil {
			return nil, 0, err
		}
		if endedAt.Valid {
			iv.EndedAt = &endedAt.Time
		}
		interviews = append(interviews, iv)
	}
	return interviews, total, rows.Err()
}

// GetInterview returns a single interview with its answers and report.
func (s *Store) GetInterview(id string) (*Interview, []Answer, error) {
	var iv Interview
	var endedAt sql.NullTime
	var report []byte
	err := s.db.QueryRow(
		`SELECT id, candidate_id, interview_type, total_questions, started_at, ended_at, report FROM interviews WHERE id = $1`, id,
	).Scan(&iv.ID, &iv.CandidateID, &iv.InterviewType, &iv.TotalQuestions, &iv.StartedAt, &endedAt, &report)
	if err != nil {
		return nil, nil, err
	}
	if endedAt.Valid {
		iv.EndedAt = &endedAt.Time
	}
	iv.Report = report

	rows, err := s.db.Query(
		`SELECT id, interview_id, question_number, question_text, transcript, score, feedback, answered_at
		 FROM answers WHERE interview_id = $1 ORDER BY question_number ASC`,
		id,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err = rows.Scan(&a.ID, &a.InterviewID, &a.QuestionNumber, &a.QuestionText, &a.Transcript, &a.Score, &a.Feedback, &a.AnsweredAt); err != nil {
			return nil, nil, err
		}
		answers = append(answers, a)
	}
	return &iv, answers, rows.Err()
}
