package score

import (
	"github.com/prepverse/interview-gateway/internal/question"
)

// Response is one answered question, tagged with the question it answers.
// Never mutated after it is appended to a session.
type Response struct {
	QuestionNumber int    `json:"question_number"`
	Text           string `json:"response_text"`
	DurationMs     int64  `json:"duration_ms,omitempty"`
}

// QuestionScore is the per-question line item of a report.
type QuestionScore struct {
	QuestionNumber int     `json:"question_number"`
	QuestionText   string  `json:"question_text"`
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
}

// Report is the consolidated end-of-interview evaluation. Scores are on a
// 0-100 scale; the grade and placement tier derive from the 0-10 mean.
type Report struct {
	OverallScore           float64            `json:"overall_score"`
	Grade                  string             `json:"grade"`
	QuestionScores         []QuestionScore    `json:"question_scores"`
	CategoryScores         map[string]float64 `json:"category_scores"`
	Strengths              []string           `json:"strengths"`
	Weaknesses             []string           `json:"weaknesses"`
	ImprovementSuggestions []string           `json:"improvement_suggestions"`
	PlacementReady         string             `json:"placement_ready"`
	TotalQuestions         int                `json:"total_questions"`
	QuestionsAnswered      int                `json:"questions_answered"`
}

const maxSuggestions = 5

const questionTextLimit = 100

// BuildReport scores every response against its matched question and derives
// the consolidated report. Deterministic and side-effect free; calling it
// twice on the same inputs yields identical reports.
func BuildReport(questions []question.Question, responses []Response) *Report {
	byNumber := make(map[int]question.Question, len(questions))
	for _, q := range questions {
		byNumber[q.Number] = q
	}

	var scores []float64
	var questionScores []QuestionScore
	catScores := make(map[question.Category][]float64)

	for _, resp := range responses {
		q := byNumber[resp.QuestionNumber]
		eval := Evaluate(q, resp.Text)
		scores = append(scores, eval.Score)
		catScores[q.Category] = append(catScores[q.Category], eval.Score)
		questionScores = append(questionScores, QuestionScore{
			QuestionNumber: resp.QuestionNumber,
			QuestionText:   truncate(q.Text, questionTextLimit),
			Score:          eval.Score,
			Feedback:       eval.BriefFeedback,
		})
	}

	var avg float64
	if len(scores) > 0 {
		avg = mean(scores)
	}

	categoryScores := make(map[string]float64)
	var strengths, weaknesses []string
	for _, cat := range question.Categories {
		list := catScores[cat]
		if len(list) == 0 {
			continue
		}
		catAvg := round1(mean(list))
		categoryScores[string(cat)] = catAvg * 10
		if catAvg >= 7 {
			strengths = append(strengths, "Strong "+string(cat)+" skills")
		} else if catAvg < 5 {
			weaknesses = append(weaknesses, "Needs improvement in "+string(cat)+" areas")
		}
	}

	if avg >= 7 {
		strengths = append(strengths, "Good overall communication")
	} else if avg < 5 {
		weaknesses = append(weaknesses, "Focus on providing more comprehensive answers")
	}
	if len(strengths) == 0 {
		strengths = []string{"Participated in the interview"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"No major weaknesses identified"}
	}

	return &Report{
		OverallScore:           round1(avg * 10),
		Grade:                  letterGrade(avg),
		QuestionScores:         questionScores,
		CategoryScores:         categoryScores,
		Strengths:              strengths,
		Weaknesses:             weaknesses,
		ImprovementSuggestions: suggestions(avg, categoryScores),
		PlacementReady:         placementTier(avg),
		TotalQuestions:         len(questions),
		QuestionsAnswered:      len(responses),
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// letterGrade maps the 0-10 mean onto the fixed grade ladder.
func letterGrade(avg float64) string {
	switch {
	case avg >= 9:
		return "A+"
	case avg >= 8:
		return "A"
	case avg >= 7:
		return "B+"
	case avg >= 6:
		return "B"
	case avg >= 5:
		return "C+"
	case avg >= 4:
		return "C"
	case avg >= 3:
		return "D"
	default:
		return "F"
	}
}

func placementTier(avg float64) string {
	switch {
	case avg >= 7:
		return "Ready"
	case avg >= 5:
		return "Needs Work"
	default:
		return "Not Ready"
	}
}

// suggestions applies the fixed rule list, capped at maxSuggestions, with two
// fallback entries when no rule fires. Category scores here are on the 0-100
// scale.
func suggestions(avg float64, categoryScores map[string]float64) []string {
	var out []string

	if avg < 7 {
		out = append(out, "Practice answering questions out loud to improve fluency")
	}
	if v, ok := categoryScores[string(question.CategoryTechnical)]; ok && v < 60 {
		out = append(out, "Review core technical concepts and practice coding problems")
	}
	if v, ok := categoryScores[string(question.CategoryBehavioral)]; ok && v < 60 {
		out = append(out, "Prepare STAR method responses for behavioral questions")
	}
	if v, ok := categoryScores[string(question.CategoryProject)]; ok && v < 60 {
		out = append(out, "Be ready to discuss your projects in detail with concrete examples")
	}
	if avg < 5 {
		out = append(out,
			"Consider taking mock interviews to build confidence",
			"Focus on providing structured, detailed responses")
	}

	if len(out) == 0 {
		out = []string{
			"Continue practicing to maintain your skills",
			"Stay updated with industry trends and new technologies",
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
