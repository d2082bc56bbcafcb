// Package score implements the deterministic answer scorer and the final
// report aggregator. Both are pure: same questions and transcripts always
// produce the same numbers.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/prepverse/interview-gateway/internal/question"
)

// Component weights of the final score.
const (
	keywordWeight   = 0.4
	lengthWeight    = 0.2
	structureWeight = 0.3
	bonusWeight     = 0.1
)

// minAnswerLen is the trimmed-transcript length below which the answer is
// rejected outright with a fixed score of 2.0.
const minAnswerLen = 10

// technicalTerms raise the category bonus for technical questions.
var technicalTerms = []string{
	"algorithm", "function", "class", "method", "database", "api", "server", "client",
}

// starTerms are STAR-method markers counted for behavioral questions.
var starTerms = []string{"situation", "task", "action", "result", "we", "team", "i"}

var causalMarkers = []string{"for example", "such as", "because", "therefore"}

var ordinalMarkers = []string{"first", "second", "third", "step"}

// Evaluation is the scored result for a single answer.
type Evaluation struct {
	Score            float64 `json:"score"`
	BriefFeedback    string  `json:"brief_feedback"`
	DetailedFeedback string  `json:"detailed_feedback"`
	KeywordMatches   int     `json:"keyword_matches"`
}

// Evaluate scores an answer transcript against its question. The score is in
// [1, 10] with one decimal place.
func Evaluate(q question.Question, answer string) Evaluation {
	if len(strings.TrimSpace(answer)) < minAnswerLen {
		return Evaluation{
			Score:            2.0,
			BriefFeedback:    "Response too short",
			DetailedFeedback: "Please provide a more detailed answer.",
		}
	}

	lower := strings.ToLower(answer)

	keywordScore := 5.0
	matches := 0
	if len(q.Keywords) > 0 {
		for _, kw := range q.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matches++
			}
		}
		keywordScore = float64(matches) / float64(len(q.Keywords)) * 10
	}

	wordCount := len(strings.Fields(answer))
	lengthScore := math.Min(10, float64(wordCount)/10)

	structureScore := 5.0
	if containsAny(lower, causalMarkers) {
		structureScore += 2
	}
	if containsAny(lower, ordinalMarkers) {
		structureScore += 2
	}
	if strings.Contains(answer, "?") {
		structureScore++
	}

	var bonus float64
	switch q.Category {
	case question.CategoryTechnical:
		for _, term := range technicalTerms {
			if strings.Contains(lower, term) {
				bonus++
			}
		}
	case question.CategoryBehavioral:
		for _, term := range starTerms {
			if strings.Contains(lower, term) {
				bonus += 0.5
			}
		}
	}

	raw := keywordScore*keywordWeight + lengthScore*lengthWeight +
		structureScore*structureWeight + bonus*bonusWeight
	final := round1(math.Max(1, math.Min(10, raw)))

	return Evaluation{
		Score:            final,
		BriefFeedback:    briefFeedback(final),
		DetailedFeedback: detailedFeedback(final, wordCount, q.Keywords, lower),
		KeywordMatches:   matches,
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// briefFeedback maps a score onto the fixed feedback ladder.
func briefFeedback(score float64) string {
	switch {
	case score >= 8:
		return "Excellent response!"
	case score >= 6:
		return "Good answer, could add more detail."
	case score >= 4:
		return "Adequate, but needs improvement."
	default:
		return "Needs significant improvement."
	}
}

func detailedFeedback(score float64, wordCount int, keywords []string, lowerAnswer string) string {
	var parts []string

	switch {
	case score >= 8:
		parts = append(parts, "Great job! Your response was comprehensive and well-structured.")
	case score >= 6:
		parts = append(parts, "Good response.")
	default:
		parts = append(parts, "Your response could be improved.")
	}

	if wordCount < 30 {
		parts = append(parts, "Try to provide more detailed explanations.")
	}

	var missed []string
	for _, kw := range keywords {
		if !strings.Contains(lowerAnswer, strings.ToLower(kw)) {
			missed = append(missed, kw)
		}
	}
	if len(missed) > 0 {
		if len(missed) > 3 {
			missed = missed[:3]
		}
		parts = append(parts, fmt.Sprintf("Consider mentioning: %s", strings.Join(missed, ", ")))
	}

	return strings.Join(parts, " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
