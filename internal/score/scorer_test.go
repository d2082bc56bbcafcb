package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepverse/interview-gateway/internal/question"
)

func TestEvaluateShortAnswer(t *testing.T) {
	q := question.Question{Text: "Explain goroutines.", Category: question.CategoryTechnical}

	eval := Evaluate(q, "   yes   ")

	assert.Equal(t, 2.0, eval.Score)
	assert.Equal(t, "Response too short", eval.BriefFeedback)
	assert.Equal(t, 0, eval.KeywordMatches)
}

func TestEvaluateNoKeywordsNoStructure(t *testing.T) {
	q := question.Question{
		Text:     "Walk me through your project.",
		Category: question.CategoryProject,
		Keywords: []string{"kubernetes", "docker", "helm"},
	}
	// 50 words, zero keyword hits, no structure markers, no category bonus:
	// 0*0.4 + 5.0*0.2 + 5.0*0.3 = 2.5
	answer := strings.Repeat("detail ", 50)

	eval := Evaluate(q, answer)

	assert.Equal(t, 2.5, eval.Score)
	assert.Equal(t, 0, eval.KeywordMatches)
	assert.Equal(t, "Needs significant improvement.", eval.BriefFeedback)
	assert.Contains(t, eval.DetailedFeedback, "Consider mentioning: kubernetes, docker, helm")
}

func TestEvaluateAllKeywordsMatched(t *testing.T) {
	q := question.Question{
		Text:     "How would you count duplicates efficiently?",
		Category: question.CategoryTechnical,
		Keywords: []string{"hash map", "O(n)"},
	}

	eval := Evaluate(q, "I used a hash map to solve it in O(n) time")

	// 10*0.4 + 1.1*0.2 + 5*0.3 = 5.72, rounded to one decimal
	assert.Equal(t, 5.7, eval.Score)
	assert.Equal(t, 2, eval.KeywordMatches)
}

func TestEvaluateKeywordMatchIsCaseInsensitive(t *testing.T) {
	q := question.Question{
		Text:     "Describe indexing.",
		Category: question.CategoryTechnical,
		Keywords: []string{"B-Tree"},
	}

	eval := Evaluate(q, "a b-tree keeps lookups logarithmic")

	assert.Equal(t, 1, eval.KeywordMatches)
}

func TestEvaluateStructureAndBonus(t *testing.T) {
	q := question.Question{
		Text:     "Tell me about a conflict on your team.",
		Category: question.CategoryBehavioral,
	}
	answer := "First I assessed the situation, because the task was urgent. " +
		"The team agreed on an action and the result was a smoother release. " +
		"We debriefed afterwards to capture what we learned from it all."

	eval := Evaluate(q, answer)

	// No keywords declared, so the keyword component stays at the neutral 5.0.
	// Structure hits both marker families; every STAR term appears.
	require.Greater(t, eval.Score, 5.0)
	assert.LessOrEqual(t, eval.Score, 10.0)
}

func TestEvaluateHighScore(t *testing.T) {
	q := question.Question{Category: question.CategoryTechnical, Keywords: []string{"api"}}
	// Full keyword and length credit, every structure marker, maximum
	// technical bonus: 10*0.4 + 10*0.2 + 10*0.3 + 8*0.1 = 9.8.
	answer := strings.Repeat("the api server client database function method class algorithm because first ", 30) + "right?"

	eval := Evaluate(q, answer)

	assert.Equal(t, 9.8, eval.Score)
	assert.Equal(t, "Excellent response!", eval.BriefFeedback)
}

func TestEvaluateDeterministic(t *testing.T) {
	q := question.Question{
		Text:     "Explain closures.",
		Category: question.CategoryTechnical,
		Keywords: []string{"scope", "function"},
	}
	answer := "A closure is a function that captures variables from its enclosing scope."

	first := Evaluate(q, answer)
	second := Evaluate(q, answer)

	assert.Equal(t, first, second)
}
