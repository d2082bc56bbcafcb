package question

// Category classifies a question.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryBehavioral     Category = "behavioral"
	CategoryProject        Category = "project"
	CategoryScenario       Category = "scenario"
	CategoryProblemSolving Category = "problem_solving"
)

// Categories lists all categories in a fixed order. Report aggregation and
// selector fill both depend on this order being stable.
var Categories = []Category{
	CategoryTechnical,
	CategoryBehavioral,
	CategoryProject,
	CategoryScenario,
	CategoryProblemSolving,
}

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyAdvanced Difficulty = "advanced"
)

// Question is one generated interview question. Immutable once selected.
// Keywords are used only for scoring and are never sent to the candidate.
type Question struct {
	Number      int        `json:"question_number"`
	Text        string     `json:"question_text"`
	Category    Category   `json:"question_type"`
	SkillTested string     `json:"skill_tested"`
	Difficulty  Difficulty `json:"difficulty"`
	Keywords    []string   `json:"expected_keywords"`
}
