package question

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/prepverse/interview-gateway/internal/profile"
)

// InterviewType is the requested interview composition.
type InterviewType string

const (
	TypeTechnical     InterviewType = "technical"
	TypeBehavioral    InterviewType = "behavioral"
	TypeProject       InterviewType = "project"
	TypeScenarioMixed InterviewType = "scenario-mixed"
	TypeBalancedMixed InterviewType = "balanced-mixed"
)

// ParseInterviewType maps a wire string to an InterviewType, defaulting to
// balanced-mixed for unknown or empty values.
func ParseInterviewType(s string) InterviewType {
	switch InterviewType(s) {
	case TypeTechnical, TypeBehavioral, TypeProject, TypeScenarioMixed, TypeBalancedMixed:
		return InterviewType(s)
	}
	return TypeBalancedMixed
}

// Proportional weights for balanced-mixed interviews.
const (
	weightTechnical  = 0.4
	weightBehavioral = 0.3
	weightProject    = 0.2
	weightScenario   = 0.1
)

// maxSkillBuckets caps how many profile skills drive skill-keyed selection.
const maxSkillBuckets = 5

// Request describes one question-selection invocation.
type Request struct {
	Candidate    *profile.Candidate
	Type         InterviewType
	NumQuestions int
}

// Selector generates an ordered, deduplicated question list from the template
// bank. The random source is injected so a fixed seed reproduces the exact
// same list.
type Selector struct {
	bank *Bank
	rng  *rand.Rand
}

// NewSelector creates a selector over the given bank and random source.
func NewSelector(bank *Bank, rng *rand.Rand) *Selector {
	return &Selector{bank: bank, rng: rng}
}

// Select produces at most req.NumQuestions questions, numbered 1..N in
// shuffled order. Literal question text never repeats within one call.
// Exhausted buckets fall back to the other categories; selection never fails.
func (s *Selector) Select(req Request) []Question {
	n := req.NumQuestions
	if n <= 0 {
		return nil
	}
	cand := req.Candidate
	if cand == nil {
		cand = &profile.Candidate{}
	}

	used := make(map[string]bool)
	var questions []Question

	switch req.Type {
	case TypeTechnical:
		questions = s.selectTechnical(n, cand.TechnicalSkills, used)
	case TypeBehavioral:
		questions = s.draw(s.behavioralPool(), n, used)
	case TypeProject:
		questions = s.draw(s.projectPool(cand.ProjectNames()), n, used)
	case TypeScenarioMixed:
		questions = s.draw(s.scenarioPool(), n, used)
	default: // balanced-mixed
		questions = s.selectBalanced(n, cand, used)
	}

	// Cross-category fill when the primary buckets run dry.
	if len(questions) < n {
		questions = append(questions, s.selectTechnical(n-len(questions), cand.TechnicalSkills, used)...)
	}
	if len(questions) < n {
		questions = append(questions, s.draw(s.behavioralPool(), n-len(questions), used)...)
	}
	if len(questions) < n {
		questions = append(questions, s.draw(s.scenarioPool(), n-len(questions), used)...)
	}

	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > n {
		questions = questions[:n]
	}
	for i := range questions {
		questions[i].Number = i + 1
	}
	return questions
}

// selectBalanced applies the fixed proportional weights. Each weighted
// category gets a floor of one question when the profile supports it; the
// project share shifts to technical when the candidate lists no projects.
func (s *Selector) selectBalanced(n int, cand *profile.Candidate, used map[string]bool) []Question {
	techCount := atLeastOne(weightTechnical, n)
	behCount := atLeastOne(weightBehavioral, n)
	projCount := 0
	if len(cand.Projects) > 0 {
		projCount = atLeastOne(weightProject, n)
	}
	scenCount := atLeastOne(weightScenario, n)

	if rest := n - behCount - projCount - scenCount; rest > techCount {
		techCount = rest // technical absorbs the remainder
	}

	out := s.selectTechnical(techCount, cand.TechnicalSkills, used)
	out = append(out, s.draw(s.behavioralPool(), behCount, used)...)
	out = append(out, s.draw(s.projectPool(cand.ProjectNames()), projCount, used)...)
	out = append(out, s.draw(s.scenarioPool(), scenCount, used)...)
	return out
}

func atLeastOne(weight float64, n int) int {
	c := int(weight * float64(n))
	if c < 1 {
		c = 1
	}
	return c
}

// selectTechnical prefers templates keyed by the candidate's own skills, in
// profile order, before falling back to the generic bucket and finally to the
// remaining skill buckets.
func (s *Selector) selectTechnical(n int, skills []string, used map[string]bool) []Question {
	var out []Question

	if len(skills) > maxSkillBuckets {
		skills = skills[:maxSkillBuckets]
	}
	for _, skill := range skills {
		if len(out) >= n {
			break
		}
		pool := s.skillPool(strings.ToLower(skill), skill)
		out = append(out, s.draw(pool, 1, used)...)
	}

	if len(out) < n {
		out = append(out, s.draw(s.skillPool("general", "general"), n-len(out), used)...)
	}

	if len(out) < n {
		keys := make([]string, 0, len(s.bank.Technical))
		for k := range s.bank.Technical {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(out) >= n {
				break
			}
			out = append(out, s.draw(s.skillPool(k, k), n-len(out), used)...)
		}
	}
	return out
}

// candidate is one drawable question with its text already rendered.
type candidate struct {
	text     string
	keywords []string
	declared Difficulty
	category Category
	skill    string
}

// draw picks up to n unused entries from the pool in random order.
func (s *Selector) draw(pool []candidate, n int, used map[string]bool) []Question {
	var out []Question
	for _, i := range s.rng.Perm(len(pool)) {
		if len(out) >= n {
			break
		}
		c := pool[i]
		if used[c.text] {
			continue
		}
		used[c.text] = true
		out = append(out, Question{
			Text:        c.text,
			Category:    c.category,
			SkillTested: c.skill,
			Difficulty:  s.difficultyFor(c.declared),
			Keywords:    c.keywords,
		})
	}
	return out
}

// difficultyFor honors a template-declared difficulty, otherwise draws from
// the fixed 30/40/30 distribution.
func (s *Selector) difficultyFor(declared Difficulty) Difficulty {
	if declared != "" {
		return declared
	}
	switch r := s.rng.Float64(); {
	case r < 0.3:
		return DifficultyEasy
	case r < 0.7:
		return DifficultyMedium
	default:
		return DifficultyAdvanced
	}
}

func (s *Selector) skillPool(bucket, skill string) []candidate {
	templates := s.bank.Technical[bucket]
	pool := make([]candidate, 0, len(templates))
	for _, t := range templates {
		pool = append(pool, candidate{
			text:     t.Text,
			keywords: t.Keywords,
			declared: t.Difficulty,
			category: CategoryTechnical,
			skill:    skill,
		})
	}
	return pool
}

func (s *Selector) behavioralPool() []candidate {
	pool := make([]candidate, 0, len(s.bank.Behavioral))
	for _, t := range s.bank.Behavioral {
		pool = append(pool, candidate{
			text:     t.Text,
			keywords: t.Keywords,
			declared: t.Difficulty,
			category: CategoryBehavioral,
			skill:    "soft_skills",
		})
	}
	return pool
}

// projectPool renders every template against every project name, so the same
// template may appear once per project without repeating literal text.
func (s *Selector) projectPool(projects []string) []candidate {
	pool := make([]candidate, 0, len(projects)*len(s.bank.Project))
	for _, name := range projects {
		for _, t := range s.bank.Project {
			pool = append(pool, candidate{
				text:     strings.ReplaceAll(t.Text, "{project}", name),
				keywords: t.Keywords,
				declared: t.Difficulty,
				category: CategoryProject,
				skill:    "project",
			})
		}
	}
	return pool
}

// scenarioPool combines the scenario and problem-solving buckets.
func (s *Selector) scenarioPool() []candidate {
	pool := make([]candidate, 0, len(s.bank.Scenario)+len(s.bank.ProblemSolving))
	for _, t := range s.bank.Scenario {
		pool = append(pool, candidate{
			text:     t.Text,
			keywords: t.Keywords,
			declared: t.Difficulty,
			category: CategoryScenario,
			skill:    "problem_solving",
		})
	}
	for _, t := range s.bank.ProblemSolving {
		pool = append(pool, candidate{
			text:     t.Text,
			keywords: t.Keywords,
			declared: t.Difficulty,
			category: CategoryProblemSolving,
			skill:    "problem_solving",
		})
	}
	return pool
}
