package scoring

import (
	"errors"
	"strings"
)

// Q is a minimal view of a question needed for scoring.
type Q struct {
	Type           string // "mcq" or "fillblank"
	CorrectIndex   int    // mcq: zero-based index into the stored option order
	CorrectAnswer1 string // fillblank: expected Surah number
	CorrectAnswer2 string // fillblank: expected Ayat number
}

// Answer is one submitted answer, already mapped to the stored option order for MCQ.
type Answer struct {
	SelectedIndex *int
	Answer1       string
	Answer2       string
}

type Result struct {
	Correct bool
}

// Strategy scores a single question type.
type Strategy interface {
	Grade(q Q, ans Answer) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, ans Answer) (Result, error)
}

var ErrUnknownType = errors.New("unknown question type")

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, ans Answer) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, ErrUnknownType
	}
	return s.Grade(q, ans)
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"mcq":       mcqStrategy{},
			"fillblank": fillBlankStrategy{},
		},
	}
}

type mcqStrategy struct{}

func (mcqStrategy) Grade(q Q, ans Answer) (Result, error) {
	if ans.SelectedIndex == nil {
		return Result{}, nil
	}
	return Result{Correct: *ans.SelectedIndex == q.CorrectIndex}, nil
}

type fillBlankStrategy struct{}

// Both fields must match the stored values exactly after trimming. No numeric
// coercion: "07" does not match "7".
func (fillBlankStrategy) Grade(q Q, ans Answer) (Result, error) {
	ok := strings.TrimSpace(ans.Answer1) == q.CorrectAnswer1 &&
		strings.TrimSpace(ans.Answer2) == q.CorrectAnswer2
	return Result{Correct: ok}, nil
}
