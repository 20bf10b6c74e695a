package leaderboard

import (
	"context"
	"testing"

	"github.com/ilmhub/quizhub/internal/quiz"
)

type fakeSource struct {
	all      []quiz.Submission
	byModule map[string][]quiz.Submission
	calls    int
}

func (f *fakeSource) ListAllSubmissions(ctx context.Context) ([]quiz.Submission, error) {
	f.calls++
	return f.all, nil
}

func (f *fakeSource) ListSubmissionsForModule(ctx context.Context, moduleID string) ([]quiz.Submission, error) {
	f.calls++
	return f.byModule[moduleID], nil
}

func (f *fakeSource) ListSubmissionsByDay(ctx context.Context, quizDayID string) ([]quiz.Submission, error) {
	return nil, nil
}

func sub(user, name string, total int, answers int, sections map[string]int) quiz.Submission {
	recs := make([]quiz.AnswerRecord, answers)
	return quiz.Submission{
		UserID: user, UserName: name, Answers: recs,
		TotalScore: total, SectionScores: sections,
	}
}

func TestEvaluateModuleAveragePercent(t *testing.T) {
	src := &fakeSource{byModule: map[string][]quiz.Submission{
		"m1": {
			sub("u1", "Aisha", 3, 4, nil),
			sub("u1", "Aisha", 1, 4, nil),
			sub("u2", "Bilal", 2, 2, nil),
		},
	}}
	agg := NewAggregator(src)

	eval, err := agg.EvaluateModule(context.Background(), "m1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.TotalParticipants != 2 {
		t.Fatalf("totalParticipants = %d", eval.TotalParticipants)
	}

	// u1: 4/8 answered correctly = 50%. u2: 2/2 = 100%. Sort is by total
	// score, so u1 (4 points) leads u2 (2 points) despite the lower percent.
	top := eval.Participants[0]
	if top.UserID != "u1" || top.TotalScore != 4 || top.QuizDaysCompleted != 2 {
		t.Fatalf("unexpected top row: %+v", top)
	}
	if top.AveragePercent != 50 {
		t.Fatalf("averagePercent = %v, want 50", top.AveragePercent)
	}
	if eval.Participants[1].AveragePercent != 100 {
		t.Fatalf("u2 averagePercent = %v, want 100", eval.Participants[1].AveragePercent)
	}
}

func TestEvaluateModuleZeroQuestions(t *testing.T) {
	src := &fakeSource{byModule: map[string][]quiz.Submission{
		"m1": {sub("u1", "Aisha", 0, 0, nil)},
	}}
	eval, err := NewAggregator(src).EvaluateModule(context.Background(), "m1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Participants[0].AveragePercent != 0 {
		t.Fatalf("zero questions must yield zero percent, got %v", eval.Participants[0].AveragePercent)
	}
}

func TestGlobalAverageScore(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 3, 3, map[string]int{"Quran": 3}),
		sub("u1", "Aisha", 1, 3, map[string]int{"Seerat": 1}),
		sub("u2", "Bilal", 3, 3, map[string]int{"Seerat": 3}),
	}}
	rows, err := NewAggregator(src).Global(context.Background(), "")
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if rows[0].UserID != "u1" {
		t.Fatalf("u1 (4 points) should lead, got %s", rows[0].UserID)
	}
	// Average here is points per quiz taken, not a percentage.
	if rows[0].QuizzesTaken != 2 || rows[0].AverageScore != 2 {
		t.Fatalf("u1 aggregation wrong: %+v", rows[0])
	}
	if rows[0].SectionScores["Quran"] != 3 || rows[0].SectionScores["Seerat"] != 1 {
		t.Fatalf("section sums wrong: %v", rows[0].SectionScores)
	}
}

func TestSectionFilterReranks(t *testing.T) {
	src := &fakeSource{all: []quiz.Submission{
		sub("u1", "Aisha", 5, 5, map[string]int{"Quran": 5}),
		sub("u2", "Bilal", 3, 3, map[string]int{"Seerat": 3}),
	}}
	agg := NewAggregator(src)

	all, _ := agg.Global(context.Background(), SectionAll)
	if all[0].UserID != "u1" {
		t.Fatalf("overall leader should be u1")
	}

	seerat, _ := agg.Global(context.Background(), "Seerat")
	if seerat[0].UserID != "u2" {
		t.Fatalf("Seerat filter should promote u2, got %s", seerat[0].UserID)
	}
}
