package leaderboard

import (
	"context"
	"sort"

	"github.com/ilmhub/quizhub/internal/quiz"
)

// SubmissionSource is the slice of the quiz store the aggregator reads from.
type SubmissionSource interface {
	ListAllSubmissions(ctx context.Context) ([]quiz.Submission, error)
	ListSubmissionsForModule(ctx context.Context, moduleID string) ([]quiz.Submission, error)
	ListSubmissionsByDay(ctx context.Context, quizDayID string) ([]quiz.Submission, error)
}

// EvaluationRow is one participant in a module evaluation. AveragePercent is
// totalScore over total questions answered, as a percentage. This is a
// different metric from the leaderboard's AverageScore; keep them apart.
type EvaluationRow struct {
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	TotalScore        int     `json:"totalScore"`
	TotalQuestions    int     `json:"totalQuestions"`
	QuizDaysCompleted int     `json:"quizDaysCompleted"`
	AveragePercent    float64 `json:"averagePercent"`
}

type ModuleEvaluation struct {
	Participants      []EvaluationRow `json:"participants"`
	TotalParticipants int             `json:"totalParticipants"`
}

// Row is one participant on a leaderboard. AverageScore is totalScore over
// quizzes taken (points per quiz, not a percentage).
type Row struct {
	UserID        string         `json:"userId"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	TotalScore    int            `json:"totalScore"`
	QuizzesTaken  int            `json:"quizzesTaken"`
	AverageScore  float64        `json:"averageScore"`
	SectionScores map[string]int `json:"sectionScores"`
}

type Aggregator struct {
	source SubmissionSource
}

func NewAggregator(source SubmissionSource) *Aggregator {
	return &Aggregator{source: source}
}

// EvaluateModule groups a module's submissions by user and computes per-user
// totals, sorted by total score descending.
func (a *Aggregator) EvaluateModule(ctx context.Context, moduleID string) (ModuleEvaluation, error) {
	subs, err := a.source.ListSubmissionsForModule(ctx, moduleID)
	if err != nil {
		return ModuleEvaluation{}, err
	}
	byUser := map[string]*EvaluationRow{}
	order := []string{}
	for _, s := range subs {
		r, ok := byUser[s.UserID]
		if !ok {
			r = &EvaluationRow{UserID: s.UserID, Name: s.UserName, Email: s.UserEmail}
			byUser[s.UserID] = r
			order = append(order, s.UserID)
		}
		r.TotalScore += s.TotalScore
		r.TotalQuestions += len(s.Answers)
		r.QuizDaysCompleted++
	}
	rows := make([]EvaluationRow, 0, len(order))
	for _, id := range order {
		r := byUser[id]
		if r.TotalQuestions > 0 {
			r.AveragePercent = float64(r.TotalScore) / float64(r.TotalQuestions) * 100
		}
		rows = append(rows, *r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalScore > rows[j].TotalScore })
	return ModuleEvaluation{Participants: rows, TotalParticipants: len(rows)}, nil
}

// SectionAll disables section filtering.
const SectionAll = "All"

// Global builds the all-time leaderboard across every module.
func (a *Aggregator) Global(ctx context.Context, section string) ([]Row, error) {
	subs, err := a.source.ListAllSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return buildRows(subs, section), nil
}

// Module builds the leaderboard restricted to one module's submissions.
func (a *Aggregator) Module(ctx context.Context, moduleID, section string) ([]Row, error) {
	subs, err := a.source.ListSubmissionsForModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	return buildRows(subs, section), nil
}

// ParticipantsByDay lists a day's submissions already ranked by the store
// (score descending, then time ascending).
func (a *Aggregator) ParticipantsByDay(ctx context.Context, quizDayID string) ([]quiz.Submission, error) {
	return a.source.ListSubmissionsByDay(ctx, quizDayID)
}

func buildRows(subs []quiz.Submission, section string) []Row {
	byUser := map[string]*Row{}
	order := []string{}
	for _, s := range subs {
		r, ok := byUser[s.UserID]
		if !ok {
			r = &Row{UserID: s.UserID, Name: s.UserName, Email: s.UserEmail, SectionScores: map[string]int{}}
			byUser[s.UserID] = r
			order = append(order, s.UserID)
		}
		r.TotalScore += s.TotalScore
		r.QuizzesTaken++
		for sec, n := range s.SectionScores {
			r.SectionScores[sec] += n
		}
	}
	rows := make([]Row, 0, len(order))
	for _, id := range order {
		r := byUser[id]
		if r.QuizzesTaken > 0 {
			r.AverageScore = float64(r.TotalScore) / float64(r.QuizzesTaken)
		}
		rows = append(rows, *r)
	}
	if section == "" || section == SectionAll {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalScore > rows[j].TotalScore })
	} else {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].SectionScores[section] > rows[j].SectionScores[section]
		})
	}
	return rows
}
