package quiz

import "context"

// Flag columns an admin can toggle independently on a quiz day.
type Flag string

const (
	FlagPublished        Flag = "is_published"
	FlagResponsesOpen    Flag = "responses_open"
	FlagResultsPublished Flag = "results_published"
)

type QuizDayPatch struct {
	DateLabel *string
	IsActive  *bool
}

// QuestionWithSection pairs a question with its owning module's section,
// resolved through question -> quiz day -> module.
type QuestionWithSection struct {
	Question
	Section string
}

type Store interface {
	// Modules
	CreateModule(ctx context.Context, m Module) (Module, error)
	ListModules(ctx context.Context, withCreator bool) ([]Module, error)
	GetModule(ctx context.Context, id string) (Module, error)
	UpdateModule(ctx context.Context, id, name, description string) (Module, error)
	DeleteModule(ctx context.Context, id string) error

	// Quiz days
	CreateQuizDay(ctx context.Context, d QuizDay) (QuizDay, error)
	PatchQuizDay(ctx context.Context, id string, p QuizDayPatch) (QuizDay, error)
	GetQuizDay(ctx context.Context, id string) (QuizDay, error)
	ListQuizDays(ctx context.Context, moduleID string, publishedOnly bool) ([]QuizDay, error)
	SetQuizDayFlag(ctx context.Context, id string, flag Flag, value bool) (QuizDay, error)
	LatestPublishedActiveDay(ctx context.Context) (QuizDay, error)

	// Questions
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	ListQuestions(ctx context.Context, quizDayID string) ([]Question, error)
	GetQuestionsWithSection(ctx context.Context, ids []string) (map[string]QuestionWithSection, error)

	// Submissions
	UpsertSubmission(ctx context.Context, s Submission) (Submission, error)
	GetSubmission(ctx context.Context, userID, quizDayID string) (Submission, error)
	ListSubmissionsByUser(ctx context.Context, userID string) ([]Submission, error)
	ListSubmissionsByDay(ctx context.Context, quizDayID string) ([]Submission, error)
	ListSubmissionsForModule(ctx context.Context, moduleID string) ([]Submission, error)
	ListAllSubmissions(ctx context.Context) ([]Submission, error)
}
