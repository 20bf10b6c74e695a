package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/ilmhub/quizhub/internal/scoring"
)

// fakeStore keeps everything in maps. Only the paths the service exercises
// are implemented.
type fakeStore struct {
	modules     map[string]Module
	days        map[string]QuizDay
	questions   map[string]Question // by question id
	submissions map[string]Submission
	upserts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		modules:     map[string]Module{},
		days:        map[string]QuizDay{},
		questions:   map[string]Question{},
		submissions: map[string]Submission{},
	}
}

func (f *fakeStore) CreateModule(ctx context.Context, m Module) (Module, error) {
	f.modules[m.ID] = m
	return m, nil
}

func (f *fakeStore) ListModules(ctx context.Context, withCreator bool) ([]Module, error) {
	out := []Module{}
	for _, m := range f.modules {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) GetModule(ctx context.Context, id string) (Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return Module{}, ErrModuleNotFound
	}
	return m, nil
}

func (f *fakeStore) UpdateModule(ctx context.Context, id, name, description string) (Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return Module{}, ErrModuleNotFound
	}
	m.Name, m.Description = name, description
	f.modules[id] = m
	return m, nil
}

func (f *fakeStore) DeleteModule(ctx context.Context, id string) error {
	if _, ok := f.modules[id]; !ok {
		return ErrModuleNotFound
	}
	delete(f.modules, id)
	return nil
}

func (f *fakeStore) CreateQuizDay(ctx context.Context, d QuizDay) (QuizDay, error) {
	f.days[d.ID] = d
	return d, nil
}

func (f *fakeStore) PatchQuizDay(ctx context.Context, id string, p QuizDayPatch) (QuizDay, error) {
	d, ok := f.days[id]
	if !ok {
		return QuizDay{}, ErrQuizDayNotFound
	}
	if p.DateLabel != nil {
		d.DateLabel = *p.DateLabel
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
	f.days[id] = d
	return d, nil
}

func (f *fakeStore) GetQuizDay(ctx context.Context, id string) (QuizDay, error) {
	d, ok := f.days[id]
	if !ok {
		return QuizDay{}, ErrQuizDayNotFound
	}
	return d, nil
}

func (f *fakeStore) ListQuizDays(ctx context.Context, moduleID string, publishedOnly bool) ([]QuizDay, error) {
	out := []QuizDay{}
	for _, d := range f.days {
		if moduleID != "" && d.ModuleID != moduleID {
			continue
		}
		if publishedOnly && !d.IsPublished {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) SetQuizDayFlag(ctx context.Context, id string, flag Flag, value bool) (QuizDay, error) {
	d, ok := f.days[id]
	if !ok {
		return QuizDay{}, ErrQuizDayNotFound
	}
	switch flag {
	case FlagPublished:
		d.IsPublished = value
	case FlagResponsesOpen:
		d.ResponsesOpen = value
	case FlagResultsPublished:
		d.ResultsPublished = value
	}
	f.days[id] = d
	return d, nil
}

func (f *fakeStore) LatestPublishedActiveDay(ctx context.Context) (QuizDay, error) {
	var best QuizDay
	found := false
	for _, d := range f.days {
		if d.IsPublished && d.IsActive && (!found || d.CreatedAt > best.CreatedAt) {
			best, found = d, true
		}
	}
	if !found {
		return QuizDay{}, ErrNoPublishedQuiz
	}
	return best, nil
}

func (f *fakeStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	f.questions[q.ID] = q
	return q, nil
}

func (f *fakeStore) ListQuestions(ctx context.Context, quizDayID string) ([]Question, error) {
	out := []Question{}
	for _, q := range f.questions {
		if q.QuizDayID == quizDayID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) GetQuestionsWithSection(ctx context.Context, ids []string) (map[string]QuestionWithSection, error) {
	out := map[string]QuestionWithSection{}
	for _, id := range ids {
		q, ok := f.questions[id]
		if !ok {
			continue
		}
		day := f.days[q.QuizDayID]
		mod := f.modules[day.ModuleID]
		out[id] = QuestionWithSection{Question: q, Section: mod.Section}
	}
	return out, nil
}

func (f *fakeStore) UpsertSubmission(ctx context.Context, s Submission) (Submission, error) {
	f.upserts++
	key := s.UserID + "|" + s.QuizDayID
	if prev, ok := f.submissions[key]; ok {
		s.ID = prev.ID
		s.CreatedAt = prev.CreatedAt
	}
	f.submissions[key] = s
	return s, nil
}

func (f *fakeStore) GetSubmission(ctx context.Context, userID, quizDayID string) (Submission, error) {
	s, ok := f.submissions[userID+"|"+quizDayID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return s, nil
}

func (f *fakeStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]Submission, error) {
	out := []Submission{}
	for _, s := range f.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubmissionsByDay(ctx context.Context, quizDayID string) ([]Submission, error) {
	return nil, nil
}

func (f *fakeStore) ListSubmissionsForModule(ctx context.Context, moduleID string) ([]Submission, error) {
	return nil, nil
}

func (f *fakeStore) ListAllSubmissions(ctx context.Context) ([]Submission, error) {
	return nil, nil
}

// seedSeeratQuiz builds a published, accepting day with one MCQ ("B" correct)
// and one fill-blank (2 / 255).
func seedSeeratQuiz(f *fakeStore) {
	f.modules["m1"] = Module{ID: "m1", Name: "Seerat Basics", Section: SectionSeerat}
	f.days["d1"] = QuizDay{
		ID: "d1", ModuleID: "m1", DateLabel: "Day 1",
		IsActive: true, IsPublished: true, ResponsesOpen: true, CreatedAt: 100,
	}
	f.questions["q1"] = Question{
		ID: "q1", QuizDayID: "d1", Text: "Pick B", QuestionType: TypeMCQ,
		Options: []string{"A", "B", "C"}, CorrectIndex: 1,
	}
	f.questions["q2"] = Question{
		ID: "q2", QuizDayID: "d1", Text: "Surah and Ayat", QuestionType: TypeFillBlank,
		CorrectAnswer1: "2", CorrectAnswer2: "255",
	}
}

func newTestService(f *fakeStore) *Service {
	return NewService(f, scoring.NewDefaultGrader(), nil)
}

func TestSubmitScoresBySection(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	view, err := svc.FetchQuiz(ctx, "u1", "d1")
	if err != nil {
		t.Fatalf("fetch quiz: %v", err)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(view.Questions))
	}

	// Locate "B" in the displayed option order.
	var mcqView QuestionView
	for _, q := range view.Questions {
		if q.QuestionType == TypeMCQ {
			mcqView = q
		}
	}
	pos := -1
	for i, opt := range mcqView.Options {
		if opt == "B" {
			pos = i
		}
	}
	if pos < 0 {
		t.Fatalf("option B missing from %v", mcqView.Options)
	}

	sub, err := svc.Submit(ctx, "u1", SubmitRequest{
		QuizDayID: "d1",
		Answers: []SubmitAnswer{
			{QuestionID: "q1", SelectedIndex: &pos},
			{QuestionID: "q2", UserAnswer1: "2", UserAnswer2: "255"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.TotalScore != 2 {
		t.Fatalf("totalScore = %d, want 2", sub.TotalScore)
	}
	if sub.SectionScores[SectionSeerat] != 2 {
		t.Fatalf("sectionScores[Seerat] = %d, want 2", sub.SectionScores[SectionSeerat])
	}
}

func TestSubmitStoresOriginalIndex(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	view, _ := svc.FetchQuiz(ctx, "u1", "d1")
	var pos int
	for _, q := range view.Questions {
		if q.QuestionType != TypeMCQ {
			continue
		}
		for i, opt := range q.Options {
			if opt == "B" {
				pos = i
			}
		}
	}
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{
		QuizDayID: "d1",
		Answers:   []SubmitAnswer{{QuestionID: "q1", SelectedIndex: &pos}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored := f.submissions["u1|d1"]
	for _, a := range stored.Answers {
		if a.QuestionID == "q1" {
			if a.SelectedIndex == nil || *a.SelectedIndex != 1 {
				t.Fatalf("stored index = %v, want original index 1", a.SelectedIndex)
			}
			if !a.IsCorrect {
				t.Fatalf("expected answer marked correct")
			}
		}
	}
}

func TestFetchPrefillMapsToDisplayOrder(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	orig := 1
	f.submissions["u1|d1"] = Submission{
		ID: "s1", UserID: "u1", QuizDayID: "d1",
		Answers:       []AnswerRecord{{QuestionID: "q1", SelectedIndex: &orig, IsCorrect: true}},
		SectionScores: map[string]int{SectionSeerat: 1},
		TotalScore:    1,
	}

	view, err := svc.FetchQuiz(ctx, "u1", "d1")
	if err != nil {
		t.Fatalf("fetch quiz: %v", err)
	}
	if view.Submission == nil {
		t.Fatalf("expected existing submission in view")
	}
	var mcq QuestionView
	for _, q := range view.Questions {
		if q.QuestionType == TypeMCQ {
			mcq = q
		}
	}
	got := view.Submission.Answers[0].SelectedIndex
	if got == nil {
		t.Fatalf("prefill index missing")
	}
	if mcq.Options[*got] != "B" {
		t.Fatalf("prefill points at %q, want B", mcq.Options[*got])
	}
}

func TestFetchQuizDaySelection(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	// Unpublished explicit day is treated as no quiz.
	f.days["d2"] = QuizDay{ID: "d2", ModuleID: "m1", IsActive: true, IsPublished: false}
	if _, err := svc.FetchQuiz(ctx, "u1", "d2"); !errors.Is(err, ErrNoPublishedQuiz) {
		t.Fatalf("expected ErrNoPublishedQuiz for unpublished day, got %v", err)
	}

	// Without an id the latest published active day wins.
	f.days["d3"] = QuizDay{
		ID: "d3", ModuleID: "m1", IsActive: true, IsPublished: true,
		ResponsesOpen: true, CreatedAt: 200,
	}
	view, err := svc.FetchQuiz(ctx, "u1", "")
	if err != nil {
		t.Fatalf("fetch latest: %v", err)
	}
	if view.QuizDay.ID != "d3" {
		t.Fatalf("selected day %s, want d3", view.QuizDay.ID)
	}
}

func TestSubmitGates(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	var vErr ValidationError
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{QuizDayID: ""}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for missing day, got %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{QuizDayID: "nope"}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for unknown day, got %v", err)
	}

	d := f.days["d1"]
	d.IsPublished = false
	f.days["d1"] = d
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{QuizDayID: "d1"}); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}

	d.IsPublished = true
	d.ResponsesOpen = false
	f.days["d1"] = d
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{QuizDayID: "d1"}); !errors.Is(err, ErrResponsesClosed) {
		t.Fatalf("expected ErrResponsesClosed, got %v", err)
	}
	if f.upserts != 0 {
		t.Fatalf("no submission may be written on a rejected submit")
	}
}

func TestSubmitDropsUnknownQuestions(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)

	sub, err := svc.Submit(context.Background(), "u1", SubmitRequest{
		QuizDayID: "d1",
		Answers: []SubmitAnswer{
			{QuestionID: "ghost"},
			{QuestionID: "q2", UserAnswer1: "2", UserAnswer2: "255"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sub.Answers) != 1 {
		t.Fatalf("expected unknown question dropped, got %d answers", len(sub.Answers))
	}
	if sub.TotalScore != 1 {
		t.Fatalf("totalScore = %d, want 1", sub.TotalScore)
	}
}

func TestSubmitPreservesTimeTaken(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	secs := 90
	if _, err := svc.Submit(ctx, "u1", SubmitRequest{
		QuizDayID:        "d1",
		Answers:          []SubmitAnswer{{QuestionID: "q2", UserAnswer1: "2", UserAnswer2: "255"}},
		TimeTakenSeconds: &secs,
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Resubmission without the field keeps the previous value.
	sub, err := svc.Submit(ctx, "u1", SubmitRequest{
		QuizDayID: "d1",
		Answers:   []SubmitAnswer{{QuestionID: "q2", UserAnswer1: "1", UserAnswer2: "1"}},
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if sub.TimeTakenSeconds != 90 {
		t.Fatalf("timeTakenSeconds = %d, want 90", sub.TimeTakenSeconds)
	}
	if sub.TotalScore != 0 {
		t.Fatalf("replacement answers must be rescored, got %d", sub.TotalScore)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	var vErr ValidationError
	_, err := svc.CreateQuestion(ctx, CreateQuestionRequest{
		QuizDayID: "d1", Text: "bad", QuestionType: TypeMCQ,
		Options: []string{"only one"}, CorrectIndex: 0,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected option count rejection, got %v", err)
	}

	_, err = svc.CreateQuestion(ctx, CreateQuestionRequest{
		QuizDayID: "d1", Text: "bad", QuestionType: TypeMCQ,
		Options: []string{"a", "b"}, CorrectIndex: 5,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected out-of-range index rejection, got %v", err)
	}

	_, err = svc.CreateQuestion(ctx, CreateQuestionRequest{
		QuizDayID: "d1", Text: "bad", QuestionType: TypeFillBlank,
		CorrectAnswer1: "two", CorrectAnswer2: "255",
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected digit-only rejection, got %v", err)
	}

	q, err := svc.CreateQuestion(ctx, CreateQuestionRequest{
		QuizDayID: "d1", Text: "ok", QuestionType: TypeFillBlank,
		CorrectAnswer1: " 2 ", CorrectAnswer2: "255",
	})
	if err != nil {
		t.Fatalf("create fillblank: %v", err)
	}
	if q.CorrectAnswer1 != "2" {
		t.Fatalf("expected trimmed stored answer, got %q", q.CorrectAnswer1)
	}
}

func TestUpsertQuizDayPatchKeepsModule(t *testing.T) {
	f := newFakeStore()
	seedSeeratQuiz(f)
	svc := newTestService(f)
	ctx := context.Background()

	label := "Day 1 revised"
	d, err := svc.UpsertQuizDay(ctx, UpsertQuizDayRequest{ID: "d1", ModuleID: "other", DateLabel: &label})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if d.DateLabel != "Day 1 revised" {
		t.Fatalf("dateLabel = %q", d.DateLabel)
	}
	if d.ModuleID != "m1" {
		t.Fatalf("patch moved the day to module %q", d.ModuleID)
	}
}

func TestPublishedListingAcceptingResponses(t *testing.T) {
	f := newFakeStore()
	f.modules["m1"] = Module{ID: "m1", Name: "Seerat Basics", Section: SectionSeerat}
	f.days["open"] = QuizDay{
		ID: "open", ModuleID: "m1", DateLabel: "Day 1",
		IsActive: false, IsPublished: true, ResponsesOpen: true,
	}
	f.days["closed"] = QuizDay{
		ID: "closed", ModuleID: "m1", DateLabel: "Day 2",
		IsActive: true, IsPublished: true, ResponsesOpen: false,
	}
	f.days["draft"] = QuizDay{
		ID: "draft", ModuleID: "m1", DateLabel: "Day 3",
		IsActive: true, IsPublished: false, ResponsesOpen: true,
	}
	svc := newTestService(f)

	days, err := svc.ListPublishedQuizDays(context.Background(), "m1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	for _, d := range days {
		if d.AcceptingResponses == nil {
			t.Fatalf("day %s missing acceptingResponses", d.ID)
		}
		// Only the responses flag decides; an inactive day still accepts.
		switch d.ID {
		case "open":
			if !*d.AcceptingResponses {
				t.Fatal("inactive day with open responses should accept")
			}
		case "closed":
			if *d.AcceptingResponses {
				t.Fatal("closed day should not accept")
			}
		}
	}
}
