package quiz

import (
	"context"
	"regexp"
	"strings"

	"github.com/ilmhub/quizhub/internal/scoring"
)

// ValidationError carries a message safe to show to the client as a 400.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// EventSink records domain events for the admin audit trail.
type EventSink interface {
	Append(ctx context.Context, typ, key string, data any) error
}

type Service struct {
	store  Store
	grader scoring.Grader
	events EventSink

	// OnSubmission runs after every successful submit. Used to drop
	// cached leaderboards. Optional.
	OnSubmission func(ctx context.Context)
}

func NewService(store Store, grader scoring.Grader, events EventSink) *Service {
	return &Service{store: store, grader: grader, events: events}
}

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events != nil {
		_ = s.events.Append(ctx, typ, key, data)
	}
}

// ---- modules ----

func (s *Service) CreateModule(ctx context.Context, createdBy, name, description, section string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, ValidationError{"Name is required"}
	}
	if !ValidSection(section) {
		return Module{}, ValidationError{"Section must be Quran or Seerat"}
	}
	return s.store.CreateModule(ctx, Module{
		Name:        name,
		Description: strings.TrimSpace(description),
		Section:     section,
		CreatedBy:   createdBy,
	})
}

func (s *Service) ListModules(ctx context.Context, withCreator bool) ([]Module, error) {
	return s.store.ListModules(ctx, withCreator)
}

// ModuleDetail is a module together with its quiz days, newest first.
type ModuleDetail struct {
	Module   Module    `json:"module"`
	QuizDays []QuizDay `json:"quizDays"`
}

func (s *Service) GetModuleDetail(ctx context.Context, id string) (ModuleDetail, error) {
	m, err := s.store.GetModule(ctx, id)
	if err != nil {
		return ModuleDetail{}, err
	}
	days, err := s.store.ListQuizDays(ctx, id, false)
	if err != nil {
		return ModuleDetail{}, err
	}
	return ModuleDetail{Module: m, QuizDays: days}, nil
}

func (s *Service) UpdateModule(ctx context.Context, id, name, description string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, ValidationError{"Name is required"}
	}
	return s.store.UpdateModule(ctx, id, name, strings.TrimSpace(description))
}

func (s *Service) DeleteModule(ctx context.Context, id string) error {
	return s.store.DeleteModule(ctx, id)
}

// ---- quiz days ----

// UpsertQuizDayRequest carries both create and patch shapes: with an ID the
// label and active flag are patched, without one a new day is created under
// moduleId. A patch never moves a day to another module.
type UpsertQuizDayRequest struct {
	ID        string  `json:"id"`
	ModuleID  string  `json:"moduleId"`
	DateLabel *string `json:"dateLabel"`
	IsActive  *bool   `json:"isActive"`
}

func (s *Service) UpsertQuizDay(ctx context.Context, req UpsertQuizDayRequest) (QuizDay, error) {
	if req.ID != "" {
		return s.store.PatchQuizDay(ctx, req.ID, QuizDayPatch{DateLabel: req.DateLabel, IsActive: req.IsActive})
	}
	if req.ModuleID == "" {
		return QuizDay{}, ValidationError{"Module id is required"}
	}
	if _, err := s.store.GetModule(ctx, req.ModuleID); err != nil {
		return QuizDay{}, err
	}
	label := ""
	if req.DateLabel != nil {
		label = strings.TrimSpace(*req.DateLabel)
	}
	if label == "" {
		return QuizDay{}, ValidationError{"Date label is required"}
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.store.CreateQuizDay(ctx, QuizDay{
		ModuleID:      req.ModuleID,
		DateLabel:     label,
		IsActive:      active,
		ResponsesOpen: true,
	})
}

func (s *Service) ListQuizDays(ctx context.Context, moduleID string) ([]QuizDay, error) {
	return s.store.ListQuizDays(ctx, moduleID, false)
}

// ListPublishedQuizDays is the participant view: published days newest first,
// each annotated with whether it takes answers right now.
func (s *Service) ListPublishedQuizDays(ctx context.Context, moduleID string) ([]QuizDay, error) {
	days, err := s.store.ListQuizDays(ctx, moduleID, true)
	if err != nil {
		return nil, err
	}
	for i := range days {
		accepting := days[i].ResponsesOpen
		days[i].AcceptingResponses = &accepting
	}
	return days, nil
}

func (s *Service) SetQuizDayFlag(ctx context.Context, id string, flag Flag, value bool) (QuizDay, error) {
	d, err := s.store.SetQuizDayFlag(ctx, id, flag, value)
	if err != nil {
		return QuizDay{}, err
	}
	s.emit(ctx, "quizday.flag", d.ID, map[string]any{"flag": string(flag), "value": value})
	return d, nil
}

// ---- questions ----

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

type CreateQuestionRequest struct {
	QuizDayID    string   `json:"quizDayId"`
	Text         string   `json:"text"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`

	CorrectAnswer1 string `json:"correctAnswer1"`
	CorrectAnswer2 string `json:"correctAnswer2"`

	ReferenceType   string `json:"referenceType"`
	ReferencePdfURL string `json:"referencePdfUrl"`
	ReferencePdfKey string `json:"referencePdfKey"`
	ReferenceURL    string `json:"referenceUrl"`
	ReferenceTitle  string `json:"referenceTitle"`
}

func (s *Service) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (Question, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Question{}, ValidationError{"Question text is required"}
	}
	if _, err := s.store.GetQuizDay(ctx, req.QuizDayID); err != nil {
		return Question{}, err
	}

	q := Question{
		QuizDayID:    req.QuizDayID,
		Text:         strings.TrimSpace(req.Text),
		QuestionType: req.QuestionType,
	}
	switch req.QuestionType {
	case TypeMCQ:
		if len(req.Options) < 2 {
			return Question{}, ValidationError{"At least two options are required"}
		}
		if req.CorrectIndex < 0 || req.CorrectIndex >= len(req.Options) {
			return Question{}, ValidationError{"Correct index is out of range"}
		}
		q.Options = req.Options
		q.CorrectIndex = req.CorrectIndex
	case TypeFillBlank:
		a1 := strings.TrimSpace(req.CorrectAnswer1)
		a2 := strings.TrimSpace(req.CorrectAnswer2)
		if !digitsRe.MatchString(a1) || !digitsRe.MatchString(a2) {
			return Question{}, ValidationError{"Answers must contain digits only"}
		}
		q.CorrectAnswer1 = a1
		q.CorrectAnswer2 = a2
	default:
		return Question{}, ValidationError{"Unknown question type"}
	}

	switch req.ReferenceType {
	case "", RefNone:
		q.ReferenceType = RefNone
	case RefPDF:
		q.ReferenceType = RefPDF
		q.ReferencePdfURL = req.ReferencePdfURL
		q.ReferencePdfKey = req.ReferencePdfKey
		q.ReferenceTitle = req.ReferenceTitle
	case RefURL:
		q.ReferenceType = RefURL
		q.ReferenceURL = req.ReferenceURL
		q.ReferenceTitle = req.ReferenceTitle
	default:
		return Question{}, ValidationError{"Unknown reference type"}
	}

	return s.store.CreateQuestion(ctx, q)
}

// ---- quiz taking ----

// QuestionView is the participant-facing question: options in the user's
// display order, answer key withheld.
type QuestionView struct {
	ID           string   `json:"id"`
	QuizDayID    string   `json:"quizDayId"`
	Text         string   `json:"text"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options,omitempty"`

	ReferenceType   string `json:"referenceType"`
	ReferencePdfURL string `json:"referencePdfUrl,omitempty"`
	ReferenceURL    string `json:"referenceUrl,omitempty"`
	ReferenceTitle  string `json:"referenceTitle,omitempty"`
}

// QuizView is the fetch-quiz payload: the day, its questions, and the user's
// existing submission (if any) with MCQ selections mapped into display order
// so the client can prefill.
type QuizView struct {
	QuizDay    QuizDay        `json:"quizDay"`
	Questions  []QuestionView `json:"questions"`
	Submission *Submission    `json:"submission,omitempty"`
}

// FetchQuiz returns the requested day when it is published and active, or the
// most recently created published+active day when no id is given.
func (s *Service) FetchQuiz(ctx context.Context, userID, quizDayID string) (QuizView, error) {
	var day QuizDay
	var err error
	if quizDayID != "" {
		day, err = s.store.GetQuizDay(ctx, quizDayID)
		if err == nil && !(day.IsPublished && day.IsActive) {
			err = ErrNoPublishedQuiz
		}
	} else {
		day, err = s.store.LatestPublishedActiveDay(ctx)
	}
	if err != nil {
		return QuizView{}, err
	}

	questions, err := s.store.ListQuestions(ctx, day.ID)
	if err != nil {
		return QuizView{}, err
	}

	perms := make(map[string][]int, len(questions))
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		v := QuestionView{
			ID:              q.ID,
			QuizDayID:       q.QuizDayID,
			Text:            q.Text,
			QuestionType:    q.QuestionType,
			ReferenceType:   q.ReferenceType,
			ReferencePdfURL: q.ReferencePdfURL,
			ReferenceURL:    q.ReferenceURL,
			ReferenceTitle:  q.ReferenceTitle,
		}
		if q.QuestionType == TypeMCQ {
			perm := optionPerm(userID, day.ID, q.ID, len(q.Options))
			perms[q.ID] = perm
			v.Options = applyPerm(q.Options, perm)
		}
		views = append(views, v)
	}

	view := QuizView{QuizDay: day, Questions: views}
	sub, err := s.store.GetSubmission(ctx, userID, day.ID)
	switch err {
	case nil:
		for i, a := range sub.Answers {
			if a.SelectedIndex == nil {
				continue
			}
			if perm, ok := perms[a.QuestionID]; ok {
				pos := displayIndex(perm, *a.SelectedIndex)
				if pos >= 0 {
					sub.Answers[i].SelectedIndex = &pos
				} else {
					sub.Answers[i].SelectedIndex = nil
				}
			}
		}
		view.Submission = &sub
	case ErrSubmissionNotFound:
	default:
		return QuizView{}, err
	}
	return view, nil
}

// SubmitAnswer is one answer as sent by the client. SelectedIndex is the
// position within the displayed option order.
type SubmitAnswer struct {
	QuestionID    string `json:"question"`
	SelectedIndex *int   `json:"selectedIndex"`
	UserAnswer1   string `json:"userAnswer1"`
	UserAnswer2   string `json:"userAnswer2"`
}

type SubmitRequest struct {
	QuizDayID        string         `json:"quizDayId"`
	Answers          []SubmitAnswer `json:"answers"`
	TimeTakenSeconds *int           `json:"timeTakenSeconds"`
}

// Submit grades the answers and replaces the user's submission for the day.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest) (Submission, error) {
	if req.QuizDayID == "" {
		return Submission{}, ValidationError{"Quiz day id is required"}
	}
	day, err := s.store.GetQuizDay(ctx, req.QuizDayID)
	if err == ErrQuizDayNotFound {
		return Submission{}, ValidationError{"Invalid quiz day"}
	}
	if err != nil {
		return Submission{}, err
	}
	if !day.IsPublished {
		return Submission{}, ErrNotPublished
	}
	if !day.ResponsesOpen {
		return Submission{}, ErrResponsesClosed
	}

	ids := make([]string, 0, len(req.Answers))
	for _, a := range req.Answers {
		ids = append(ids, a.QuestionID)
	}
	byID, err := s.store.GetQuestionsWithSection(ctx, ids)
	if err != nil {
		return Submission{}, err
	}

	records := make([]AnswerRecord, 0, len(req.Answers))
	sectionScores := map[string]int{}
	total := 0
	for _, a := range req.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			// Unknown ids are dropped, not an error.
			continue
		}
		rec := AnswerRecord{QuestionID: a.QuestionID}
		ans := scoring.Answer{Answer1: a.UserAnswer1, Answer2: a.UserAnswer2}
		if q.QuestionType == TypeMCQ && a.SelectedIndex != nil {
			perm := optionPerm(userID, day.ID, q.ID, len(q.Options))
			if orig := originalIndex(perm, *a.SelectedIndex); orig >= 0 {
				o := orig
				ans.SelectedIndex = &o
				rec.SelectedIndex = &o
			}
		}
		if q.QuestionType == TypeFillBlank {
			rec.UserAnswer1 = strings.TrimSpace(a.UserAnswer1)
			rec.UserAnswer2 = strings.TrimSpace(a.UserAnswer2)
		}
		res, err := s.grader.Grade(scoring.Q{
			Type:           q.QuestionType,
			CorrectIndex:   q.CorrectIndex,
			CorrectAnswer1: q.CorrectAnswer1,
			CorrectAnswer2: q.CorrectAnswer2,
		}, ans)
		if err != nil {
			return Submission{}, err
		}
		rec.IsCorrect = res.Correct
		if res.Correct {
			sectionScores[q.Section]++
			total++
		}
		records = append(records, rec)
	}

	timeTaken := 0
	if req.TimeTakenSeconds != nil {
		timeTaken = *req.TimeTakenSeconds
	} else if prev, err := s.store.GetSubmission(ctx, userID, day.ID); err == nil {
		timeTaken = prev.TimeTakenSeconds
	}

	sub, err := s.store.UpsertSubmission(ctx, Submission{
		UserID:           userID,
		QuizDayID:        day.ID,
		Answers:          records,
		SectionScores:    sectionScores,
		TotalScore:       total,
		TimeTakenSeconds: timeTaken,
	})
	if err != nil {
		return Submission{}, err
	}
	s.emit(ctx, "submission.saved", sub.ID, map[string]any{
		"userId":     sub.UserID,
		"quizDayId":  sub.QuizDayID,
		"totalScore": sub.TotalScore,
	})
	if s.OnSubmission != nil {
		s.OnSubmission(ctx)
	}
	return sub, nil
}

// MySubmissions is the participant's history, annotated with each day's label
// and whether its results are visible.
func (s *Service) MySubmissions(ctx context.Context, userID string) ([]Submission, error) {
	return s.store.ListSubmissionsByUser(ctx, userID)
}
