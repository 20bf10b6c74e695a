package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// ---- modules ----

func (s *SQLStore) CreateModule(ctx context.Context, m Module) (Module, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	m.CreatedAt, m.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id, name, description, section, created_by, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$6)`,
		m.ID, m.Name, m.Description, m.Section, m.CreatedBy, now)
	return m, err
}

func (s *SQLStore) ListModules(ctx context.Context, withCreator bool) ([]Module, error) {
	q := `SELECT m.id, m.name, m.description, m.section, m.created_by, '', m.created_at, m.updated_at
	      FROM modules m ORDER BY m.created_at DESC`
	if withCreator {
		q = `SELECT m.id, m.name, m.description, m.section, m.created_by, u.name, m.created_at, m.updated_at
		     FROM modules m JOIN users u ON u.id = m.created_by ORDER BY m.created_at DESC`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Section, &m.CreatedBy,
			&m.CreatorName, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	var m Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, section, created_by, created_at, updated_at
		 FROM modules WHERE id=$1`, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.Section, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Module{}, ErrModuleNotFound
	}
	return m, err
}

func (s *SQLStore) UpdateModule(ctx context.Context, id, name, description string) (Module, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET name=$1, description=$2, updated_at=$3 WHERE id=$4`,
		name, description, time.Now().Unix(), id)
	if err != nil {
		return Module{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Module{}, ErrModuleNotFound
	}
	return s.GetModule(ctx, id)
}

// DeleteModule removes the module; quiz days, questions and submissions go with
// it through the FK cascade.
func (s *SQLStore) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModuleNotFound
	}
	return nil
}

// ---- quiz days ----

const quizDayCols = `d.id, d.module_id, m.name, d.date_label, d.is_active, d.is_published,
	d.responses_open, d.results_published, d.created_at, d.updated_at`

func scanQuizDay(row interface{ Scan(...any) error }) (QuizDay, error) {
	var d QuizDay
	err := row.Scan(&d.ID, &d.ModuleID, &d.ModuleName, &d.DateLabel, &d.IsActive,
		&d.IsPublished, &d.ResponsesOpen, &d.ResultsPublished, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *SQLStore) CreateQuizDay(ctx context.Context, d QuizDay) (QuizDay, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_days (id, module_id, date_label, is_active, is_published, responses_open, results_published, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)`,
		d.ID, d.ModuleID, d.DateLabel, d.IsActive, d.IsPublished, d.ResponsesOpen, d.ResultsPublished, now)
	if err != nil {
		return QuizDay{}, err
	}
	return s.GetQuizDay(ctx, d.ID)
}

// PatchQuizDay updates the label and active flag only; a day never moves
// between modules.
func (s *SQLStore) PatchQuizDay(ctx context.Context, id string, p QuizDayPatch) (QuizDay, error) {
	sets := []string{}
	args := []any{}
	if p.DateLabel != nil {
		args = append(args, *p.DateLabel)
		sets = append(sets, "date_label=$"+strconv.Itoa(len(args)))
	}
	if p.IsActive != nil {
		args = append(args, *p.IsActive)
		sets = append(sets, "is_active=$"+strconv.Itoa(len(args)))
	}
	if len(sets) > 0 {
		args = append(args, time.Now().Unix())
		sets = append(sets, "updated_at=$"+strconv.Itoa(len(args)))
		args = append(args, id)
		q := "UPDATE quiz_days SET " + strings.Join(sets, ", ") + " WHERE id=$" + strconv.Itoa(len(args))
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return QuizDay{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return QuizDay{}, ErrQuizDayNotFound
		}
	}
	return s.GetQuizDay(ctx, id)
}

func (s *SQLStore) GetQuizDay(ctx context.Context, id string) (QuizDay, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quizDayCols+` FROM quiz_days d JOIN modules m ON m.id = d.module_id WHERE d.id=$1`, id)
	d, err := scanQuizDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return QuizDay{}, ErrQuizDayNotFound
	}
	return d, err
}

func (s *SQLStore) ListQuizDays(ctx context.Context, moduleID string, publishedOnly bool) ([]QuizDay, error) {
	q := `SELECT ` + quizDayCols + ` FROM quiz_days d JOIN modules m ON m.id = d.module_id`
	where := []string{}
	args := []any{}
	if moduleID != "" {
		args = append(args, moduleID)
		where = append(where, "d.module_id=$"+strconv.Itoa(len(args)))
	}
	if publishedOnly {
		where = append(where, "d.is_published")
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY d.created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizDay{}
	for rows.Next() {
		d, err := scanQuizDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetQuizDayFlag(ctx context.Context, id string, flag Flag, value bool) (QuizDay, error) {
	switch flag {
	case FlagPublished, FlagResponsesOpen, FlagResultsPublished:
	default:
		return QuizDay{}, errors.New("unknown flag: " + string(flag))
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_days SET `+string(flag)+`=$1, updated_at=$2 WHERE id=$3`,
		value, time.Now().Unix(), id)
	if err != nil {
		return QuizDay{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return QuizDay{}, ErrQuizDayNotFound
	}
	return s.GetQuizDay(ctx, id)
}

func (s *SQLStore) LatestPublishedActiveDay(ctx context.Context) (QuizDay, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quizDayCols+` FROM quiz_days d JOIN modules m ON m.id = d.module_id
		 WHERE d.is_published AND d.is_active ORDER BY d.created_at DESC LIMIT 1`)
	d, err := scanQuizDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return QuizDay{}, ErrNoPublishedQuiz
	}
	return d, err
}

// ---- questions ----

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().Unix()
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id, quiz_day_id, text, question_type, options_json, correct_index,
		   correct_answer1, correct_answer2, reference_type, reference_pdf_url, reference_pdf_key,
		   reference_url, reference_title, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		q.ID, q.QuizDayID, q.Text, q.QuestionType, string(oj), q.CorrectIndex,
		q.CorrectAnswer1, q.CorrectAnswer2, q.ReferenceType, q.ReferencePdfURL, q.ReferencePdfKey,
		q.ReferenceURL, q.ReferenceTitle, q.CreatedAt)
	return q, err
}

const questionCols = `id, quiz_day_id, text, question_type, options_json, correct_index,
	correct_answer1, correct_answer2, reference_type, reference_pdf_url, reference_pdf_key,
	reference_url, reference_title, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var q Question
	var oj string
	err := row.Scan(&q.ID, &q.QuizDayID, &q.Text, &q.QuestionType, &oj, &q.CorrectIndex,
		&q.CorrectAnswer1, &q.CorrectAnswer2, &q.ReferenceType, &q.ReferencePdfURL,
		&q.ReferencePdfKey, &q.ReferenceURL, &q.ReferenceTitle, &q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, quizDayID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE quiz_day_id=$1 ORDER BY created_at`, quizDayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuestionsWithSection(ctx context.Context, ids []string) (map[string]QuestionWithSection, error) {
	out := map[string]QuestionWithSection{}
	if len(ids) == 0 {
		return out, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.quiz_day_id, q.text, q.question_type, q.options_json, q.correct_index,
		   q.correct_answer1, q.correct_answer2, q.reference_type, q.reference_pdf_url, q.reference_pdf_key,
		   q.reference_url, q.reference_title, q.created_at, m.section
		 FROM questions q
		 JOIN quiz_days d ON d.id = q.quiz_day_id
		 JOIN modules m ON m.id = d.module_id
		 WHERE q.id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var q Question
		var oj, section string
		if err := rows.Scan(&q.ID, &q.QuizDayID, &q.Text, &q.QuestionType, &oj, &q.CorrectIndex,
			&q.CorrectAnswer1, &q.CorrectAnswer2, &q.ReferenceType, &q.ReferencePdfURL,
			&q.ReferencePdfKey, &q.ReferenceURL, &q.ReferenceTitle, &q.CreatedAt, &section); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return nil, err
		}
		out[q.ID] = QuestionWithSection{Question: q, Section: section}
	}
	return out, rows.Err()
}

// ---- submissions ----

// UpsertSubmission replaces the whole answer set for (user, day) atomically.
// The UNIQUE(user_id, quiz_day_id) constraint keeps concurrent submits from
// creating a second row; last write wins.
func (s *SQLStore) UpsertSubmission(ctx context.Context, sub Submission) (Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	sub.LastUpdated = now
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	sj, err := json.Marshal(sub.SectionScores)
	if err != nil {
		return Submission{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id, quiz_day_id, answers_json, section_scores_json,
		   total_score, time_taken_seconds, last_updated, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
		 ON CONFLICT (user_id, quiz_day_id) DO UPDATE SET
		   answers_json=EXCLUDED.answers_json,
		   section_scores_json=EXCLUDED.section_scores_json,
		   total_score=EXCLUDED.total_score,
		   time_taken_seconds=EXCLUDED.time_taken_seconds,
		   last_updated=EXCLUDED.last_updated`,
		sub.ID, sub.UserID, sub.QuizDayID, string(aj), string(sj),
		sub.TotalScore, sub.TimeTakenSeconds, now)
	if err != nil {
		return Submission{}, err
	}
	return s.GetSubmission(ctx, sub.UserID, sub.QuizDayID)
}

func (s *SQLStore) GetSubmission(ctx context.Context, userID, quizDayID string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, quiz_day_id, answers_json, section_scores_json, total_score,
		   time_taken_seconds, last_updated, created_at
		 FROM submissions WHERE user_id=$1 AND quiz_day_id=$2`, userID, quizDayID)
	return scanSubmission(row, scanBare)
}

type scanMode int

const (
	scanBare scanMode = iota
	scanWithDay
	scanWithUser
)

func scanSubmission(row interface{ Scan(...any) error }, mode scanMode) (Submission, error) {
	var sub Submission
	var aj, sj string
	dest := []any{&sub.ID, &sub.UserID, &sub.QuizDayID, &aj, &sj, &sub.TotalScore,
		&sub.TimeTakenSeconds, &sub.LastUpdated, &sub.CreatedAt}
	switch mode {
	case scanWithDay:
		var rp bool
		sub.ResultsPublished = &rp
		dest = append(dest, &sub.DateLabel, sub.ResultsPublished)
	case scanWithUser:
		dest = append(dest, &sub.UserName, &sub.UserEmail)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(aj), &sub.Answers); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(sj), &sub.SectionScores); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

const submissionCols = `s.id, s.user_id, s.quiz_day_id, s.answers_json, s.section_scores_json,
	s.total_score, s.time_taken_seconds, s.last_updated, s.created_at`

func (s *SQLStore) querySubmissions(ctx context.Context, mode scanMode, q string, args ...any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]Submission, error) {
	return s.querySubmissions(ctx, scanWithDay,
		`SELECT `+submissionCols+`, d.date_label, d.results_published
		 FROM submissions s JOIN quiz_days d ON d.id = s.quiz_day_id
		 WHERE s.user_id=$1 ORDER BY s.created_at DESC`, userID)
}

func (s *SQLStore) ListSubmissionsByDay(ctx context.Context, quizDayID string) ([]Submission, error) {
	return s.querySubmissions(ctx, scanWithUser,
		`SELECT `+submissionCols+`, u.name, u.email
		 FROM submissions s JOIN users u ON u.id = s.user_id
		 WHERE s.quiz_day_id=$1 ORDER BY s.total_score DESC, s.time_taken_seconds ASC`, quizDayID)
}

func (s *SQLStore) ListSubmissionsForModule(ctx context.Context, moduleID string) ([]Submission, error) {
	return s.querySubmissions(ctx, scanWithUser,
		`SELECT `+submissionCols+`, u.name, u.email
		 FROM submissions s
		 JOIN users u ON u.id = s.user_id
		 JOIN quiz_days d ON d.id = s.quiz_day_id
		 WHERE d.module_id=$1 ORDER BY s.created_at DESC`, moduleID)
}

func (s *SQLStore) ListAllSubmissions(ctx context.Context) ([]Submission, error) {
	return s.querySubmissions(ctx, scanWithUser,
		`SELECT `+submissionCols+`, u.name, u.email
		 FROM submissions s JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at DESC`)
}
