package auth

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ilmhub/quizhub/internal/db"
)

const bcryptCost = 10

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError carries a user-facing message for a rejected input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Subjects      string `json:"subjects"`
	Classes       string `json:"classes"`
	Phone         string `json:"phone"`
	Age           *int   `json:"age"`
	Qualification string `json:"qualification"`
	TeacherID     string `json:"teacherId"`
	CreatedAt     int64  `json:"createdAt"`
}

// PublicView trims the user to the fields returned by signup/login.
func (u User) PublicView() map[string]any {
	return map[string]any{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role}
}

// ProfileUpdate holds the whitelisted teacher-profile fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	Name          *string `json:"name"`
	Subjects      *string `json:"subjects"`
	Classes       *string `json:"classes"`
	Phone         *string `json:"phone"`
	Age           *int    `json:"age"`
	Qualification *string `json:"qualification"`
	TeacherID     *string `json:"teacherId"`
}

type Service struct {
	db     *sql.DB
	tokens *TokenService
}

func NewService(db *sql.DB, tokens *TokenService) *Service {
	return &Service{db: db, tokens: tokens}
}

func (s *Service) Tokens() *TokenService { return s.tokens }

// Signup validates input, stores a bcrypt hash and returns the new user plus a token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	switch {
	case name == "":
		return User{}, "", &ValidationError{"Name is required"}
	case email == "":
		return User{}, "", &ValidationError{"Email is required"}
	case password == "":
		return User{}, "", &ValidationError{"Password is required"}
	case !emailRe.MatchString(email):
		return User{}, "", &ValidationError{"Invalid email format"}
	case len(password) < 6:
		return User{}, "", &ValidationError{"Password must be at least 6 characters"}
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	if err == nil {
		return User{}, "", ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, "", err
	}

	now := time.Now().Unix()
	u := User{ID: uuid.NewString(), Name: name, Email: email, Role: "user", CreatedAt: now}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$6)`,
		u.ID, u.Name, u.Email, string(hash), u.Role, now)
	if db.IsUniqueViolation(err) {
		// Lost the race against a concurrent signup of the same email.
		return User{}, "", ErrEmailTaken
	}
	if err != nil {
		return User{}, "", err
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return User{}, "", err
	}
	return u, tok, nil
}

// Login verifies credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" {
		return User{}, "", &ValidationError{"Email is required"}
	}
	if password == "" {
		return User{}, "", &ValidationError{"Password is required"}
	}

	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return User{}, "", err
	}
	return u, tok, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, subjects, classes, phone, age, qualification, teacher_id, created_at
		 FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Subjects, &u.Classes, &u.Phone,
			&u.Age, &u.Qualification, &u.TeacherID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateProfile applies only the provided whitelisted fields.
func (s *Service) UpdateProfile(ctx context.Context, id string, up ProfileUpdate) (User, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+"=$"+strconv.Itoa(len(args)))
	}
	if up.Name != nil {
		add("name", *up.Name)
	}
	if up.Subjects != nil {
		add("subjects", *up.Subjects)
	}
	if up.Classes != nil {
		add("classes", *up.Classes)
	}
	if up.Phone != nil {
		add("phone", *up.Phone)
	}
	if up.Age != nil {
		add("age", *up.Age)
	}
	if up.Qualification != nil {
		add("qualification", *up.Qualification)
	}
	if up.TeacherID != nil {
		add("teacher_id", *up.TeacherID)
	}
	if len(sets) > 0 {
		add("updated_at", time.Now().Unix())
		args = append(args, id)
		q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id=$" + strconv.Itoa(len(args))
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return User{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return User{}, ErrUserNotFound
		}
	}
	return s.GetUser(ctx, id)
}

// ChangePassword verifies the old password before rehashing.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < 6 {
		return &ValidationError{"Password must be at least 6 characters"}
	}

	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1, updated_at=$2 WHERE id=$3`,
		string(newHash), time.Now().Unix(), id)
	return err
}

// ListUsersByRole returns users with the given role, newest first.
func (s *Service) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role, subjects, classes, phone, age, qualification, teacher_id, created_at
		 FROM users WHERE role=$1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Subjects, &u.Classes,
			&u.Phone, &u.Age, &u.Qualification, &u.TeacherID, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateAdmin inserts an admin account, used by the create-admin CLI command.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (User, error) {
	u, _, err := s.Signup(ctx, name, email, password)
	if err != nil {
		return User{}, err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET role='admin' WHERE id=$1`, u.ID)
	if err != nil {
		return User{}, err
	}
	u.Role = "admin"
	return u, nil
}

