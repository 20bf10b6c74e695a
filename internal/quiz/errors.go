package quiz

import "errors"

var (
	// ErrModuleNotFound is returned when a module id resolves to nothing.
	ErrModuleNotFound = errors.New("module not found")
	// ErrQuizDayNotFound is returned when a quiz day id resolves to nothing.
	ErrQuizDayNotFound = errors.New("quiz day not found")
	// ErrNoPublishedQuiz is returned when no day is available for taking.
	ErrNoPublishedQuiz = errors.New("no published quiz found")
	// ErrNotPublished rejects submissions to an unpublished day.
	ErrNotPublished = errors.New("quiz is not published")
	// ErrResponsesClosed rejects submissions once an admin locks the day.
	ErrResponsesClosed = errors.New("responses are closed for this quiz")
	// ErrSubmissionNotFound is returned when a (user, day) pair has no submission.
	ErrSubmissionNotFound = errors.New("submission not found")
)
