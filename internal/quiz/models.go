package quiz

// Sections are the two top-level content tracks. Scores are tallied per section.
const (
	SectionQuran  = "Quran"
	SectionSeerat = "Seerat"
)

func ValidSection(s string) bool { return s == SectionQuran || s == SectionSeerat }

type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Section     string `json:"section"`
	CreatedBy   string `json:"createdBy"`
	CreatorName string `json:"creatorName,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type QuizDay struct {
	ID               string `json:"id"`
	ModuleID         string `json:"moduleId"`
	ModuleName       string `json:"moduleName,omitempty"`
	DateLabel        string `json:"dateLabel"`
	IsActive         bool   `json:"isActive"`
	IsPublished      bool   `json:"isPublished"`
	ResponsesOpen    bool   `json:"responsesOpen"`
	ResultsPublished bool   `json:"resultsPublished"`
	CreatedAt        int64  `json:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt"`

	// Derived for participant listings: the day accepts answers right now.
	AcceptingResponses *bool `json:"acceptingResponses,omitempty"`
}

// Question type discriminators.
const (
	TypeMCQ       = "mcq"
	TypeFillBlank = "fillblank"
)

// Reference kinds for optional supporting material on a question.
const (
	RefNone = "none"
	RefPDF  = "pdf"
	RefURL  = "url"
)

type Question struct {
	ID           string   `json:"id"`
	QuizDayID    string   `json:"quizDayId"`
	Text         string   `json:"text"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex"`

	CorrectAnswer1 string `json:"correctAnswer1,omitempty"`
	CorrectAnswer2 string `json:"correctAnswer2,omitempty"`

	ReferenceType   string `json:"referenceType"`
	ReferencePdfURL string `json:"referencePdfUrl,omitempty"`
	ReferencePdfKey string `json:"referencePdfKey,omitempty"`
	ReferenceURL    string `json:"referenceUrl,omitempty"`
	ReferenceTitle  string `json:"referenceTitle,omitempty"`

	CreatedAt int64 `json:"createdAt"`
}

// AnswerRecord is one scored answer inside a submission.
type AnswerRecord struct {
	QuestionID    string `json:"question"`
	SelectedIndex *int   `json:"selectedIndex,omitempty"`
	UserAnswer1   string `json:"userAnswer1,omitempty"`
	UserAnswer2   string `json:"userAnswer2,omitempty"`
	IsCorrect     bool   `json:"isCorrect"`
}

type Submission struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	QuizDayID        string         `json:"quizDayId"`
	Answers          []AnswerRecord `json:"answers"`
	SectionScores    map[string]int `json:"sectionScores"`
	TotalScore       int            `json:"totalScore"`
	TimeTakenSeconds int            `json:"timeTakenSeconds"`
	LastUpdated      int64          `json:"lastUpdated"`
	CreatedAt        int64          `json:"createdAt"`

	// Annotations filled by list queries.
	UserName         string `json:"userName,omitempty"`
	UserEmail        string `json:"userEmail,omitempty"`
	DateLabel        string `json:"dateLabel,omitempty"`
	ResultsPublished *bool  `json:"resultsPublished,omitempty"`
}
