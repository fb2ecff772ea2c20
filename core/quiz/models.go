package quiz

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/azedu/quizdesk/core"
)

// Question types
const (
	TypeClosed = "Closed"
	TypeOpen   = "Open"
)

// totalMaxScore is the score of a fully correct submission; each question
// weighs an equal share of it.
const totalMaxScore = 100.0

type Option struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	MaxScore float64  `json:"max_score"`
	Options  []Option `json:"options"`
}

type Quiz struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	SubjectID     int        `json:"subject_id"`
	TeacherID     int        `json:"teacher_id"`
	StartTime     time.Time  `json:"start_time"` // UTC
	EndTime       time.Time  `json:"end_time"`   // UTC
	IsClosed      bool       `json:"is_closed"`
	TotalMaxScore float64    `json:"total_max_score"`
	Questions     []Question `json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"` // UTC
	UpdatedAt     time.Time  `json:"updated_at"` // UTC

	// display-only joins
	Subject *core.NamedRef `json:"subject,omitempty"`
	Teacher *TeacherRef    `json:"teacher,omitempty"`
}

type TeacherRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Open reports whether the quiz accepts submissions at `now`.
func (q *Quiz) Open(now time.Time) bool {
	return !q.IsClosed && !now.Before(q.StartTime) && now.Before(q.EndTime)
}

// StripCorrectFlags removes grading information before a quiz is handed to a student.
func (q *Quiz) StripCorrectFlags() {
	for i := range q.Questions {
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].IsCorrect = false
		}
	}
}

// NewOption carries one answer option of a new closed question.
type NewOption struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// NewQuestion carries one question of a new quiz.
type NewQuestion struct {
	Text    string      `json:"text" validate:"required"`
	Type    string      `json:"type" validate:"omitempty,oneof=Closed Open"`
	Options []NewOption `json:"options" validate:"dive"`
}

// NewQuiz contains information needed to create or replace a Quiz.
// Question scores are not supplied: every question weighs an equal
// share of the fixed total.
type NewQuiz struct {
	Title     string        `json:"title" validate:"required"`
	SubjectID int           `json:"subject_id" validate:"required"`
	StartTime time.Time     `json:"start_time" validate:"required"`
	EndTime   time.Time     `json:"end_time" validate:"required"`
	Questions []NewQuestion `json:"questions" validate:"required,min=1,dive"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	for i := range nq.Questions {
		nq.Questions[i].Text = core.CleanString(nq.Questions[i].Text)
		if nq.Questions[i].Type == "" {
			nq.Questions[i].Type = TypeClosed
		}
	}
	return validate.Struct(nq)
}

// AnswerInput is one submitted answer; exactly one of the value fields is set
// depending on the question type.
type AnswerInput struct {
	QuestionID     int     `json:"question_id" validate:"required"`
	ClosedOptionID *int    `json:"closed_option_id"`
	OpenAnswerText *string `json:"open_answer_text"`
}

// Submission is a student's one-shot answer sheet for a quiz.
type Submission struct {
	QuizID  int           `json:"quiz_id" validate:"required"`
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

func (s *Submission) Validate(validate *validator.Validate) error {
	return validate.Struct(s)
}

type Answer struct {
	ID             int     `json:"id"`
	QuestionID     int     `json:"question_id"`
	ClosedOptionID *int    `json:"closed_option_id,omitempty"`
	OpenAnswerText *string `json:"open_answer_text,omitempty"`
	Score          float64 `json:"score"`

	// display-only joins
	Question *Question `json:"question,omitempty"`
}

type Result struct {
	ID          int       `json:"id"`
	QuizID      int       `json:"quiz_id"`
	StudentID   int       `json:"student_id"`
	TotalScore  float64   `json:"total_score"`
	SubmittedAt time.Time `json:"submitted_at"` // UTC
	Answers     []Answer  `json:"answers,omitempty"`

	// display-only joins
	Student *StudentRef `json:"student,omitempty"`
	Quiz    *QuizRef    `json:"quiz,omitempty"`
}

type StudentRef struct {
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Group     core.NamedRef `json:"group"`
}

type QuizRef struct {
	Title         string        `json:"title"`
	TotalMaxScore float64       `json:"total_max_score"`
	Subject       core.NamedRef `json:"subject"`
}

// QueryFilter narrows quiz or result listings to one teacher's quizzes.
type QueryFilter struct {
	TeacherID int
}

var (
	quizWindowTag  = "quizwindow"
	quizWindowText = "end time must be after start time"

	closedOptionsTag  = "closedoptions"
	closedOptionsText = "closed questions need at least 2 options with exactly 1 marked correct"
)

// RegisterValidators registers quiz-specific validators on the app validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newQuizStructValidation, NewQuiz{})
	core.RegisterCustomTranslation(validate, translator, quizWindowTag, quizWindowText)
	core.RegisterCustomTranslation(validate, translator, closedOptionsTag, closedOptionsText)
}

// newQuizStructValidation checks the quiz window and closed-question option sets.
func newQuizStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuiz)
	if !ok {
		return
	}
	if !nq.StartTime.IsZero() && !nq.EndTime.After(nq.StartTime) {
		sl.ReportError(nq.EndTime, "end_time", "EndTime", quizWindowTag, "")
	}
	for _, q := range nq.Questions {
		if q.Type == TypeOpen {
			continue
		}
		var correct int
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if len(q.Options) < 2 || correct != 1 {
			sl.ReportError(nq.Questions, "questions", "Questions", closedOptionsTag, "")
			return
		}
	}
}
