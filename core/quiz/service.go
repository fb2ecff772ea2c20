package quiz

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

var (
	ErrNotFound       = errors.New("quiz not found")
	ErrResultNotFound = errors.New("result not found")
	ErrNotOpen        = errors.New("quiz is not open for submissions")
	ErrAlreadyTaken   = errors.New("quiz has already been submitted")
	ErrNotOwner       = errors.New("quiz belongs to another teacher")
)

type (
	Repository interface {
		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		// QueryQuizzes returns quizzes without their question sets;
		// a nil filter returns all quizzes with display joins populated.
		QueryQuizzes(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Quiz, error)
		// GetQuizByID returns the quiz with questions, options and correct flags.
		GetQuizByID(ctx context.Context, id int) (Quiz, error)
		// UpdateQuiz replaces the quiz row and its whole question set.
		UpdateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		DeleteQuiz(ctx context.Context, id int) error
		// QueryAvailableQuizzes returns open quizzes for a student group at `now`,
		// excluding quizzes the student has already submitted.
		QueryAvailableQuizzes(ctx context.Context, studentID, groupID int, now time.Time) ([]Quiz, error)
		HasResult(ctx context.Context, quizID, studentID int) (bool, error)
		CreateResult(ctx context.Context, res Result) (Result, error)
		// QueryResults returns results with student and quiz display joins;
		// a nil filter returns all of them.
		QueryResults(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Result, error)
		QueryResultsByQuiz(ctx context.Context, quizID int) ([]Result, error)
		QueryResultsByStudent(ctx context.Context, studentID int) ([]Result, error)
		// GetResultByID returns the result with answers and question joins.
		GetResultByID(ctx context.Context, id int) (Result, error)
		// CloseExpiredQuizzes marks quizzes past their end time closed and
		// reports how many rows changed.
		CloseExpiredQuizzes(ctx context.Context, now time.Time) (int, error)
	}

	Service interface {
		Create(ctx context.Context, teacherID int, nq NewQuiz) (Quiz, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Quiz, error)
		GetByID(ctx context.Context, id int) (Quiz, error)
		Update(ctx context.Context, id int, nq NewQuiz) (Quiz, error)
		Delete(ctx context.Context, id int) error
		Available(ctx context.Context, studentID, groupID int) ([]Quiz, error)
		Submit(ctx context.Context, studentID int, sub Submission) (Result, error)
		Results(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Result, error)
		ResultsForQuiz(ctx context.Context, quizID int) ([]Result, error)
		MyResults(ctx context.Context, studentID int) ([]Result, error)
		ResultDetail(ctx context.Context, resultID int) (Result, error)
		CloseExpired(ctx context.Context) (int, error)
	}

	service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo, nowFunc: time.Now}
}

func (svc *service) build(teacherID int, nq NewQuiz) Quiz {
	now := svc.nowFunc().UTC()
	qz := Quiz{
		Title:         nq.Title,
		SubjectID:     nq.SubjectID,
		TeacherID:     teacherID,
		StartTime:     nq.StartTime.UTC(),
		EndTime:       nq.EndTime.UTC(),
		TotalMaxScore: totalMaxScore,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// every question weighs an equal share of the total
	perQuestion := totalMaxScore / float64(len(nq.Questions))
	for _, q := range nq.Questions {
		question := Question{
			Text:     q.Text,
			Type:     q.Type,
			MaxScore: perQuestion,
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		qz.Questions = append(qz.Questions, question)
	}
	return qz
}

func (svc *service) Create(ctx context.Context, teacherID int, nq NewQuiz) (Quiz, error) {
	return svc.repo.CreateQuiz(ctx, svc.build(teacherID, nq))
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Quiz, error) {
	return svc.repo.QueryQuizzes(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, nq NewQuiz) (Quiz, error) {
	orig, err := svc.repo.GetQuizByID(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	qz := svc.build(orig.TeacherID, nq)
	qz.ID = orig.ID
	qz.CreatedAt = orig.CreatedAt
	return svc.repo.UpdateQuiz(ctx, qz)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteQuiz(ctx, id)
}

// Available returns open quizzes for the student's group with grading
// information stripped.
func (svc *service) Available(ctx context.Context, studentID, groupID int) ([]Quiz, error) {
	quizzes, err := svc.repo.QueryAvailableQuizzes(ctx, studentID, groupID, svc.nowFunc().UTC())
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		quizzes[i].StripCorrectFlags()
	}
	return quizzes, nil
}

// Submit records a student's one-shot answer sheet, auto-scoring closed
// questions. Open answers are stored with a zero score for manual grading.
func (svc *service) Submit(ctx context.Context, studentID int, sub Submission) (Result, error) {
	qz, err := svc.repo.GetQuizByID(ctx, sub.QuizID)
	if err != nil {
		return Result{}, err
	}

	now := svc.nowFunc().UTC()
	if !qz.Open(now) {
		return Result{}, ErrNotOpen
	}

	taken, err := svc.repo.HasResult(ctx, qz.ID, studentID)
	if err != nil {
		return Result{}, errors.Wrap(err, "checking prior submission")
	}
	if taken {
		return Result{}, ErrAlreadyTaken
	}

	res := Result{
		QuizID:      qz.ID,
		StudentID:   studentID,
		SubmittedAt: now,
	}
	questions := make(map[int]Question, len(qz.Questions))
	for _, q := range qz.Questions {
		questions[q.ID] = q
	}
	for _, in := range sub.Answers {
		q, ok := questions[in.QuestionID]
		if !ok {
			continue // answers to foreign questions are dropped
		}
		ans := Answer{
			QuestionID:     q.ID,
			ClosedOptionID: in.ClosedOptionID,
			OpenAnswerText: in.OpenAnswerText,
		}
		if q.Type == TypeClosed && in.ClosedOptionID != nil {
			for _, opt := range q.Options {
				if opt.ID == *in.ClosedOptionID && opt.IsCorrect {
					ans.Score = q.MaxScore
					break
				}
			}
		}
		res.TotalScore += ans.Score
		res.Answers = append(res.Answers, ans)
	}
	return svc.repo.CreateResult(ctx, res)
}

func (svc *service) Results(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Result, error) {
	return svc.repo.QueryResults(ctx, filter, ordering)
}

func (svc *service) ResultsForQuiz(ctx context.Context, quizID int) ([]Result, error) {
	return svc.repo.QueryResultsByQuiz(ctx, quizID)
}

func (svc *service) MyResults(ctx context.Context, studentID int) ([]Result, error) {
	return svc.repo.QueryResultsByStudent(ctx, studentID)
}

func (svc *service) ResultDetail(ctx context.Context, resultID int) (Result, error) {
	return svc.repo.GetResultByID(ctx, resultID)
}

func (svc *service) CloseExpired(ctx context.Context) (int, error) {
	return svc.repo.CloseExpiredQuizzes(ctx, svc.nowFunc().UTC())
}
