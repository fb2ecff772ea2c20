package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/azedu/quizdesk/core"
)

// stubRepository backs the service with a single quiz and its results.
type stubRepository struct {
	quiz    Quiz
	results []Result
}

func (s *stubRepository) CreateQuiz(_ context.Context, qz Quiz) (Quiz, error) {
	qz.ID = 1
	s.quiz = qz
	return qz, nil
}

func (s *stubRepository) QueryQuizzes(context.Context, *QueryFilter, []core.DBOrdering) ([]Quiz, error) {
	return []Quiz{s.quiz}, nil
}

func (s *stubRepository) GetQuizByID(_ context.Context, id int) (Quiz, error) {
	if id != s.quiz.ID {
		return Quiz{}, ErrNotFound
	}
	return s.quiz, nil
}

func (s *stubRepository) UpdateQuiz(_ context.Context, qz Quiz) (Quiz, error) {
	s.quiz = qz
	return qz, nil
}

func (s *stubRepository) DeleteQuiz(context.Context, int) error { return nil }

func (s *stubRepository) QueryAvailableQuizzes(_ context.Context, studentID, _ int, now time.Time) ([]Quiz, error) {
	if !s.quiz.Open(now) {
		return nil, nil
	}
	if taken, _ := s.HasResult(context.Background(), s.quiz.ID, studentID); taken {
		return nil, nil
	}
	return []Quiz{s.quiz}, nil
}

func (s *stubRepository) HasResult(_ context.Context, quizID, studentID int) (bool, error) {
	for _, res := range s.results {
		if res.QuizID == quizID && res.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepository) CreateResult(_ context.Context, res Result) (Result, error) {
	res.ID = len(s.results) + 1
	s.results = append(s.results, res)
	return res, nil
}

func (s *stubRepository) QueryResults(context.Context, *QueryFilter, []core.DBOrdering) ([]Result, error) {
	return s.results, nil
}

func (s *stubRepository) QueryResultsByQuiz(context.Context, int) ([]Result, error) {
	return s.results, nil
}

func (s *stubRepository) QueryResultsByStudent(context.Context, int) ([]Result, error) {
	return s.results, nil
}

func (s *stubRepository) GetResultByID(context.Context, int) (Result, error) {
	return Result{}, ErrResultNotFound
}

func (s *stubRepository) CloseExpiredQuizzes(_ context.Context, now time.Time) (int, error) {
	if !s.quiz.IsClosed && !s.quiz.EndTime.After(now) {
		s.quiz.IsClosed = true
		return 1, nil
	}
	return 0, nil
}

var _ Repository = (*stubRepository)(nil)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func at(t time.Time) func() time.Time { return func() time.Time { return t } }

// newOpenQuiz seeds the stub with a 2-question quiz open at `now`:
// question 1 is closed (option 11 correct, 12 wrong), question 2 is open.
func newOpenQuiz(repo *stubRepository, now time.Time) {
	repo.quiz = Quiz{
		ID:            1,
		Title:         "Aralıq imtahan",
		SubjectID:     1,
		TeacherID:     2,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		TotalMaxScore: 100,
		Questions: []Question{
			{
				ID: 1, Text: "2+2?", Type: TypeClosed, MaxScore: 50,
				Options: []Option{
					{ID: 11, Text: "4", IsCorrect: true},
					{ID: 12, Text: "5"},
				},
			},
			{ID: 2, Text: "Explain.", Type: TypeOpen, MaxScore: 50},
		},
	}
}

func Test_service_Create(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubRepository{}
	svc := &service{repo: repo, nowFunc: at(now)}

	nq := NewQuiz{
		Title:     "Yekun imtahan",
		SubjectID: 3,
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Questions: []NewQuestion{
			{Text: "Q1", Type: TypeClosed, Options: []NewOption{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			{Text: "Q2", Type: TypeClosed, Options: []NewOption{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			{Text: "Q3", Type: TypeOpen},
			{Text: "Q4", Type: TypeOpen},
		},
	}
	qz, err := svc.Create(context.Background(), 7, nq)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if qz.TeacherID != 7 {
		t.Errorf("TeacherID = %d; want 7", qz.TeacherID)
	}
	if qz.TotalMaxScore != 100 {
		t.Errorf("TotalMaxScore = %v; want 100", qz.TotalMaxScore)
	}
	for i, q := range qz.Questions {
		if q.MaxScore != 25 {
			t.Errorf("Questions[%d].MaxScore = %v; want equal share 25", i, q.MaxScore)
		}
	}
}

func Test_service_Submit(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("closed answers are auto-scored", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now)}

		res, err := svc.Submit(ctx, 5, Submission{
			QuizID: 1,
			Answers: []AnswerInput{
				{QuestionID: 1, ClosedOptionID: intPtr(11)},
				{QuestionID: 2, OpenAnswerText: strPtr("because")},
			},
		})
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if res.TotalScore != 50 {
			t.Errorf("TotalScore = %v; want 50", res.TotalScore)
		}
		if len(res.Answers) != 2 {
			t.Fatalf("len(Answers) = %d; want 2", len(res.Answers))
		}
		if res.Answers[0].Score != 50 {
			t.Errorf("closed answer score = %v; want 50", res.Answers[0].Score)
		}
		if res.Answers[1].Score != 0 {
			t.Errorf("open answer score = %v; want 0 pending manual grading", res.Answers[1].Score)
		}
		if !res.SubmittedAt.Equal(now) {
			t.Errorf("SubmittedAt = %v; want %v", res.SubmittedAt, now)
		}
	})

	t.Run("wrong option scores zero", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now)}

		res, err := svc.Submit(ctx, 5, Submission{
			QuizID:  1,
			Answers: []AnswerInput{{QuestionID: 1, ClosedOptionID: intPtr(12)}},
		})
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if res.TotalScore != 0 {
			t.Errorf("TotalScore = %v; want 0", res.TotalScore)
		}
	})

	t.Run("answers to foreign questions are dropped", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now)}

		res, err := svc.Submit(ctx, 5, Submission{
			QuizID:  1,
			Answers: []AnswerInput{{QuestionID: 99, ClosedOptionID: intPtr(11)}},
		})
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if len(res.Answers) != 0 {
			t.Errorf("len(Answers) = %d; want 0", len(res.Answers))
		}
	})

	t.Run("rejected before start", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now.Add(-2 * time.Hour))}

		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 1}); err != ErrNotOpen {
			t.Errorf("Submit() err = %v; want ErrNotOpen", err)
		}
	})

	t.Run("rejected after end time", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now.Add(2 * time.Hour))}

		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 1}); err != ErrNotOpen {
			t.Errorf("Submit() err = %v; want ErrNotOpen", err)
		}
	})

	t.Run("rejected when closed by the sweep", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		repo.quiz.IsClosed = true
		svc := &service{repo: repo, nowFunc: at(now)}

		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 1}); err != ErrNotOpen {
			t.Errorf("Submit() err = %v; want ErrNotOpen", err)
		}
	})

	t.Run("one submission per student per quiz", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now)}

		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 1}); err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 1}); err != ErrAlreadyTaken {
			t.Errorf("Submit() err = %v; want ErrAlreadyTaken", err)
		}
		// a different student may still submit
		if _, err := svc.Submit(ctx, 6, Submission{QuizID: 1}); err != nil {
			t.Errorf("Submit() for another student: %v", err)
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		repo := &stubRepository{}
		newOpenQuiz(repo, now)
		svc := &service{repo: repo, nowFunc: at(now)}

		if _, err := svc.Submit(ctx, 5, Submission{QuizID: 99}); err != ErrNotFound {
			t.Errorf("Submit() err = %v; want ErrNotFound", err)
		}
	})
}

func Test_service_Available(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubRepository{}
	newOpenQuiz(repo, now)
	svc := &service{repo: repo, nowFunc: at(now)}

	quizzes, err := svc.Available(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("Available(): %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("len(quizzes) = %d; want 1", len(quizzes))
	}
	// grading information must not reach students
	for _, q := range quizzes[0].Questions {
		for _, opt := range q.Options {
			if opt.IsCorrect {
				t.Error("Available() leaked a correct flag")
			}
		}
	}
}

func Test_service_CloseExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubRepository{}
	newOpenQuiz(repo, now)
	svc := &service{repo: repo, nowFunc: at(now.Add(2 * time.Hour))}

	n, err := svc.CloseExpired(context.Background())
	if err != nil {
		t.Fatalf("CloseExpired(): %v", err)
	}
	if n != 1 {
		t.Errorf("CloseExpired() = %d; want 1", n)
	}
	if !repo.quiz.IsClosed {
		t.Error("quiz not closed")
	}
}
