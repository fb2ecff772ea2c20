package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

// copyQuiz deep-copies the question set so callers cannot mutate stored state.
func copyQuiz(qz quiz.Quiz) quiz.Quiz {
	questions := make([]quiz.Question, len(qz.Questions))
	for i, q := range qz.Questions {
		questions[i] = q
		questions[i].Options = append([]quiz.Option(nil), q.Options...)
	}
	qz.Questions = questions
	return qz
}

func (repo *quizRepository) withRefs(qz quiz.Quiz) quiz.Quiz {
	repo.db.subject.RLock()
	if sub, ok := repo.db.subject.table[qz.SubjectID]; ok {
		qz.Subject = &core.NamedRef{Name: sub.Name}
	}
	repo.db.subject.RUnlock()

	repo.db.user.RLock()
	if usr, ok := repo.db.user.table[qz.TeacherID]; ok {
		qz.Teacher = &quiz.TeacherRef{FirstName: usr.FirstName, LastName: usr.LastName}
	}
	repo.db.user.RUnlock()
	return qz
}

func (repo *quizRepository) resultWithRefs(res quiz.Result) quiz.Result {
	repo.db.user.RLock()
	if usr, ok := repo.db.user.table[res.StudentID]; ok {
		ref := &quiz.StudentRef{FirstName: usr.FirstName, LastName: usr.LastName}
		if usr.GroupID != nil {
			repo.db.group.RLock()
			if grp, ok := repo.db.group.table[*usr.GroupID]; ok {
				ref.Group = core.NamedRef{Name: grp.Name}
			}
			repo.db.group.RUnlock()
		}
		res.Student = ref
	}
	repo.db.user.RUnlock()

	repo.db.quiz.RLock()
	if qz, ok := repo.db.quiz.table[res.QuizID]; ok {
		ref := &quiz.QuizRef{Title: qz.Title, TotalMaxScore: qz.TotalMaxScore}
		repo.db.subject.RLock()
		if sub, ok := repo.db.subject.table[qz.SubjectID]; ok {
			ref.Subject = core.NamedRef{Name: sub.Name}
		}
		repo.db.subject.RUnlock()
		res.Quiz = ref
	}
	repo.db.quiz.RUnlock()
	return res
}

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.quiz.Lock()
	defer repo.db.quiz.Unlock()

	repo.db.quiz.pk++
	qz.ID = repo.db.quiz.pk
	for i := range qz.Questions {
		repo.db.quiz.qPK++
		qz.Questions[i].ID = repo.db.quiz.qPK
		for j := range qz.Questions[i].Options {
			repo.db.quiz.oPK++
			qz.Questions[i].Options[j].ID = repo.db.quiz.oPK
		}
	}
	stored := copyQuiz(qz)
	repo.db.quiz.table[qz.ID] = &stored
	return repo.withRefs(copyQuiz(qz)), nil
}

func (repo *quizRepository) QueryQuizzes(_ context.Context, filter *quiz.QueryFilter, _ []core.DBOrdering) ([]quiz.Quiz, error) {
	repo.db.quiz.RLock()
	defer repo.db.quiz.RUnlock()

	quizzes := make([]quiz.Quiz, 0, len(repo.db.quiz.table))
	for _, qz := range repo.db.quiz.table {
		if filter != nil && filter.TeacherID > 0 && qz.TeacherID != filter.TeacherID {
			continue
		}
		listed := repo.withRefs(*qz)
		listed.Questions = nil
		quizzes = append(quizzes, listed)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].StartTime.After(quizzes[j].StartTime) })
	return quizzes, nil
}

func (repo *quizRepository) GetQuizByID(_ context.Context, id int) (quiz.Quiz, error) {
	repo.db.quiz.RLock()
	defer repo.db.quiz.RUnlock()

	if qz, ok := repo.db.quiz.table[id]; ok {
		return repo.withRefs(copyQuiz(*qz)), nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) UpdateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.quiz.Lock()
	defer repo.db.quiz.Unlock()

	if _, ok := repo.db.quiz.table[qz.ID]; !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	for i := range qz.Questions {
		repo.db.quiz.qPK++
		qz.Questions[i].ID = repo.db.quiz.qPK
		for j := range qz.Questions[i].Options {
			repo.db.quiz.oPK++
			qz.Questions[i].Options[j].ID = repo.db.quiz.oPK
		}
	}
	stored := copyQuiz(qz)
	repo.db.quiz.table[qz.ID] = &stored
	return repo.withRefs(copyQuiz(qz)), nil
}

func (repo *quizRepository) DeleteQuiz(_ context.Context, id int) error {
	repo.db.quiz.Lock()
	if _, ok := repo.db.quiz.table[id]; !ok {
		repo.db.quiz.Unlock()
		return quiz.ErrNotFound
	}
	delete(repo.db.quiz.table, id)
	repo.db.quiz.Unlock()

	// results cascade with their quiz
	repo.db.result.Lock()
	for rid, res := range repo.db.result.table {
		if res.QuizID == id {
			delete(repo.db.result.table, rid)
		}
	}
	repo.db.result.Unlock()
	return nil
}

func (repo *quizRepository) QueryAvailableQuizzes(ctx context.Context, studentID, groupID int, now time.Time) ([]quiz.Quiz, error) {
	repo.db.quiz.RLock()
	defer repo.db.quiz.RUnlock()

	quizzes := make([]quiz.Quiz, 0)
	for _, qz := range repo.db.quiz.table {
		if !qz.Open(now) {
			continue
		}
		repo.db.subject.RLock()
		sub, ok := repo.db.subject.table[qz.SubjectID]
		repo.db.subject.RUnlock()
		if !ok || sub.GroupID != groupID {
			continue
		}
		taken, err := repo.HasResult(ctx, qz.ID, studentID)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		quizzes = append(quizzes, repo.withRefs(copyQuiz(*qz)))
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].EndTime.Before(quizzes[j].EndTime) })
	return quizzes, nil
}

func (repo *quizRepository) HasResult(_ context.Context, quizID, studentID int) (bool, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	for _, res := range repo.db.result.table {
		if res.QuizID == quizID && res.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *quizRepository) CreateResult(ctx context.Context, res quiz.Result) (quiz.Result, error) {
	taken, err := repo.HasResult(ctx, res.QuizID, res.StudentID)
	if err != nil {
		return quiz.Result{}, err
	}
	if taken {
		return quiz.Result{}, quiz.ErrAlreadyTaken
	}

	repo.db.result.Lock()
	defer repo.db.result.Unlock()

	repo.db.result.pk++
	res.ID = repo.db.result.pk
	for i := range res.Answers {
		repo.db.result.aPK++
		res.Answers[i].ID = repo.db.result.aPK
	}
	stored := res
	stored.Answers = append([]quiz.Answer(nil), res.Answers...)
	repo.db.result.table[res.ID] = &stored
	return res, nil
}

func (repo *quizRepository) queryResults(match func(*quiz.Result) bool) []quiz.Result {
	// snapshot first: match and resultWithRefs take the quiz lock, which must
	// never be acquired while holding the result lock (QueryAvailableQuizzes
	// nests them the other way around)
	repo.db.result.RLock()
	snapshot := make([]quiz.Result, 0, len(repo.db.result.table))
	for _, res := range repo.db.result.table {
		snapshot = append(snapshot, *res)
	}
	repo.db.result.RUnlock()

	results := make([]quiz.Result, 0)
	for i := range snapshot {
		if match(&snapshot[i]) {
			listed := repo.resultWithRefs(snapshot[i])
			listed.Answers = nil
			results = append(results, listed)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SubmittedAt.After(results[j].SubmittedAt) })
	return results
}

func (repo *quizRepository) QueryResults(_ context.Context, filter *quiz.QueryFilter, _ []core.DBOrdering) ([]quiz.Result, error) {
	return repo.queryResults(func(res *quiz.Result) bool {
		if filter == nil || filter.TeacherID <= 0 {
			return true
		}
		repo.db.quiz.RLock()
		defer repo.db.quiz.RUnlock()
		qz, ok := repo.db.quiz.table[res.QuizID]
		return ok && qz.TeacherID == filter.TeacherID
	}), nil
}

func (repo *quizRepository) QueryResultsByQuiz(_ context.Context, quizID int) ([]quiz.Result, error) {
	return repo.queryResults(func(res *quiz.Result) bool { return res.QuizID == quizID }), nil
}

func (repo *quizRepository) QueryResultsByStudent(_ context.Context, studentID int) ([]quiz.Result, error) {
	return repo.queryResults(func(res *quiz.Result) bool { return res.StudentID == studentID }), nil
}

func (repo *quizRepository) GetResultByID(_ context.Context, id int) (quiz.Result, error) {
	repo.db.result.RLock()
	res, ok := repo.db.result.table[id]
	repo.db.result.RUnlock()
	if !ok {
		return quiz.Result{}, quiz.ErrResultNotFound
	}

	detail := repo.resultWithRefs(*res)
	detail.Answers = append([]quiz.Answer(nil), res.Answers...)

	// attach question joins
	repo.db.quiz.RLock()
	if qz, ok := repo.db.quiz.table[res.QuizID]; ok {
		questions := make(map[int]quiz.Question, len(qz.Questions))
		for _, q := range qz.Questions {
			questions[q.ID] = q
		}
		for i := range detail.Answers {
			if q, ok := questions[detail.Answers[i].QuestionID]; ok {
				q.Options = nil
				detail.Answers[i].Question = &q
			}
		}
	}
	repo.db.quiz.RUnlock()
	return detail, nil
}

func (repo *quizRepository) CloseExpiredQuizzes(_ context.Context, now time.Time) (int, error) {
	repo.db.quiz.Lock()
	defer repo.db.quiz.Unlock()

	var n int
	for _, qz := range repo.db.quiz.table {
		if !qz.IsClosed && !qz.EndTime.After(now) {
			qz.IsClosed = true
			qz.UpdatedAt = now
			n++
		}
	}
	return n, nil
}
