package inmemdb

import (
	"context"
	"time"

	"github.com/azedu/quizdesk/core/dashboard"
	"github.com/azedu/quizdesk/core/quiz"
)

type dashboardRepository struct {
	db       *DB
	quizRepo *quizRepository
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db, quizRepo: NewQuizRepository(db)}
}

func (repo *dashboardRepository) UserCountsByRole(_ context.Context) (dashboard.RoleCounts, error) {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	counts := dashboard.RoleCounts{ByRole: make(map[string]int)}
	for _, usr := range repo.db.user.table {
		counts.ByRole[usr.Role]++
		counts.Total++
	}
	return counts, nil
}

func (repo *dashboardRepository) SubjectCount(_ context.Context) (int, error) {
	repo.db.subject.RLock()
	defer repo.db.subject.RUnlock()
	return len(repo.db.subject.table), nil
}

func (repo *dashboardRepository) GroupCount(_ context.Context) (int, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	return len(repo.db.group.table), nil
}

func (repo *dashboardRepository) QuizCounts(_ context.Context, weekStart time.Time) (dashboard.QuizCounts, error) {
	repo.db.quiz.RLock()
	defer repo.db.quiz.RUnlock()

	var counts dashboard.QuizCounts
	for _, qz := range repo.db.quiz.table {
		counts.Total++
		if !qz.CreatedAt.Before(weekStart) {
			counts.ThisWeek++
		}
	}
	return counts, nil
}

func (repo *dashboardRepository) RecentResults(ctx context.Context, limit int) ([]quiz.Result, error) {
	results, err := repo.quizRepo.QueryResults(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (repo *dashboardRepository) AvailableQuizCount(ctx context.Context, studentID, groupID int, now time.Time) (int, error) {
	quizzes, err := repo.quizRepo.QueryAvailableQuizzes(ctx, studentID, groupID, now)
	if err != nil {
		return 0, err
	}
	return len(quizzes), nil
}

func (repo *dashboardRepository) StudentResultStats(_ context.Context, studentID int) (int, float64, error) {
	repo.db.result.RLock()
	defer repo.db.result.RUnlock()

	var taken int
	var total float64
	for _, res := range repo.db.result.table {
		if res.StudentID == studentID {
			taken++
			total += res.TotalScore
		}
	}
	if taken == 0 {
		return 0, 0, nil
	}
	return taken, total / float64(taken), nil
}
