package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core/dashboard"
	"github.com/azedu/quizdesk/core/quiz"
)

type dashboardRepository struct {
	db *sqlx.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db *sqlx.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo dashboardRepository) UserCountsByRole(ctx context.Context) (dashboard.RoleCounts, error) {
	var rows []struct {
		Role  string `db:"role"`
		Count int    `db:"count"`
	}
	query := `SELECT role, COUNT(*) AS count FROM "user" GROUP BY role`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return dashboard.RoleCounts{}, errors.Wrap(err, "counting users by role")
	}
	counts := dashboard.RoleCounts{ByRole: make(map[string]int, len(rows))}
	for _, r := range rows {
		counts.ByRole[r.Role] = r.Count
		counts.Total += r.Count
	}
	return counts, nil
}

func (repo dashboardRepository) SubjectCount(ctx context.Context) (int, error) {
	return repo.count(ctx, `SELECT COUNT(*) FROM subject`, "counting subjects")
}

func (repo dashboardRepository) GroupCount(ctx context.Context) (int, error) {
	return repo.count(ctx, `SELECT COUNT(*) FROM "group"`, "counting groups")
}

func (repo dashboardRepository) count(ctx context.Context, query, msg string, args ...interface{}) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, msg)
	}
	return n, nil
}

func (repo dashboardRepository) QuizCounts(ctx context.Context, weekStart time.Time) (dashboard.QuizCounts, error) {
	var counts dashboard.QuizCounts
	query := `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE created_at >= $1) AS this_week FROM quiz`
	row := struct {
		Total    int `db:"total"`
		ThisWeek int `db:"this_week"`
	}{}
	if err := repo.db.GetContext(ctx, &row, query, weekStart); err != nil {
		return counts, errors.Wrap(err, "counting quizzes")
	}
	counts.Total = row.Total
	counts.ThisWeek = row.ThisWeek
	return counts, nil
}

func (repo dashboardRepository) RecentResults(ctx context.Context, limit int) ([]quiz.Result, error) {
	var rows []resultRow
	query := `SELECT ` + resultCols + resultJoins + ` ORDER BY r.submitted_at DESC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent results")
	}
	results := make([]quiz.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toResult())
	}
	return results, nil
}

func (repo dashboardRepository) AvailableQuizCount(ctx context.Context, studentID, groupID int, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM quiz q
	JOIN subject s ON s.id = q.subject_id
	WHERE s.group_id = $1
	  AND NOT q.is_closed
	  AND q.start_time <= $2 AND q.end_time > $2
	  AND NOT EXISTS (SELECT 1 FROM result r WHERE r.quiz_id = q.id AND r.student_id = $3)`
	return repo.count(ctx, query, "counting available quizzes", groupID, now, studentID)
}

func (repo dashboardRepository) StudentResultStats(ctx context.Context, studentID int) (int, float64, error) {
	row := struct {
		Taken int     `db:"taken"`
		Avg   float64 `db:"avg"`
	}{}
	query := `SELECT COUNT(*) AS taken, COALESCE(AVG(total_score), 0) AS avg FROM result WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &row, query, studentID); err != nil {
		return 0, 0, errors.Wrap(err, "querying student result stats")
	}
	return row.Taken, row.Avg, nil
}
