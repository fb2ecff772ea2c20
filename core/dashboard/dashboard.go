package dashboard

import (
	"context"
	"time"

	"github.com/azedu/quizdesk/core/quiz"
)

type (
	// RoleCounts breaks the user total down per role.
	RoleCounts struct {
		Total  int            `json:"total"`
		ByRole map[string]int `json:"byRole"`
	}

	Total struct {
		Total int `json:"total"`
	}

	QuizCounts struct {
		Total    int `json:"total"`
		ThisWeek int `json:"thisWeek"`
	}

	AdminOverview struct {
		Users    RoleCounts `json:"users"`
		Subjects Total      `json:"subjects"`
		Groups   Total      `json:"groups"`
		Quizzes  QuizCounts `json:"quizzes"`
	}

	StudentOverview struct {
		Available    int     `json:"available"`
		Taken        int     `json:"taken"`
		AverageScore float64 `json:"average_score"`
	}

	Repository interface {
		UserCountsByRole(ctx context.Context) (RoleCounts, error)
		SubjectCount(ctx context.Context) (int, error)
		GroupCount(ctx context.Context) (int, error)
		QuizCounts(ctx context.Context, weekStart time.Time) (QuizCounts, error)
		RecentResults(ctx context.Context, limit int) ([]quiz.Result, error)
		AvailableQuizCount(ctx context.Context, studentID, groupID int, now time.Time) (int, error)
		// StudentResultStats returns how many quizzes the student submitted
		// and their average total score; the average is 0 when none exist.
		StudentResultStats(ctx context.Context, studentID int) (taken int, avg float64, err error)
	}

	Service interface {
		AdminOverview(ctx context.Context) (AdminOverview, error)
		RecentResults(ctx context.Context, limit int) ([]quiz.Result, error)
		StudentOverview(ctx context.Context, studentID, groupID int) (StudentOverview, error)
	}

	service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

var _ Service = (*service)(nil)

const defaultRecentLimit = 10

func NewService(repo Repository) *service {
	return &service{repo: repo, nowFunc: time.Now}
}

func (svc *service) AdminOverview(ctx context.Context) (AdminOverview, error) {
	var ov AdminOverview
	var err error

	if ov.Users, err = svc.repo.UserCountsByRole(ctx); err != nil {
		return AdminOverview{}, err
	}
	if ov.Subjects.Total, err = svc.repo.SubjectCount(ctx); err != nil {
		return AdminOverview{}, err
	}
	if ov.Groups.Total, err = svc.repo.GroupCount(ctx); err != nil {
		return AdminOverview{}, err
	}

	now := svc.nowFunc().UTC()
	weekStart := now.AddDate(0, 0, -int(now.Weekday()))
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	if ov.Quizzes, err = svc.repo.QuizCounts(ctx, weekStart); err != nil {
		return AdminOverview{}, err
	}
	return ov, nil
}

func (svc *service) RecentResults(ctx context.Context, limit int) ([]quiz.Result, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return svc.repo.RecentResults(ctx, limit)
}

func (svc *service) StudentOverview(ctx context.Context, studentID, groupID int) (StudentOverview, error) {
	var ov StudentOverview
	var err error

	if ov.Available, err = svc.repo.AvailableQuizCount(ctx, studentID, groupID, svc.nowFunc().UTC()); err != nil {
		return StudentOverview{}, err
	}
	if ov.Taken, ov.AverageScore, err = svc.repo.StudentResultStats(ctx, studentID); err != nil {
		return StudentOverview{}, err
	}
	return ov, nil
}
