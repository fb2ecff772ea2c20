package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

var (
	ErrNotFound  = errors.New("subject not found")
	ErrNoGroup   = errors.New("group does not exist")
	ErrNoTeacher = errors.New("teacher does not exist")
)

type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	GroupID   int       `json:"group_id"`
	TeacherID int       `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	// display-only joins
	Group   *GroupRef   `json:"group,omitempty"`
	Teacher *TeacherRef `json:"teacher,omitempty"`
}

type GroupRef struct {
	Name       string        `json:"name"`
	Department core.NamedRef `json:"department"`
}

type TeacherRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewSubject contains information needed to create or update a Subject.
type NewSubject struct {
	Name      string `json:"name" validate:"required"`
	GroupID   int    `json:"group_id" validate:"required"`
	TeacherID int    `json:"teacher_id" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// QueryFilter narrows subject listings to one teacher or one student group.
type QueryFilter struct {
	TeacherID int
	GroupID   int
}

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		// QuerySubjects applies AND operation on set QueryFilter fields;
		// a nil filter returns all subjects with display joins populated.
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetByID(ctx context.Context, id int) (Subject, error)
		Update(ctx context.Context, id int, ns NewSubject) (Subject, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:      ns.Name,
		GroupID:   ns.GroupID,
		TeacherID: ns.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ns NewSubject) (Subject, error) {
	sub := Subject{
		ID:        id,
		Name:      ns.Name,
		GroupID:   ns.GroupID,
		TeacherID: ns.TeacherID,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}
