package group

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

var (
	ErrNotFound     = errors.New("group not found")
	ErrNoDepartment = errors.New("department does not exist")
	ErrInUse        = errors.New("group has members or subjects and cannot be deleted")
)

type Group struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DepartmentID int       `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC

	// display-only join
	Department *core.NamedRef `json:"department,omitempty"`
}

// NewGroup contains information needed to create or update a Group.
type NewGroup struct {
	Name         string `json:"name" validate:"required"`
	DepartmentID int    `json:"department_id" validate:"required"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type (
	Repository interface {
		// CreateGroup fails with ErrNoDepartment when the referenced department is missing.
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		QueryGroups(ctx context.Context, ordering []core.DBOrdering) ([]Group, error)
		GetGroupByID(ctx context.Context, id int) (Group, error)
		UpdateGroup(ctx context.Context, grp Group) (Group, error)
		// DeleteGroup fails with ErrInUse when users or subjects still reference the group.
		DeleteGroup(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, ng NewGroup) (Group, error)
		Query(ctx context.Context, ordering []core.DBOrdering) ([]Group, error)
		GetByID(ctx context.Context, id int) (Group, error)
		Update(ctx context.Context, id int, ng NewGroup) (Group, error)
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

func (svc *service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		Name:         ng.Name,
		DepartmentID: ng.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	grp, err := svc.repo.CreateGroup(ctx, grp)
	if err == ErrNoDepartment {
		return Group{}, core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
	}
	return grp, err
}

func (svc *service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Group, error) {
	return svc.repo.QueryGroups(ctx, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ng NewGroup) (Group, error) {
	grp := Group{
		ID:           id,
		Name:         ng.Name,
		DepartmentID: ng.DepartmentID,
		UpdatedAt:    time.Now().UTC(),
	}
	grp, err := svc.repo.UpdateGroup(ctx, grp)
	if err == ErrNoDepartment {
		return Group{}, core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
	}
	return grp, err
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteGroup(ctx, id)
}
