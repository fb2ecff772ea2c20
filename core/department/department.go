package department

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

var (
	ErrNotFound   = errors.New("department not found")
	ErrNameExists = errors.New("a department with this name already exists")
	ErrInUse      = errors.New("department has groups and cannot be deleted")
)

type Department struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewDepartment contains information needed to create or rename a Department.
type NewDepartment struct {
	Name string `json:"name" validate:"required"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dep Department) (Department, error)
		QueryDepartments(ctx context.Context, ordering []core.DBOrdering) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id int) (Department, error)
		UpdateDepartment(ctx context.Context, dep Department) (Department, error)
		// DeleteDepartment fails with ErrInUse when groups still reference the department.
		DeleteDepartment(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, nd NewDepartment) (Department, error)
		Query(ctx context.Context, ordering []core.DBOrdering) ([]Department, error)
		GetByID(ctx context.Context, id int) (Department, error)
		Update(ctx context.Context, id int, nd NewDepartment) (Department, error)
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

func (svc *service) Create(ctx context.Context, nd NewDepartment) (Department, error) {
	now := time.Now().UTC()
	dep := Department{
		Name:      nd.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	dep, err := svc.repo.CreateDepartment(ctx, dep)
	if err == ErrNameExists {
		return Department{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	}
	return dep, err
}

func (svc *service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Department, error) {
	return svc.repo.GetDepartmentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, nd NewDepartment) (Department, error) {
	dep := Department{
		ID:        id,
		Name:      nd.Name,
		UpdatedAt: time.Now().UTC(),
	}
	dep, err := svc.repo.UpdateDepartment(ctx, dep)
	if err == ErrNameExists {
		return Department{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	}
	return dep, err
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteDepartment(ctx, id)
}
