package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/department"
)

type departmentRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r departmentRow) toDepartment() department.Department {
	return department.Department(r)
}

type departmentRepository struct {
	db *sqlx.DB
}

var _ department.Repository = (*departmentRepository)(nil)

func NewDepartmentRepository(db *sqlx.DB) *departmentRepository {
	return &departmentRepository{db: db}
}

// pq error codes of interest
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqErrCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

func (repo departmentRepository) CreateDepartment(ctx context.Context, dep department.Department) (department.Department, error) {
	query := `INSERT INTO department (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.GetContext(ctx, &dep.ID, query, dep.Name, dep.CreatedAt, dep.UpdatedAt); err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return department.Department{}, department.ErrNameExists
		}
		return department.Department{}, errors.Wrap(err, "inserting department")
	}
	return dep, nil
}

func (repo departmentRepository) QueryDepartments(ctx context.Context, ordering []core.DBOrdering) ([]department.Department, error) {
	query := `SELECT id, name, created_at, updated_at FROM department` + orderingClause(ordering, "name ASC")
	var rows []departmentRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	deps := make([]department.Department, 0, len(rows))
	for _, r := range rows {
		deps = append(deps, r.toDepartment())
	}
	return deps, nil
}

func (repo departmentRepository) GetDepartmentByID(ctx context.Context, id int) (department.Department, error) {
	var row departmentRow
	query := `SELECT id, name, created_at, updated_at FROM department WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return department.Department{}, trapNoRowsErr(err, department.ErrNotFound, "finding department by ID")
	}
	return row.toDepartment(), nil
}

func (repo departmentRepository) UpdateDepartment(ctx context.Context, dep department.Department) (department.Department, error) {
	query := `UPDATE department SET name = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, dep.Name, dep.UpdatedAt, dep.ID)
	if err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return department.Department{}, department.ErrNameExists
		}
		return department.Department{}, errors.Wrap(err, "updating department")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return department.Department{}, department.ErrNotFound
	}
	return repo.GetDepartmentByID(ctx, dep.ID)
}

func (repo departmentRepository) DeleteDepartment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM department WHERE id = $1`, id)
	if err != nil {
		if pqErrCode(err) == pqForeignKeyViolation {
			return department.ErrInUse
		}
		return errors.Wrap(err, "deleting department")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return department.ErrNotFound
	}
	return nil
}
