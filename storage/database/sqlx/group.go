package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/group"
)

type groupRow struct {
	ID             int            `db:"id"`
	Name           string         `db:"name"`
	DepartmentID   int            `db:"department_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DepartmentName sql.NullString `db:"department_name"`
}

func (r groupRow) toGroup() group.Group {
	grp := group.Group{
		ID:           r.ID,
		Name:         r.Name,
		DepartmentID: r.DepartmentID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.DepartmentName.Valid {
		grp.Department = &core.NamedRef{Name: r.DepartmentName.String}
	}
	return grp
}

const groupCols = `g.id, g.name, g.department_id, g.created_at, g.updated_at, d.name AS department_name`

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	query := `INSERT INTO "group" (name, department_id, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.GetContext(ctx, &grp.ID, query, grp.Name, grp.DepartmentID, grp.CreatedAt, grp.UpdatedAt); err != nil {
		if pqErrCode(err) == pqForeignKeyViolation {
			return group.Group{}, group.ErrNoDepartment
		}
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, ordering []core.DBOrdering) ([]group.Group, error) {
	query := `SELECT ` + groupCols + ` FROM "group" g LEFT JOIN department d ON d.id = g.department_id` +
		orderingClause(ordering, "g.name ASC")
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	grps := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		grps = append(grps, r.toGroup())
	}
	return grps, nil
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id int) (group.Group, error) {
	var row groupRow
	query := `SELECT ` + groupCols + ` FROM "group" g LEFT JOIN department d ON d.id = g.department_id WHERE g.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "finding group by ID")
	}
	return row.toGroup(), nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	query := `UPDATE "group" SET name = $1, department_id = $2, updated_at = $3 WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query, grp.Name, grp.DepartmentID, grp.UpdatedAt, grp.ID)
	if err != nil {
		if pqErrCode(err) == pqForeignKeyViolation {
			return group.Group{}, group.ErrNoDepartment
		}
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return repo.GetGroupByID(ctx, grp.ID)
}

func (repo groupRepository) DeleteGroup(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "group" WHERE id = $1`, id)
	if err != nil {
		if pqErrCode(err) == pqForeignKeyViolation {
			return group.ErrInUse
		}
		return errors.Wrap(err, "deleting group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.ErrNotFound
	}
	return nil
}
