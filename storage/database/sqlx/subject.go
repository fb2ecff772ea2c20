package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/subject"
)

type subjectRow struct {
	ID               int            `db:"id"`
	Name             string         `db:"name"`
	GroupID          int            `db:"group_id"`
	TeacherID        int            `db:"teacher_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	GroupName        sql.NullString `db:"group_name"`
	DepartmentName   sql.NullString `db:"department_name"`
	TeacherFirstName sql.NullString `db:"teacher_first_name"`
	TeacherLastName  sql.NullString `db:"teacher_last_name"`
}

func (r subjectRow) toSubject() subject.Subject {
	sub := subject.Subject{
		ID:        r.ID,
		Name:      r.Name,
		GroupID:   r.GroupID,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.GroupName.Valid {
		sub.Group = &subject.GroupRef{
			Name:       r.GroupName.String,
			Department: core.NamedRef{Name: r.DepartmentName.String},
		}
	}
	if r.TeacherFirstName.Valid {
		sub.Teacher = &subject.TeacherRef{
			FirstName: r.TeacherFirstName.String,
			LastName:  r.TeacherLastName.String,
		}
	}
	return sub
}

const subjectCols = `s.id, s.name, s.group_id, s.teacher_id, s.created_at, s.updated_at,
	g.name AS group_name, d.name AS department_name,
	t.first_name AS teacher_first_name, t.last_name AS teacher_last_name`

const subjectJoins = ` FROM subject s
	LEFT JOIN "group" g ON g.id = s.group_id
	LEFT JOIN department d ON d.id = g.department_id
	LEFT JOIN "user" t ON t.id = s.teacher_id`

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	query := `INSERT INTO subject (name, group_id, teacher_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := repo.db.GetContext(ctx, &sub.ID, query, sub.Name, sub.GroupID, sub.TeacherID, sub.CreatedAt, sub.UpdatedAt); err != nil {
		return subject.Subject{}, wrapSubjectFKErr(err, "inserting subject")
	}
	return repo.GetSubjectByID(ctx, sub.ID)
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	query := `SELECT ` + subjectCols + subjectJoins
	var args []interface{}
	clause := " WHERE "
	if filter != nil {
		if filter.TeacherID > 0 {
			args = append(args, filter.TeacherID)
			query += clause + "s.teacher_id = " + placeholder(len(args))
			clause = " AND "
		}
		if filter.GroupID > 0 {
			args = append(args, filter.GroupID)
			query += clause + "s.group_id = " + placeholder(len(args))
		}
	}
	query += orderingClause(ordering, "s.name ASC")

	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toSubject())
	}
	return subs, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	var row subjectRow
	query := `SELECT ` + subjectCols + subjectJoins + ` WHERE s.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "finding subject by ID")
	}
	return row.toSubject(), nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	query := `UPDATE subject SET name = $1, group_id = $2, teacher_id = $3, updated_at = $4 WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query, sub.Name, sub.GroupID, sub.TeacherID, sub.UpdatedAt, sub.ID)
	if err != nil {
		return subject.Subject{}, wrapSubjectFKErr(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return repo.GetSubjectByID(ctx, sub.ID)
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.ErrNotFound
	}
	return nil
}

// wrapSubjectFKErr maps FK violations to the domain error matching the
// violated constraint.
func wrapSubjectFKErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqForeignKeyViolation {
		if strings.Contains(pqErr.Constraint, "teacher") {
			return subject.ErrNoTeacher
		}
		return subject.ErrNoGroup
	}
	return errors.Wrap(err, msg)
}
