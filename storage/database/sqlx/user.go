package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

type userRow struct {
	ID             int            `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	Role           string         `db:"role"`
	GroupID        sql.NullInt64  `db:"group_id"`
	IsActive       bool           `db:"is_active"`
	PasswordHash   []byte         `db:"password_hash"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	LastLogin      sql.NullTime   `db:"last_login"`
	GroupName      sql.NullString `db:"group_name"`
	DepartmentName sql.NullString `db:"department_name"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Role:         r.Role,
		IsActive:     &r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.GroupID.Valid {
		gid := int(r.GroupID.Int64)
		usr.GroupID = &gid
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	if r.GroupName.Valid {
		usr.Group = &core.NamedRef{Name: r.GroupName.String}
	}
	if r.DepartmentName.Valid {
		usr.Department = &core.NamedRef{Name: r.DepartmentName.String}
	}
	return usr
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}

const userCols = `u.id, u.first_name, u.last_name, u.email, u.role, u.group_id,
	u.is_active, u.password_hash, u.created_at, u.updated_at, u.last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to the domain not-found error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		query += ` AND id != $2`
		args = append(args, excludedUsers[0].ID)
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO "user" (first_name, last_name, email, role, group_id, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	var groupID interface{}
	if usr.GroupID != nil {
		groupID = *usr.GroupID
	}
	err := repo.db.GetContext(ctx, &usr.ID, query,
		usr.FirstName, usr.LastName, usr.Email, usr.Role, groupID,
		!usr.Deactivated(), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	query := `SELECT ` + userCols + ` FROM "user" u WHERE TRUE`
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return placeholder(len(args))
	}
	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			query += ` AND (u.first_name ILIKE ` + p + ` OR u.last_name ILIKE ` + p + ` OR u.email ILIKE ` + p + `)`
		}
		if filter.Role != "" {
			query += ` AND u.role = ` + arg(filter.Role)
		}
		if filter.IsActive != nil {
			query += ` AND u.is_active = ` + arg(*filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			query += ` AND u.created_at >= ` + arg(filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			query += ` AND u.created_at <= ` + arg(filter.CreatedTo)
		}
	}
	query += orderingClause(ordering, "u.created_at DESC")

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo userRepository) QueryTeachers(ctx context.Context) ([]user.User, error) {
	query := `SELECT ` + userCols + ` FROM "user" u WHERE u.role = $1 AND u.is_active ORDER BY u.last_name, u.first_name`
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, user.RoleTeacher); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return toUsers(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	query := `SELECT ` + userCols + ` FROM "user" u WHERE u.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userCols + ` FROM "user" u WHERE u.email = $1`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by email")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetProfile(ctx context.Context, id int) (user.User, error) {
	var row userRow
	query := `
		SELECT ` + userCols + `, g.name AS group_name, d.name AS department_name
		FROM "user" u
		LEFT JOIN "group" g ON g.id = u.group_id
		LEFT JOIN department d ON d.id = g.department_id
		WHERE u.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding profile")
	}
	return row.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	query := `
		UPDATE "user"
		SET first_name = $1, last_name = $2, email = $3, role = $4, group_id = $5,
		    updated_at = $6,
		    password_hash = COALESCE($7, password_hash),
		    is_active = COALESCE($8, is_active)
		WHERE id = $9`
	var groupID interface{}
	if usr.GroupID != nil {
		groupID = *usr.GroupID
	}
	var pwdHash interface{}
	if len(usr.PasswordHash) > 0 {
		pwdHash = usr.PasswordHash
	}
	var active interface{}
	if isActive != nil {
		active = *isActive
	}
	res, err := repo.db.ExecContext(ctx, query,
		usr.FirstName, usr.LastName, usr.Email, usr.Role, groupID,
		usr.UpdatedAt, pwdHash, active, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = time.Now().UTC()
	query := `UPDATE "user" SET last_login = $1 WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, usr.LastLogin, usr.ID); err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}
