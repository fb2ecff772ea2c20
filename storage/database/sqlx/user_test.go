package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/azedu/quizdesk/core/user"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations not met: %v", err)
		}
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func userRows(usr user.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "role", "group_id",
		"is_active", "password_hash", "created_at", "updated_at", "last_login",
	})
	var groupID interface{}
	if usr.GroupID != nil {
		groupID = *usr.GroupID
	}
	now := time.Now().UTC()
	rows.AddRow(usr.ID, usr.FirstName, usr.LastName, usr.Email, usr.Role, groupID,
		!usr.Deactivated(), usr.PasswordHash, now, now, nil)
	return rows
}

func Test_userRepository_GetUserByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM "user" u WHERE u\.email = \$1`).
		WithArgs("aysel@test.az").
		WillReturnRows(userRows(user.User{ID: 7, Email: "aysel@test.az", Role: user.RoleStudent}))

	usr, err := repo.GetUserByEmail(ctx, "aysel@test.az")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if usr.ID != 7 {
		t.Errorf("ID = %d; want 7", usr.ID)
	}

	mock.ExpectQuery(`SELECT (.+) FROM "user" u WHERE u\.email = \$1`).
		WithArgs("missing@test.az").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err = repo.GetUserByEmail(ctx, "missing@test.az"); err != user.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func Test_userRepository_CheckEmailUniqueness(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM "user" WHERE email = \$1\)`).
		WithArgs("taken@test.az").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.CheckEmailUniqueness(ctx, "taken@test.az"); err != user.ErrEmailExists {
		t.Errorf("err = %v; want ErrEmailExists", err)
	}

	// the excluded user does not count against itself
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM "user" WHERE email = \$1 AND id != \$2\)`).
		WithArgs("taken@test.az", 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if err := repo.CheckEmailUniqueness(ctx, "taken@test.az", user.User{ID: 7}); err != nil {
		t.Errorf("err = %v; want nil", err)
	}
}

func Test_userRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	gid := 3
	usr := user.User{
		FirstName: "Aysel", LastName: "Quliyeva", Email: "aysel@test.az",
		Role: user.RoleStudent, GroupID: &gid,
	}
	mock.ExpectQuery(`INSERT INTO "user" (.+) RETURNING id`).
		WithArgs(usr.FirstName, usr.LastName, usr.Email, usr.Role, gid,
			true, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	created, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	if created.ID != 42 {
		t.Errorf("ID = %d; want 42", created.ID)
	}
}

func Test_userRepository_QueryUsers_filters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "user" u WHERE TRUE `+
		`AND \(u\.first_name ILIKE \$1 OR u\.last_name ILIKE \$1 OR u\.email ILIKE \$1\) `+
		`AND u\.role = \$2 ORDER BY u\.created_at DESC`).
		WithArgs("%ays%", user.RoleStudent).
		WillReturnRows(userRows(user.User{ID: 7, Role: user.RoleStudent}))

	users, err := repo.QueryUsers(context.Background(), &user.QueryFilter{Search: "ays", Role: user.RoleStudent}, nil)
	if err != nil {
		t.Fatalf("QueryUsers(): %v", err)
	}
	if len(users) != 1 || users[0].ID != 7 {
		t.Errorf("users = %+v; want the single match", users)
	}
}

func Test_userRepository_UpdateUser_missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE "user" SET (.+) WHERE id = \$9`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.UpdateUser(context.Background(), user.User{ID: 99}, nil); err != user.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func Test_userRepository_DeleteUsersByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM "user" WHERE id IN \(\$1, \$2\)`).
		WithArgs(3, 4).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.DeleteUsersByID(context.Background(), 3, 4); err != nil {
		t.Fatalf("DeleteUsersByID(): %v", err)
	}
}
