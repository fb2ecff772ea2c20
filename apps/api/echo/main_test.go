package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/dashboard"
	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
	emailsvc "github.com/azedu/quizdesk/services/email"
	inmemdb "github.com/azedu/quizdesk/storage/database/inmem"
	"github.com/azedu/quizdesk/storage/otp"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

// testServer owns a fresh in-memory application for one test function.
type testServer struct {
	app      Server
	conf     *core.Config
	db       *inmemdb.DB
	usrRepo  user.Repository
	depRepo  department.Repository
	grpRepo  group.Repository
	subRepo  subject.Repository
	quizRepo quiz.Repository
	otpStore user.OTPStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conf := &core.Config{
		AppName:    "Quizdesk",
		Env:        "TEST",
		TestMode:   true,
		SecretKey:  "test-secret",
		OTPTimeout: 10 * time.Minute,
		Server:     core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	ts := &testServer{
		conf:     conf,
		db:       db,
		usrRepo:  inmemdb.NewUserRepository(db),
		depRepo:  inmemdb.NewDepartmentRepository(db),
		grpRepo:  inmemdb.NewGroupRepository(db),
		subRepo:  inmemdb.NewSubjectRepository(db),
		quizRepo: inmemdb.NewQuizRepository(db),
		otpStore: otp.NewInMemStore(),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	quiz.RegisterValidators(validate, translator)

	ts.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		UserSvc:        user.NewServiceMock(ts.usrRepo, mailSvc, ts.otpStore, conf),
		DepartmentSvc:  department.NewService(ts.depRepo),
		GroupSvc:       group.NewService(ts.grpRepo),
		SubjectSvc:     subject.NewService(ts.subRepo),
		QuizSvc:        quiz.NewService(ts.quizRepo),
		DashboardSvc:   dashboard.NewService(inmemdb.NewDashboardRepository(db)),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return ts
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func (ts *testServer) createUser(t *testing.T, fname, lname, email, pwd, role string, groupID *int, active bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		FirstName: fname,
		LastName:  lname,
		Email:     email,
		Role:      role,
		GroupID:   groupID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(active)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := ts.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (ts *testServer) createDepartment(t *testing.T, name string) department.Department {
	t.Helper()
	dep, err := ts.depRepo.CreateDepartment(context.Background(), department.Department{Name: name})
	if err != nil {
		t.Fatalf("CreateDepartment(): %v", err)
	}
	return dep
}

func (ts *testServer) createGroup(t *testing.T, name string, departmentID int) group.Group {
	t.Helper()
	grp, err := ts.grpRepo.CreateGroup(context.Background(), group.Group{Name: name, DepartmentID: departmentID})
	if err != nil {
		t.Fatalf("CreateGroup(): %v", err)
	}
	return grp
}

func (ts *testServer) createSubject(t *testing.T, name string, groupID, teacherID int) subject.Subject {
	t.Helper()
	sub, err := ts.subRepo.CreateSubject(context.Background(), subject.Subject{Name: name, GroupID: groupID, TeacherID: teacherID})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return sub
}

func (ts *testServer) createQuiz(t *testing.T, subjectID, teacherID int, start, end time.Time) quiz.Quiz {
	t.Helper()
	qz, err := ts.quizRepo.CreateQuiz(context.Background(), quiz.Quiz{
		Title:         "Test quiz",
		SubjectID:     subjectID,
		TeacherID:     teacherID,
		StartTime:     start,
		EndTime:       end,
		TotalMaxScore: 100,
		Questions: []quiz.Question{
			{
				Text: "2+2?", Type: quiz.TypeClosed, MaxScore: 50,
				Options: []quiz.Option{{Text: "4", IsCorrect: true}, {Text: "5"}},
			},
			{Text: "Explain.", Type: quiz.TypeOpen, MaxScore: 50},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuiz(): %v", err)
	}
	return qz
}

func (ts *testServer) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(ts.conf, GetUserClaims(ts.conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
