package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
)

// The route surface enforces one role set per resource: a missing token is
// 401, a wrong role 403.
func Test_roleEnforcement(t *testing.T) {
	ts := newTestServer(t)

	dep := ts.createDepartment(t, "İnformatika")
	grp := ts.createGroup(t, "682.19E", dep.ID)
	admin := ts.createUser(t, "Admin", "Adminov", "admin@test.az", "s3cr3t", user.RoleAdmin, nil, true)
	teacher := ts.createUser(t, "Tural", "Məmmədov", "tural@test.az", "s3cr3t", user.RoleTeacher, nil, true)
	student := ts.createUser(t, "Aysel", "Quliyeva", "aysel@test.az", "s3cr3t", user.RoleStudent, &grp.ID, true)

	tokens := map[string]string{
		user.RoleAdmin:   ts.getToken(t, admin),
		user.RoleTeacher: ts.getToken(t, teacher),
		user.RoleStudent: ts.getToken(t, student),
	}

	endpoints := []struct {
		path    string
		allowed []string
	}{
		{path: "/api/departments", allowed: []string{user.RoleAdmin}},
		{path: "/api/groups", allowed: []string{user.RoleAdmin}},
		{path: "/api/users", allowed: []string{user.RoleAdmin}},
		{path: "/api/users/teachers", allowed: []string{user.RoleAdmin}},
		{path: "/api/subjects", allowed: []string{user.RoleAdmin, user.RoleTeacher}},
		{path: "/api/quizzes", allowed: []string{user.RoleAdmin, user.RoleTeacher}},
		{path: "/api/quizzes/my-results", allowed: []string{user.RoleStudent}},
		{path: "/api/take-quiz/available", allowed: []string{user.RoleStudent}},
		{path: "/api/grading/results", allowed: []string{user.RoleAdmin, user.RoleTeacher}},
		{path: "/api/dashboard/admin/overview", allowed: []string{user.RoleAdmin}},
		{path: "/api/dashboard/admin/recent-results", allowed: []string{user.RoleAdmin}},
		{path: "/api/dashboard/student/overview", allowed: []string{user.RoleStudent}},
	}

	isAllowed := func(role string, allowed []string) bool {
		for _, r := range allowed {
			if r == role {
				return true
			}
		}
		return false
	}

	for _, ep := range endpoints {
		t.Run(ep.path, func(t *testing.T) {
			// no token
			req, rec := newAuthRequest(http.MethodGet, ep.path, "")
			ts.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

			for _, role := range user.AllRoles {
				req, rec := newAuthRequest(http.MethodGet, ep.path, tokens[role])
				ts.app.ServeHTTP(rec, req)

				if isAllowed(role, ep.allowed) {
					if rec.Code != http.StatusOK {
						t.Errorf("%s as %s: code = %v; want 200 (body %s)", ep.path, role, rec.Code, rec.Body.String())
					}
				} else {
					checkCodeAndData(t, httpTest{
						wantCode: http.StatusForbidden,
						wantData: marchallObj(t, httpErr{Error: "permission denied"}),
					}, rec)
				}
			}
		})
	}
}

// Subject writes stay admin-only even though teachers may read the list.
func Test_subjectApi_writeRoles(t *testing.T) {
	ts := newTestServer(t)

	dep := ts.createDepartment(t, "İnformatika")
	grp := ts.createGroup(t, "682.19E", dep.ID)
	admin := ts.createUser(t, "Admin", "Adminov", "admin@test.az", "s3cr3t", user.RoleAdmin, nil, true)
	teacher := ts.createUser(t, "Tural", "Məmmədov", "tural@test.az", "s3cr3t", user.RoleTeacher, nil, true)

	body := marchallObj(t, subject.NewSubject{Name: "Alqoritmlər", GroupID: grp.ID, TeacherID: teacher.ID})

	req, rec := newAuthRequest(http.MethodPost, "/api/subjects", ts.getToken(t, teacher), body)
	ts.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "permission denied"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/api/subjects", ts.getToken(t, admin), body)
	ts.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("admin create: code = %v; want 201 (body %s)", rec.Code, rec.Body.String())
	}
}

// Teachers may list subjects but only see their own.
func Test_subjectApi_teacherScope(t *testing.T) {
	ts := newTestServer(t)

	dep := ts.createDepartment(t, "İnformatika")
	grp := ts.createGroup(t, "682.19E", dep.ID)
	teacher1 := ts.createUser(t, "Tural", "Məmmədov", "tural@test.az", "s3cr3t", user.RoleTeacher, nil, true)
	teacher2 := ts.createUser(t, "Leyla", "Əliyeva", "leyla@test.az", "s3cr3t", user.RoleTeacher, nil, true)
	admin := ts.createUser(t, "Admin", "Adminov", "admin@test.az", "s3cr3t", user.RoleAdmin, nil, true)

	sub1 := ts.createSubject(t, "Alqoritmlər", grp.ID, teacher1.ID)
	sub2 := ts.createSubject(t, "Verilənlər bazası", grp.ID, teacher2.ID)

	get := func(t *testing.T, token string) []map[string]interface{} {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/subjects", token)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var subs []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &subs); err != nil {
			t.Fatalf("unmarshalling: %v", err)
		}
		return subs
	}

	if subs := get(t, ts.getToken(t, admin)); len(subs) != 2 {
		t.Errorf("admin sees %d subjects; want 2", len(subs))
	}
	subs := get(t, ts.getToken(t, teacher1))
	if len(subs) != 1 {
		t.Fatalf("teacher sees %d subjects; want own 1", len(subs))
	}
	if id := int(subs[0]["id"].(float64)); id != sub1.ID {
		t.Errorf("teacher sees subject %d; want %d (not %d)", id, sub1.ID, sub2.ID)
	}
}
