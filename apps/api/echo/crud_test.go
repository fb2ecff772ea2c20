package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/user"
)

func Test_departmentApi(t *testing.T) {
	ts := newTestServer(t)

	admin := ts.createUser(t, "Admin", "Adminov", "admin@test.az", "s3cr3t", user.RoleAdmin, nil, true)
	token := ts.getToken(t, admin)

	t.Run("name is required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/departments", token, marchallObj(t, department.NewDepartment{}))
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "name is a required field"}),
		}, rec)
	})

	var dep department.Department

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/departments", token, marchallObj(t, department.NewDepartment{Name: "İnformatika"}))
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &dep); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if dep.ID == 0 || dep.Name != "İnformatika" {
			t.Errorf("dep = %+v", dep)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/departments", token, marchallObj(t, department.NewDepartment{Name: "İnformatika"}))
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "a department with this name already exists"}),
		}, rec)
	})

	t.Run("rename", func(t *testing.T) {
		body := marchallObj(t, department.NewDepartment{Name: "Riyaziyyat"})
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/departments/%d", dep.ID), token, body)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete blocked while groups reference it", func(t *testing.T) {
		grp := ts.createGroup(t, "682.19E", dep.ID)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/departments/%d", dep.ID), token)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "department has groups and cannot be deleted"}),
		}, rec)

		// once the group is gone the department can go too
		req, rec = newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/groups/%d", grp.ID), token)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("deleting group: code = %v; body %s", rec.Code, rec.Body.String())
		}
		req, rec = newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/departments/%d", dep.ID), token)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("deleting department: code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/departments/999", token)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})
}

func Test_groupApi(t *testing.T) {
	ts := newTestServer(t)

	admin := ts.createUser(t, "Admin", "Adminov", "admin@test.az", "s3cr3t", user.RoleAdmin, nil, true)
	token := ts.getToken(t, admin)
	dep := ts.createDepartment(t, "İnformatika")

	t.Run("department must exist", func(t *testing.T) {
		body := marchallObj(t, group.NewGroup{Name: "682.19E", DepartmentID: 999})
		req, rec := newAuthRequest(http.MethodPost, "/api/groups", token, body)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"department_id": "department does not exist"}),
		}, rec)
	})

	var grp group.Group

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, group.NewGroup{Name: "682.19E", DepartmentID: dep.ID})
		req, rec := newAuthRequest(http.MethodPost, "/api/groups", token, body)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &grp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
	})

	t.Run("delete blocked while students reference it", func(t *testing.T) {
		ts.createUser(t, "Aysel", "Quliyeva", "aysel@test.az", "s3cr3t", user.RoleStudent, &grp.ID, true)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/groups/%d", grp.ID), token)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "group has members or subjects and cannot be deleted"}),
		}, rec)
	})
}
