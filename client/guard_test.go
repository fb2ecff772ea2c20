package client

import "testing"

func TestDecide(t *testing.T) {
	loading := AuthState{Loading: true}
	anonymous := AuthState{}
	admin := AuthState{Authenticated: true, Role: RoleAdmin}
	teacher := AuthState{Authenticated: true, Role: RoleTeacher}
	student := AuthState{Authenticated: true, Role: RoleStudent}

	tests := []struct {
		name    string
		state   AuthState
		allowed []string
		want    Decision
	}{
		{name: "public route renders while loading", state: loading, want: Render},
		{name: "public route renders for anonymous", state: anonymous, want: Render},
		{name: "loading never redirects", state: loading, allowed: []string{RoleAdmin}, want: Wait},
		{name: "loading never redirects even without session", state: AuthState{Loading: true, Authenticated: false}, allowed: []string{RoleStudent}, want: Wait},
		{name: "anonymous redirected to sign-in", state: anonymous, allowed: []string{RoleAdmin}, want: RedirectSignIn},
		{name: "wrong role redirected home", state: student, allowed: []string{RoleAdmin}, want: RedirectHome},
		{name: "allowed role renders", state: admin, allowed: []string{RoleAdmin}, want: Render},
		{name: "any of several roles renders", state: teacher, allowed: []string{RoleAdmin, RoleTeacher}, want: Render},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.state, tt.allowed); got != tt.want {
				t.Errorf("Decide() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestRouteTable_Decide(t *testing.T) {
	table := NewRouteTable()
	anonymous := AuthState{}
	admin := AuthState{Authenticated: true, Role: RoleAdmin}
	teacher := AuthState{Authenticated: true, Role: RoleTeacher}
	student := AuthState{Authenticated: true, Role: RoleStudent}

	tests := []struct {
		name  string
		state AuthState
		path  string
		want  Decision
	}{
		{name: "sign-in is public", state: anonymous, path: "/signin", want: Render},
		{name: "password reset is public", state: anonymous, path: "/reset-password", want: Render},
		{name: "home requires a session", state: anonymous, path: "/", want: RedirectSignIn},
		{name: "home renders for students", state: student, path: "/", want: Render},
		{name: "admin pages reject anonymous", state: anonymous, path: "/admin/users", want: RedirectSignIn},
		{name: "admin pages reject students", state: student, path: "/admin/users", want: RedirectHome},
		{name: "admin pages reject teachers", state: teacher, path: "/admin/departments", want: RedirectHome},
		{name: "admin pages render for admins", state: admin, path: "/admin/users", want: Render},
		{name: "quiz editing allows teachers", state: teacher, path: "/quizzes/edit/42", want: Render},
		{name: "quiz editing rejects students", state: student, path: "/quizzes/create", want: RedirectHome},
		{name: "teacher pages allow admins", state: admin, path: "/teacher/dashboard", want: Render},
		{name: "student pages reject teachers", state: teacher, path: "/student/quizzes", want: RedirectHome},
		{name: "student pages render for students", state: student, path: "/student/my-results", want: Render},
		{name: "unknown path falls through to not-found", state: anonymous, path: "/lol", want: Render},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Decide(tt.state, tt.path); got != tt.want {
				t.Errorf("table.Decide(%q) = %v; want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRouteTable_Match(t *testing.T) {
	table := NewRouteTable()

	tests := []struct {
		path        string
		wantPattern string
		wantOK      bool
	}{
		{path: "/", wantPattern: "/", wantOK: true},
		{path: "/quizzes", wantPattern: "/quizzes", wantOK: true},
		{path: "/quizzes/edit/7", wantPattern: "/quizzes/edit/*", wantOK: true},
		{path: "/admin", wantPattern: "/admin/*", wantOK: true},
		{path: "/admin/groups", wantPattern: "/admin/*", wantOK: true},
		{path: "/administrator", wantOK: false},
		{path: "/nope", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, ok := table.Match(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v; want %v", tt.path, ok, tt.wantOK)
			}
			if ok && route.Pattern != tt.wantPattern {
				t.Errorf("Match(%q) pattern = %q; want %q", tt.path, route.Pattern, tt.wantPattern)
			}
		})
	}
}
