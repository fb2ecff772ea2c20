package client

import "strings"

// Roles understood by the route table and menu builder. They mirror the
// backend's role names exactly.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

// HomePath is where authenticated users land when a route rejects their
// role.
const HomePath = "/"

// Decision is the outcome of guarding a route. Redirect outcomes replace
// history so the back button does not loop into the guard.
type Decision int

const (
	// Wait: resolution has not completed; render a neutral placeholder
	// and make no redirect decision yet.
	Wait Decision = iota
	// Render the guarded content.
	Render
	// RedirectSignIn: no session.
	RedirectSignIn
	// RedirectHome: authenticated but the role is not allowed here.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "Wait"
	case Render:
		return "Render"
	case RedirectSignIn:
		return "RedirectSignIn"
	case RedirectHome:
		return "RedirectHome"
	}
	return "Unknown"
}

// Decide guards a route with the given allowed roles. The checks run in
// order: loading, authentication, role membership. An empty role set
// means the route is public.
func Decide(state AuthState, allowedRoles []string) Decision {
	if len(allowedRoles) == 0 {
		return Render
	}
	if state.Loading {
		return Wait
	}
	if !state.Authenticated {
		return RedirectSignIn
	}
	for _, role := range allowedRoles {
		if state.Role == role {
			return Render
		}
	}
	return RedirectHome
}

type (
	// Route pairs a path pattern with the roles allowed to visit it.
	// Patterns ending in "/*" match any path under the prefix; anything
	// else matches exactly. Public routes carry no roles.
	Route struct {
		Pattern string
		Roles   []string
	}

	// RouteTable is the single declarative mapping from path to allowed
	// roles; guards and navigation both consult it so the coupling is
	// checked in one place instead of per call site.
	RouteTable []Route
)

// NewRouteTable returns the application's route surface. First match
// wins, so exact routes precede their wildcard parents.
func NewRouteTable() RouteTable {
	return RouteTable{
		{Pattern: SignInPath},
		{Pattern: "/forgot-password"},
		{Pattern: "/verify-otp"},
		{Pattern: "/reset-password"},
		{Pattern: HomePath, Roles: []string{RoleAdmin, RoleTeacher, RoleStudent}},
		{Pattern: "/quizzes", Roles: []string{RoleAdmin, RoleTeacher}},
		{Pattern: "/quizzes/create", Roles: []string{RoleAdmin, RoleTeacher}},
		{Pattern: "/quizzes/edit/*", Roles: []string{RoleAdmin, RoleTeacher}},
		{Pattern: "/admin/*", Roles: []string{RoleAdmin}},
		{Pattern: "/teacher/*", Roles: []string{RoleAdmin, RoleTeacher}},
		{Pattern: "/student/*", Roles: []string{RoleStudent}},
	}
}

// Match finds the route governing path. The second return is false for
// unknown paths, which render not-found.
func (table RouteTable) Match(path string) (Route, bool) {
	for _, route := range table {
		if matchPattern(route.Pattern, path) {
			return route, true
		}
	}
	return Route{}, false
}

// Decide guards path against the table. Unknown paths are public; they
// fall through to the application's not-found page.
func (table RouteTable) Decide(state AuthState, path string) Decision {
	route, ok := table.Match(path)
	if !ok {
		return Render
	}
	return Decide(state, route.Roles)
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}
