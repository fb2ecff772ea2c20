package client

// MenuEntry is one sidebar navigation item.
type MenuEntry struct {
	Label string
	Icon  string
	Path  string
}

// MenuFor maps a role to its ordered navigation entries. The lists are
// authored here independently of the route table; an entry added to one
// is not reflected in the other.
func MenuFor(role string) []MenuEntry {
	switch role {
	case RoleAdmin:
		return []MenuEntry{
			{Label: "Dashboard", Icon: "dashboard", Path: "/admin/dashboard"},
			{Label: "Kafedralar", Icon: "account_balance", Path: "/admin/departments"},
			{Label: "Qruplar", Icon: "groups", Path: "/admin/groups"},
			{Label: "Fənnlər", Icon: "menu_book", Path: "/admin/subjects"},
			{Label: "İstifadəçilər", Icon: "people", Path: "/admin/users"},
			{Label: "Quizlər", Icon: "quiz", Path: "/quizzes"},
		}
	case RoleTeacher:
		return []MenuEntry{
			{Label: "Dashboard", Icon: "dashboard", Path: "/teacher/dashboard"},
			{Label: "Fənnlərim", Icon: "menu_book", Path: "/teacher/subjects"},
			{Label: "Quizlər", Icon: "quiz", Path: "/quizzes"},
		}
	case RoleStudent:
		return []MenuEntry{
			{Label: "Dashboard", Icon: "dashboard", Path: "/student/dashboard"},
			{Label: "Quizlər", Icon: "quiz", Path: "/student/quizzes"},
			{Label: "Nəticələrim", Icon: "grading", Path: "/student/my-results"},
		}
	}
	return nil
}
