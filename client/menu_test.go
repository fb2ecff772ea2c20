package client

import "testing"

func TestMenuFor(t *testing.T) {
	tests := []struct {
		role string
		want []MenuEntry
	}{
		{
			role: RoleAdmin,
			want: []MenuEntry{
				{Label: "Dashboard", Icon: "dashboard", Path: "/admin/dashboard"},
				{Label: "Kafedralar", Icon: "account_balance", Path: "/admin/departments"},
				{Label: "Qruplar", Icon: "groups", Path: "/admin/groups"},
				{Label: "Fənnlər", Icon: "menu_book", Path: "/admin/subjects"},
				{Label: "İstifadəçilər", Icon: "people", Path: "/admin/users"},
				{Label: "Quizlər", Icon: "quiz", Path: "/quizzes"},
			},
		},
		{
			role: RoleTeacher,
			want: []MenuEntry{
				{Label: "Dashboard", Icon: "dashboard", Path: "/teacher/dashboard"},
				{Label: "Fənnlərim", Icon: "menu_book", Path: "/teacher/subjects"},
				{Label: "Quizlər", Icon: "quiz", Path: "/quizzes"},
			},
		},
		{
			role: RoleStudent,
			want: []MenuEntry{
				{Label: "Dashboard", Icon: "dashboard", Path: "/student/dashboard"},
				{Label: "Quizlər", Icon: "quiz", Path: "/student/quizzes"},
				{Label: "Nəticələrim", Icon: "grading", Path: "/student/my-results"},
			},
		},
		{role: ""},
		{role: "lol"},
	}
	for _, tt := range tests {
		name := tt.role
		if name == "" {
			name = "no role"
		}
		t.Run(name, func(t *testing.T) {
			got := MenuFor(tt.role)
			if len(got) != len(tt.want) {
				t.Fatalf("MenuFor(%q) returned %d entries; want %d", tt.role, len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("MenuFor(%q)[%d] = %+v; want %+v", tt.role, i, got[i], tt.want[i])
				}
			}
		})
	}
}
