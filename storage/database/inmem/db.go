// Package inmemdb provides map-backed repositories for tests and local
// development without a database server.
package inmemdb

import (
	"sync"

	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
)

type (
	DB struct {
		user       *userTable
		department *departmentTable
		group      *groupTable
		subject    *subjectTable
		quiz       *quizTable
		result     *resultTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		pk    int
	}

	departmentTable struct {
		sync.RWMutex
		table map[int]*department.Department
		pk    int
	}

	groupTable struct {
		sync.RWMutex
		table map[int]*group.Group
		pk    int
	}

	subjectTable struct {
		sync.RWMutex
		table map[int]*subject.Subject
		pk    int
	}

	quizTable struct {
		sync.RWMutex
		table map[int]*quiz.Quiz
		pk    int
		qPK   int // question ids
		oPK   int // option ids
	}

	resultTable struct {
		sync.RWMutex
		table map[int]*quiz.Result
		pk    int
		aPK   int // answer ids
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		department: &departmentTable{table: make(map[int]*department.Department)},
		group:      &groupTable{table: make(map[int]*group.Group)},
		subject:    &subjectTable{table: make(map[int]*subject.Subject)},
		quiz:       &quizTable{table: make(map[int]*quiz.Quiz)},
		result:     &resultTable{table: make(map[int]*quiz.Result)},
	}
	return db, nil
}
