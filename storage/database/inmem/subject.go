package inmemdb

import (
	"context"
	"sort"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) withRefs(sub subject.Subject) subject.Subject {
	repo.db.group.RLock()
	if grp, ok := repo.db.group.table[sub.GroupID]; ok {
		ref := &subject.GroupRef{Name: grp.Name}
		repo.db.department.RLock()
		if dep, ok := repo.db.department.table[grp.DepartmentID]; ok {
			ref.Department = core.NamedRef{Name: dep.Name}
		}
		repo.db.department.RUnlock()
		sub.Group = ref
	}
	repo.db.group.RUnlock()

	repo.db.user.RLock()
	if usr, ok := repo.db.user.table[sub.TeacherID]; ok {
		sub.Teacher = &subject.TeacherRef{FirstName: usr.FirstName, LastName: usr.LastName}
	}
	repo.db.user.RUnlock()
	return sub
}

func (repo *subjectRepository) checkRefs(sub subject.Subject) error {
	repo.db.group.RLock()
	_, ok := repo.db.group.table[sub.GroupID]
	repo.db.group.RUnlock()
	if !ok {
		return subject.ErrNoGroup
	}

	repo.db.user.RLock()
	usr, ok := repo.db.user.table[sub.TeacherID]
	repo.db.user.RUnlock()
	if !ok || !usr.IsTeacher() {
		return subject.ErrNoTeacher
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	if err := repo.checkRefs(sub); err != nil {
		return subject.Subject{}, err
	}

	repo.db.subject.Lock()
	defer repo.db.subject.Unlock()

	repo.db.subject.pk++
	sub.ID = repo.db.subject.pk
	repo.db.subject.table[sub.ID] = &sub
	return repo.withRefs(sub), nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, filter *subject.QueryFilter, _ []core.DBOrdering) ([]subject.Subject, error) {
	repo.db.subject.RLock()
	defer repo.db.subject.RUnlock()

	subs := make([]subject.Subject, 0, len(repo.db.subject.table))
	for _, sub := range repo.db.subject.table {
		if filter != nil {
			if filter.TeacherID > 0 && sub.TeacherID != filter.TeacherID {
				continue
			}
			if filter.GroupID > 0 && sub.GroupID != filter.GroupID {
				continue
			}
		}
		subs = append(subs, repo.withRefs(*sub))
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id int) (subject.Subject, error) {
	repo.db.subject.RLock()
	defer repo.db.subject.RUnlock()

	if sub, ok := repo.db.subject.table[id]; ok {
		return repo.withRefs(*sub), nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	if err := repo.checkRefs(sub); err != nil {
		return subject.Subject{}, err
	}

	repo.db.subject.Lock()
	defer repo.db.subject.Unlock()

	orig, ok := repo.db.subject.table[sub.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	orig.Name = sub.Name
	orig.GroupID = sub.GroupID
	orig.TeacherID = sub.TeacherID
	orig.UpdatedAt = sub.UpdatedAt
	return repo.withRefs(*orig), nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.subject.Lock()
	defer repo.db.subject.Unlock()

	if _, ok := repo.db.subject.table[id]; !ok {
		return subject.ErrNotFound
	}
	delete(repo.db.subject.table, id)
	return nil
}
