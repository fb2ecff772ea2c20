package inmemdb

import (
	"context"
	"sort"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) withDepartment(grp group.Group) group.Group {
	repo.db.department.RLock()
	defer repo.db.department.RUnlock()

	if dep, ok := repo.db.department.table[grp.DepartmentID]; ok {
		grp.Department = &core.NamedRef{Name: dep.Name}
	}
	return grp
}

func (repo *groupRepository) departmentExists(id int) bool {
	repo.db.department.RLock()
	defer repo.db.department.RUnlock()
	_, ok := repo.db.department.table[id]
	return ok
}

func (repo *groupRepository) CreateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	if !repo.departmentExists(grp.DepartmentID) {
		return group.Group{}, group.ErrNoDepartment
	}

	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	repo.db.group.pk++
	grp.ID = repo.db.group.pk
	repo.db.group.table[grp.ID] = &grp
	return repo.withDepartment(grp), nil
}

func (repo *groupRepository) QueryGroups(_ context.Context, _ []core.DBOrdering) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	grps := make([]group.Group, 0, len(repo.db.group.table))
	for _, grp := range repo.db.group.table {
		grps = append(grps, repo.withDepartment(*grp))
	}
	sort.Slice(grps, func(i, j int) bool { return grps[i].Name < grps[j].Name })
	return grps, nil
}

func (repo *groupRepository) GetGroupByID(_ context.Context, id int) (group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	if grp, ok := repo.db.group.table[id]; ok {
		return repo.withDepartment(*grp), nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	if !repo.departmentExists(grp.DepartmentID) {
		return group.Group{}, group.ErrNoDepartment
	}

	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	orig, ok := repo.db.group.table[grp.ID]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	orig.Name = grp.Name
	orig.DepartmentID = grp.DepartmentID
	orig.UpdatedAt = grp.UpdatedAt
	return repo.withDepartment(*orig), nil
}

func (repo *groupRepository) DeleteGroup(_ context.Context, id int) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	if _, ok := repo.db.group.table[id]; !ok {
		return group.ErrNotFound
	}

	repo.db.user.RLock()
	for _, usr := range repo.db.user.table {
		if usr.GroupID != nil && *usr.GroupID == id {
			repo.db.user.RUnlock()
			return group.ErrInUse
		}
	}
	repo.db.user.RUnlock()

	repo.db.subject.RLock()
	for _, sub := range repo.db.subject.table {
		if sub.GroupID == id {
			repo.db.subject.RUnlock()
			return group.ErrInUse
		}
	}
	repo.db.subject.RUnlock()

	delete(repo.db.group.table, id)
	return nil
}
