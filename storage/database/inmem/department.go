package inmemdb

import (
	"context"
	"sort"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/department"
)

type departmentRepository struct {
	db *DB
}

var _ department.Repository = (*departmentRepository)(nil)

func NewDepartmentRepository(db *DB) *departmentRepository {
	return &departmentRepository{db: db}
}

func (repo *departmentRepository) CreateDepartment(_ context.Context, dep department.Department) (department.Department, error) {
	repo.db.department.Lock()
	defer repo.db.department.Unlock()

	for _, d := range repo.db.department.table {
		if d.Name == dep.Name {
			return department.Department{}, department.ErrNameExists
		}
	}
	repo.db.department.pk++
	dep.ID = repo.db.department.pk
	repo.db.department.table[dep.ID] = &dep
	return dep, nil
}

func (repo *departmentRepository) QueryDepartments(_ context.Context, _ []core.DBOrdering) ([]department.Department, error) {
	repo.db.department.RLock()
	defer repo.db.department.RUnlock()

	deps := make([]department.Department, 0, len(repo.db.department.table))
	for _, d := range repo.db.department.table {
		deps = append(deps, *d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps, nil
}

func (repo *departmentRepository) GetDepartmentByID(_ context.Context, id int) (department.Department, error) {
	repo.db.department.RLock()
	defer repo.db.department.RUnlock()

	if dep, ok := repo.db.department.table[id]; ok {
		return *dep, nil
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *departmentRepository) UpdateDepartment(_ context.Context, dep department.Department) (department.Department, error) {
	repo.db.department.Lock()
	defer repo.db.department.Unlock()

	orig, ok := repo.db.department.table[dep.ID]
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	for _, d := range repo.db.department.table {
		if d.ID != dep.ID && d.Name == dep.Name {
			return department.Department{}, department.ErrNameExists
		}
	}
	orig.Name = dep.Name
	orig.UpdatedAt = dep.UpdatedAt
	return *orig, nil
}

func (repo *departmentRepository) DeleteDepartment(_ context.Context, id int) error {
	repo.db.department.Lock()
	defer repo.db.department.Unlock()

	if _, ok := repo.db.department.table[id]; !ok {
		return department.ErrNotFound
	}

	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	for _, grp := range repo.db.group.table {
		if grp.DepartmentID == id {
			return department.ErrInUse
		}
	}

	delete(repo.db.department.table, id)
	return nil
}
