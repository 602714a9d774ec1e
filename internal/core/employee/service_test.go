package employee

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/hrcore-identity/internal/core/name"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees    map[string]*Employee
	order        []string
	refs         map[string]map[string]int
	failReassign map[string]error
	failCreate   error
	lookups      []string
	locked       []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees:    make(map[string]*Employee),
		refs:         make(map[string]map[string]int),
		failReassign: make(map[string]error),
	}
}

func (r *fakeEmployeeRepo) add(e *Employee) *Employee {
	clone := cloneEmployee(e)
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if clone.Status == "" {
		clone.Status = StatusActive
	}
	r.employees[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneEmployee(clone)
}

func (r *fakeEmployeeRepo) addRefs(table, employeeID string, n int) {
	if r.refs[table] == nil {
		r.refs[table] = make(map[string]int)
	}
	r.refs[table][employeeID] += n
}

func (r *fakeEmployeeRepo) active() []*Employee {
	out := make([]*Employee, 0, len(r.order))
	for _, id := range r.order {
		e := r.employees[id]
		if e.Status != StatusTerminated {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeEmployeeRepo) first(match func(*Employee) bool) (*Employee, error) {
	for _, e := range r.active() {
		if match(e) {
			return cloneEmployee(e), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func eqFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (r *fakeEmployeeRepo) FindByExactName(_ context.Context, firstName, lastName string) (*Employee, error) {
	r.lookups = append(r.lookups, "exact")
	return r.first(func(e *Employee) bool { return eqFold(e.FirstName, firstName) && eqFold(e.LastName, lastName) })
}

func (r *fakeEmployeeRepo) FindByNickname(_ context.Context, key string) (*Employee, error) {
	r.lookups = append(r.lookups, "nickname")
	return r.first(func(e *Employee) bool { return e.Nickname != "" && name.Normalize(e.Nickname) == key })
}

func (r *fakeEmployeeRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	r.lookups = append(r.lookups, "email")
	return r.first(func(e *Employee) bool { return e.Email() != "" && eqFold(e.Email(), email) })
}

func (r *fakeEmployeeRepo) ListByLastName(_ context.Context, lastName string) ([]*Employee, error) {
	r.lookups = append(r.lookups, "last_name")
	var out []*Employee
	for _, e := range r.active() {
		if eqFold(e.LastName, lastName) {
			out = append(out, cloneEmployee(e))
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) FindByFullName(_ context.Context, fullName string) (*Employee, error) {
	r.lookups = append(r.lookups, "full_name")
	return r.first(func(e *Employee) bool { return eqFold(e.FirstName+" "+e.LastName, fullName) })
}

func (r *fakeEmployeeRepo) FindByPhoneDigits(_ context.Context, digits string) (*Employee, error) {
	r.lookups = append(r.lookups, "phone")
	return r.first(func(e *Employee) bool { return DigitsOnly(e.Phone()) == digits })
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	return r.add(e), nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) FindByIDForUpdate(ctx context.Context, id string) (*Employee, error) {
	r.locked = append(r.locked, id)
	return r.FindByID(ctx, id)
}

func (r *fakeEmployeeRepo) ListActive(_ context.Context) ([]*Employee, error) {
	out := make([]*Employee, 0)
	for _, e := range r.active() {
		out = append(out, cloneEmployee(e))
	}
	return out, nil
}

func (r *fakeEmployeeRepo) ApplyUpdates(_ context.Context, id string, updates Updates, updatedAt time.Time) error {
	e, ok := r.employees[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	updates.Apply(e)
	e.UpdatedAt = updatedAt
	return nil
}

func (r *fakeEmployeeRepo) ReassignReferences(_ context.Context, ref CollaboratorTable, fromID, toID string) (int64, error) {
	if err := r.failReassign[ref.Name]; err != nil {
		return 0, err
	}
	rows := r.refs[ref.Name]
	n := rows[fromID]
	if n == 0 {
		return 0, nil
	}
	rows[toID] += n
	delete(rows, fromID)
	return int64(n), nil
}

func (r *fakeEmployeeRepo) Retire(_ context.Context, id, reason string, on time.Time) error {
	e, ok := r.employees[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	e.Status = StatusTerminated
	e.TerminationReason = reason
	if e.TerminationDate == nil {
		d := on
		e.TerminationDate = &d
	}
	return nil
}

type repoSnapshot struct {
	employees map[string]*Employee
	order     []string
	refs      map[string]map[string]int
}

func (r *fakeEmployeeRepo) snapshot() repoSnapshot {
	snap := repoSnapshot{
		employees: make(map[string]*Employee, len(r.employees)),
		order:     append([]string(nil), r.order...),
		refs:      make(map[string]map[string]int, len(r.refs)),
	}
	for id, e := range r.employees {
		snap.employees[id] = cloneEmployee(e)
	}
	for table, rows := range r.refs {
		copied := make(map[string]int, len(rows))
		for id, n := range rows {
			copied[id] = n
		}
		snap.refs[table] = copied
	}
	return snap
}

func (r *fakeEmployeeRepo) restore(snap repoSnapshot) {
	r.employees = snap.employees
	r.order = snap.order
	r.refs = snap.refs
}

// fakeTransactionManager はエラー時にリポジトリの状態を巻き戻します。
type fakeTransactionManager struct {
	repo       *fakeEmployeeRepo
	readWrite  int
	readOnly   int
	rolledBack int
}

func (m *fakeTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	m.readOnly++
	return fn(ctx)
}

func (m *fakeTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	m.readWrite++
	snap := m.repo.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(snap)
		m.rolledBack++
		return err
	}
	return nil
}

func cloneEmployee(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	copy := *emp
	copy.Attributes = emp.Attributes.Clone()
	if emp.TerminationDate != nil {
		d := *emp.TerminationDate
		copy.TerminationDate = &d
	}
	return &copy
}

func strPtr(v string) *string {
	return &v
}
