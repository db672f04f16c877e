package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/beachhead-labs/beachhead-backend/internal/projects/domain"
)

// MemStore is an in-memory record store with the same contract as the
// Postgres-backed repository.Store. It counts calls per method and can be told
// to fail specific calls.
type MemStore struct {
	mu sync.Mutex

	projects    map[string]domain.Project
	assumptions []domain.Assumption
	backups     []domain.AssumptionBackup

	calls map[string]int

	// FailOn makes the named method return the error on every call.
	FailOn map[string]error
	// FailUpdateFor makes UpdateAssumptionStage fail for the given assumption ids.
	FailUpdateFor map[string]error
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects:      map[string]domain.Project{},
		calls:         map[string]int{},
		FailOn:        map[string]error{},
		FailUpdateFor: map[string]error{},
	}
}

// PutProject inserts or replaces a project.
func (m *MemStore) PutProject(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
}

// PutAssumptions appends live assumption rows.
func (m *MemStore) PutAssumptions(rows ...domain.Assumption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assumptions = append(m.assumptions, rows...)
}

// PutBackups appends backup rows.
func (m *MemStore) PutBackups(rows ...domain.AssumptionBackup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backups = append(m.backups, rows...)
}

// Project returns a copy of the stored project.
func (m *MemStore) Project(id string) (domain.Project, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	return p, ok
}

// Assumptions returns a copy of the project's live rows in storage order.
func (m *MemStore) Assumptions(projectID string) []domain.Assumption {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assumptionsLocked(projectID)
}

// Calls returns how many times the named method was invoked.
func (m *MemStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// ResetCalls zeroes every call counter.
func (m *MemStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = map[string]int{}
}

func (m *MemStore) enter(method string) error {
	m.calls[method]++
	return m.FailOn[method]
}

func (m *MemStore) assumptionsLocked(projectID string) []domain.Assumption {
	out := make([]domain.Assumption, 0)
	for _, a := range m.assumptions {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

func (m *MemStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetProject"); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, &domain.StoreError{Op: "get", Table: "projects", Kind: domain.KindNoRows, Err: domain.ErrNotFound}
	}
	return &p, nil
}

func (m *MemStore) SetMigratedAt(ctx context.Context, projectID string, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SetMigratedAt"); err != nil {
		return err
	}
	p, ok := m.projects[projectID]
	if !ok {
		return &domain.StoreError{Op: "update", Table: "projects", Kind: domain.KindNoRows, Err: domain.ErrNotFound}
	}
	if at == nil {
		p.MigratedAt = nil
	} else {
		t := *at
		p.MigratedAt = &t
	}
	m.projects[projectID] = p
	return nil
}

func (m *MemStore) ListPendingProjects(ctx context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListPendingProjects"); err != nil {
		return nil, err
	}

	var pending []domain.Project
	for _, p := range m.projects {
		if p.MigratedAt == nil && len(m.assumptionsLocked(p.ID)) > 0 {
			pending = append(pending, p)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (m *MemStore) CountAssumptions(ctx context.Context, projectID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountAssumptions"); err != nil {
		return 0, err
	}
	return len(m.assumptionsLocked(projectID)), nil
}

func (m *MemStore) ListAssumptions(ctx context.Context, projectID string) ([]domain.Assumption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListAssumptions"); err != nil {
		return nil, err
	}
	return m.assumptionsLocked(projectID), nil
}

func (m *MemStore) UpdateAssumptionStage(ctx context.Context, id string, stage domain.Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateAssumptionStage"); err != nil {
		return err
	}
	if err := m.FailUpdateFor[id]; err != nil {
		return err
	}
	for i := range m.assumptions {
		if m.assumptions[i].ID == id {
			m.assumptions[i].ValidationStage = stage
			return nil
		}
	}
	return &domain.StoreError{Op: "update", Table: "project_assumptions", Kind: domain.KindNoRows, Err: errors.New("no rows updated")}
}

func (m *MemStore) DeleteAssumptions(ctx context.Context, projectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAssumptions"); err != nil {
		return 0, err
	}
	kept := m.assumptions[:0]
	var n int64
	for _, a := range m.assumptions {
		if a.ProjectID == projectID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.assumptions = kept
	return n, nil
}

func (m *MemStore) InsertAssumptions(ctx context.Context, rows []domain.Assumption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("InsertAssumptions"); err != nil {
		return err
	}
	// one statement: a conflict anywhere writes nothing
	seen := make(map[string]struct{}, len(m.assumptions)+len(rows))
	for _, existing := range m.assumptions {
		seen[existing.ID] = struct{}{}
	}
	for _, a := range rows {
		if _, dup := seen[a.ID]; dup {
			return &domain.StoreError{Op: "insert", Table: "project_assumptions", Kind: domain.KindConflict, Err: fmt.Errorf("duplicate id %s", a.ID)}
		}
		seen[a.ID] = struct{}{}
	}
	m.assumptions = append(m.assumptions, rows...)
	return nil
}

func (m *MemStore) ListAssumptionBackups(ctx context.Context, projectID string) ([]domain.AssumptionBackup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListAssumptionBackups"); err != nil {
		return nil, err
	}

	var newest time.Time
	for _, b := range m.backups {
		if b.ProjectID == projectID && b.BackedUpAt.After(newest) {
			newest = b.BackedUpAt
		}
	}

	var out []domain.AssumptionBackup
	for _, b := range m.backups {
		if b.ProjectID == projectID && b.BackedUpAt.Equal(newest) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) SnapshotAssumptions(ctx context.Context, projectID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SnapshotAssumptions"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range m.assumptionsLocked(projectID) {
		m.backups = append(m.backups, domain.AssumptionBackup{Assumption: a, BackedUpAt: at})
		n++
	}
	return n, nil
}
