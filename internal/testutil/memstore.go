package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/store"
)

// MemoryStore satisfies store.WorkflowStore in memory. Objects are cloned
// on the way in and out.
type MemoryStore struct {
	mu        sync.Mutex
	objs      map[int64]*domain.WorkflowObject
	nextID    int64
	listeners store.Listeners

	// SaveErr, when set, is returned by Save before anything is stored.
	SaveErr error
	Saves   int
	Now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objs: make(map[int64]*domain.WorkflowObject), nextID: 1, Now: time.Now}
}

// Seed stores objs as-is, keeping their ids and timestamps, without notifying listeners.
func (m *MemoryStore) Seed(objs ...*domain.WorkflowObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range objs {
		m.objs[o.ID] = o.Clone()
		if o.ID >= m.nextID {
			m.nextID = o.ID + 1
		}
	}
}

func (m *MemoryStore) Subscribe(l store.Listener) {
	m.listeners.Subscribe(l)
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*domain.WorkflowObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return o.Clone(), nil
}

func (m *MemoryStore) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objs[id]
	return ok, nil
}

func (m *MemoryStore) Save(ctx context.Context, obj *domain.WorkflowObject) error {
	if err := domain.ValidateWorkflowObject(*obj); err != nil {
		return err
	}
	m.mu.Lock()
	if m.SaveErr != nil {
		m.mu.Unlock()
		return m.SaveErr
	}
	if obj.ID == 0 {
		obj.ID = m.nextID
		m.nextID++
	}
	now := m.Now().UTC()
	if obj.Created.IsZero() {
		obj.Created = now
	}
	obj.Modified = now
	m.objs[obj.ID] = obj.Clone()
	m.Saves++
	m.mu.Unlock()

	m.listeners.NotifyAfterSave(ctx, obj)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	o, ok := m.objs[id]
	m.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}

	m.listeners.NotifyBeforeDelete(ctx, o.Clone())

	m.mu.Lock()
	delete(m.objs, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) IDsByDataType(_ context.Context, dataTypes []string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, o := range m.objs {
		if slices.Contains(dataTypes, o.DataType) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

var _ store.WorkflowStore = (*MemoryStore)(nil)
