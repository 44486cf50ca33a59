// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/mmynk/people/internal/models"
	"github.com/mmynk/people/internal/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps people in a slice. Setting Err makes every call fail with it.
type MemoryStore struct {
	mu     sync.Mutex
	people []models.Person
	nextID int64

	Err error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// FailWith makes subsequent calls return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MemoryStore) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MemoryStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Person{}, m.people...), nil
}

func (m *MemoryStore) CreatePerson(ctx context.Context, person *models.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	person.ID = m.nextID
	m.nextID++
	m.people = append(m.people, *person)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *MemoryStore) Close() error {
	return nil
}
