// Package service holds the people use cases shared by the HTTP handlers.
package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/people/internal/models"
	"github.com/mmynk/people/internal/storage"
)

// PeopleService lists and creates people.
type PeopleService struct {
	store storage.Store
}

// NewPeopleService creates a new PeopleService with the given storage backend.
func NewPeopleService(store storage.Store) *PeopleService {
	return &PeopleService{store: store}
}

// ListPeople returns every stored person.
func (s *PeopleService) ListPeople(ctx context.Context) ([]models.Person, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("ListPeople successful", "count", len(people))
	return people, nil
}

// CreatePerson stores a person named name, or models.DefaultPersonName when
// name is empty.
func (s *PeopleService) CreatePerson(ctx context.Context, name string) (*models.Person, error) {
	if name == "" {
		name = models.DefaultPersonName
	}

	person := &models.Person{Name: name}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, err
	}

	slog.Info("Person created", "person_id", person.ID, "name", person.Name)
	return person, nil
}

// Ping reports whether the store is reachable.
func (s *PeopleService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
