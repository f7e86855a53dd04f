package wishlist

import (
	"context"

	"wanderly/internal/experiences"

	"github.com/google/uuid"
)

type ExperienceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*experiences.Experience, error)
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]Item, error)
	Add(ctx context.Context, userID, experienceID uuid.UUID) ([]Item, error)
	Remove(ctx context.Context, userID, experienceID uuid.UUID) ([]Item, error)
}

type service struct {
	repo    Repository
	catalog ExperienceReader
}

func NewService(repo Repository, catalog ExperienceReader) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *service) Add(ctx context.Context, userID, experienceID uuid.UUID) ([]Item, error) {
	if _, err := s.catalog.Get(ctx, experienceID); err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, &Item{ID: uuid.New(), UserID: userID, ExperienceID: experienceID}); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, experienceID uuid.UUID) ([]Item, error) {
	if err := s.repo.Remove(ctx, userID, experienceID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
