package warehouses

import (
	"context"
	"fmt"

	"github.com/stockflow-erp/stockflow/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Warehouse, int, error) {
	return s.repo.List(ctx, filters)
}

// ListAll returns every warehouse for allocation decisions.
func (s *Service) ListAll(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, fmt.Errorf("%w: invalid warehouse id", ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if err := s.validate(warehouse); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Create(ctx, warehouse)
}

func (s *Service) Update(ctx context.Context, id int64, warehouse Warehouse) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid warehouse id", ErrValidation)
	}
	if err := s.validate(warehouse); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, warehouse)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid warehouse id", ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// UpdateQuantityInStock overwrites the cached aggregate for a warehouse.
func (s *Service) UpdateQuantityInStock(ctx context.Context, id int64, quantity int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid warehouse id", ErrValidation)
	}
	if quantity < 0 {
		quantity = 0
	}
	return s.repo.UpdateQuantityInStock(ctx, id, quantity)
}
