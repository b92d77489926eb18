package sourcing

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]ProductSupplier, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) Link(ctx context.Context, link ProductSupplier) (ProductSupplier, error) {
	if link.ProductID <= 0 {
		return ProductSupplier{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if link.SupplierID <= 0 {
		return ProductSupplier{}, fmt.Errorf("%w: invalid supplier id", ErrValidation)
	}
	if link.LeadTimeDays < 1 {
		return ProductSupplier{}, fmt.Errorf("%w: lead time must be at least one day", ErrValidation)
	}
	return s.repo.Create(ctx, link)
}

func (s *Service) SetDefault(ctx context.Context, productID, supplierID int64) error {
	if productID <= 0 || supplierID <= 0 {
		return fmt.Errorf("%w: invalid product or supplier id", ErrValidation)
	}
	return s.repo.SetDefault(ctx, productID, supplierID)
}

// FindDefault resolves the supplier a replenishment order should go to:
// the link flagged as default when one exists, otherwise the most
// recently created link. ErrNotFound when the product has no suppliers.
func (s *Service) FindDefault(ctx context.Context, productID int64) (ProductSupplier, error) {
	links, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return ProductSupplier{}, err
	}
	if len(links) == 0 {
		return ProductSupplier{}, ErrNotFound
	}
	for _, link := range links {
		if link.IsDefault {
			return link, nil
		}
	}
	// ListByProduct orders newest first.
	return links[0], nil
}
