package products

import (
	"fmt"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: product sku is required", ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.ReorderThreshold < 1 {
		return fmt.Errorf("%w: reorder threshold must be at least 1", ErrValidation)
	}
	return nil
}
