package warehouses

import (
	"fmt"
	"strings"
)

func (s *Service) validate(wh Warehouse) error {
	if strings.TrimSpace(wh.Name) == "" {
		return fmt.Errorf("%w: warehouse name is required", ErrValidation)
	}
	if wh.Capacity < 1 {
		return fmt.Errorf("%w: warehouse capacity must be positive", ErrValidation)
	}
	return nil
}
