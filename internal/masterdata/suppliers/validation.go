package suppliers

import (
	"fmt"
	"strings"
)

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", ErrValidation)
	}
	if len(sup.Name) > 255 {
		return fmt.Errorf("%w: supplier name must be at most 255 characters", ErrValidation)
	}
	if strings.TrimSpace(sup.ContactInformation) == "" {
		return fmt.Errorf("%w: contact information is required", ErrValidation)
	}
	return nil
}
