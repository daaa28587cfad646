package reference

import (
	"context"
	"fmt"
	"strings"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/pkg/logger"
)

// Service provides business logic for references.
type Service struct {
	repo  Repository
	usage UsageCounter
}

// NewService creates a new reference Service. usage guards Delete.
func NewService(repo Repository, usage UsageCounter) *Service {
	return &Service{repo: repo, usage: usage}
}

// Create registers a new active reference.
func (s *Service) Create(ctx context.Context, code, description string) (*Reference, error) {
	normalized, err := ValidateCode(code)
	if err != nil {
		return nil, err
	}

	r := &Reference{
		Base:        entity.NewBase(),
		Code:        normalized,
		Description: strings.TrimSpace(description),
		Active:      true,
	}
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create reference: %w", err)
	}

	logger.Info(ctx, "reference created", "code", r.Code)
	return r, nil
}

// NextCode suggests the next free code for prefix.
func (s *Service) NextCode(ctx context.Context, prefix string) (string, error) {
	p, err := ValidatePrefix(prefix)
	if err != nil {
		return "", err
	}
	last, err := s.repo.LastCode(ctx, p)
	if err != nil {
		return "", fmt.Errorf("last reference code: %w", err)
	}
	return NextCodeAfter(p, last)
}

// Get retrieves a reference by ID.
func (s *Service) Get(ctx context.Context, id entity.ID) (*Reference, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode retrieves a reference by code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Reference, error) {
	normalized, err := ValidateCode(code)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, normalized)
}

// List returns references ordered by code.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Reference, error) {
	return s.repo.List(ctx, includeInactive)
}

// Update replaces the description. The code never changes once issued.
func (s *Service) Update(ctx context.Context, id entity.ID, description string) (*Reference, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Description = strings.TrimSpace(description)
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update reference: %w", err)
	}
	logger.Info(ctx, "reference updated", "code", r.Code)
	return r, nil
}

// Activate makes the reference selectable for new batches.
func (s *Service) Activate(ctx context.Context, id entity.ID) (*Reference, error) {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Deactivate hides the reference from new batches; existing batches keep it.
func (s *Service) Deactivate(ctx context.Context, id entity.ID) (*Reference, error) {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a reference that no batch is filed under.
func (s *Service) Delete(ctx context.Context, id entity.ID) error {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.usage != nil {
		n, err := s.usage.CountByReference(ctx, id)
		if err != nil {
			return fmt.Errorf("count batches of reference %s: %w", r.Code, err)
		}
		if n > 0 {
			return apperror.NewInvalidState("reference", "in_use",
				"reference has payment batches and cannot be deleted").
				WithDetail("code", r.Code).
				WithDetail("batches", n)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "reference deleted", "code", r.Code)
	return nil
}
