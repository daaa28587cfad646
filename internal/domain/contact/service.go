package contact

import (
	"context"
	"fmt"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
)

// CreateInput describes a new contact. AccountCode is required for transfer contacts.
type CreateInput struct {
	Kind        Kind
	Name        string
	TaxID       string
	AccountCode string
	Notes       string
}

// Service provides business logic for the contact agendas.
type Service struct {
	repo Repository
}

// NewService creates a new contact Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateInput carries the editable fields of a contact. The kind is fixed at
// creation; AccountCode is read only for transfer contacts.
type UpdateInput struct {
	Name        string
	TaxID       string
	AccountCode string
	Notes       string
}

func build(kind Kind, name, taxID, accountCode, notes string) (*Contact, error) {
	switch kind {
	case KindCheck:
		return NewCheckContact(name, taxID, notes)
	case KindTransfer:
		return NewTransferContact(name, taxID, accountCode, notes)
	}
	_, err := ParseKind(string(kind))
	return nil, err
}

// ensureUnique rejects c when another contact of its kind carries the same
// identifiers. Check contacts are unique by tax id, transfer contacts by tax
// id plus account code.
func (s *Service) ensureUnique(ctx context.Context, c *Contact) error {
	found, err := s.repo.Find(ctx, c.Kind, c.TaxID, c.AccountCode)
	switch {
	case err == nil && found.ID != c.ID:
		field, value := "taxId", c.TaxID.Formatted()
		if c.Kind == KindTransfer {
			field, value = "taxId+accountCode", c.TaxID.Formatted()+" / "+c.AccountCode.Formatted()
		}
		return apperror.NewDuplicate("contact", field, value)
	case err == nil, apperror.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("lookup contact: %w", err)
	}
}

// Create validates and stores a contact, rejecting duplicates.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Contact, error) {
	c, err := build(in.Kind, in.Name, in.TaxID, in.AccountCode, in.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

// Update replaces the editable fields of a contact. The new identifiers go
// through the same validation and uniqueness rules as Create.
func (s *Service) Update(ctx context.Context, id entity.ID, in UpdateInput) (*Contact, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := build(current.Kind, in.Name, in.TaxID, in.AccountCode, in.Notes)
	if err != nil {
		return nil, err
	}
	c.Base = current.Base
	c.Active = current.Active

	if err := s.ensureUnique(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

// Get retrieves a contact by ID.
func (s *Service) Get(ctx context.Context, id entity.ID) (*Contact, error) {
	return s.repo.Get(ctx, id)
}

// List returns contacts of kind (all when empty).
func (s *Service) List(ctx context.Context, kind Kind, includeInactive bool) ([]*Contact, error) {
	if kind != "" {
		if _, err := ParseKind(string(kind)); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, kind, includeInactive)
}

// Deactivate hides the contact from the agenda.
func (s *Service) Deactivate(ctx context.Context, id entity.ID) (*Contact, error) {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Activate restores a deactivated contact.
func (s *Service) Activate(ctx context.Context, id entity.ID) (*Contact, error) {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
