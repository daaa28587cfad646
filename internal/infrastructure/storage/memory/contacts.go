package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/contact"
)

// ContactRepo implements contact.Repository.
type ContactRepo struct{ s *Store }

var _ contact.Repository = (*ContactRepo)(nil)

func cloneContact(c *contact.Contact) *contact.Contact {
	cp := *c
	return &cp
}

func (r *ContactRepo) Create(ctx context.Context, c *contact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contacts[c.ID]; ok {
		return apperror.NewDuplicate("contact", "id", c.ID.String())
	}
	r.s.contacts[c.ID] = cloneContact(c)
	return nil
}

func (r *ContactRepo) Get(ctx context.Context, id entity.ID) (*contact.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, apperror.NewNotFound("contact", id.String())
	}
	return cloneContact(c), nil
}

func (r *ContactRepo) Update(ctx context.Context, c *contact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.contacts[c.ID]
	if !ok {
		return apperror.NewNotFound("contact", c.ID.String())
	}
	if stored.Version != c.Version {
		return apperror.NewConcurrentModification("contact", c.ID.String())
	}
	c.Touch()
	r.s.contacts[c.ID] = cloneContact(c)
	return nil
}

func (r *ContactRepo) Find(ctx context.Context, kind contact.Kind, taxID checkdigit.TaxID, accountCode checkdigit.BankAccountCode) (*contact.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.contacts {
		if c.Kind != kind || c.TaxID != taxID {
			continue
		}
		if kind == contact.KindTransfer && c.AccountCode != accountCode {
			continue
		}
		return cloneContact(c), nil
	}
	return nil, apperror.NewNotFound("contact", taxID.String())
}

func (r *ContactRepo) List(ctx context.Context, kind contact.Kind, includeInactive bool) ([]*contact.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*contact.Contact{}
	for _, c := range r.s.contacts {
		if kind != "" && c.Kind != kind {
			continue
		}
		if !includeInactive && !c.Active {
			continue
		}
		out = append(out, cloneContact(c))
	}
	slices.SortFunc(out, func(a, b *contact.Contact) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return out, nil
}

func (r *ContactRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return apperror.NewNotFound("contact", id.String())
	}
	c.Active = active
	c.UpdatedAt = touchNow()
	return nil
}
