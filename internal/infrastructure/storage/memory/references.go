package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/reference"
)

// ReferenceRepo implements reference.Repository.
type ReferenceRepo struct{ s *Store }

var _ reference.Repository = (*ReferenceRepo)(nil)

func cloneReference(r *reference.Reference) *reference.Reference {
	cp := *r
	return &cp
}

func (r *ReferenceRepo) Create(ctx context.Context, ref *reference.Reference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.references {
		if existing.Code == ref.Code {
			return apperror.NewDuplicate("reference", "code", ref.Code)
		}
	}
	r.s.references[ref.ID] = cloneReference(ref)
	return nil
}

func (r *ReferenceRepo) Get(ctx context.Context, id entity.ID) (*reference.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ref, ok := r.s.references[id]
	if !ok {
		return nil, apperror.NewNotFound("reference", id.String())
	}
	return cloneReference(ref), nil
}

func (r *ReferenceRepo) GetByCode(ctx context.Context, code string) (*reference.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, ref := range r.s.references {
		if ref.Code == code {
			return cloneReference(ref), nil
		}
	}
	return nil, apperror.NewNotFound("reference", code)
}

func (r *ReferenceRepo) Update(ctx context.Context, ref *reference.Reference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.references[ref.ID]
	if !ok {
		return apperror.NewNotFound("reference", ref.ID.String())
	}
	if stored.Version != ref.Version {
		return apperror.NewConcurrentModification("reference", ref.ID.String())
	}
	ref.Touch()
	stored.Description = ref.Description
	stored.Version = ref.Version
	stored.UpdatedAt = ref.UpdatedAt
	return nil
}

func (r *ReferenceRepo) List(ctx context.Context, includeInactive bool) ([]*reference.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*reference.Reference{}
	for _, ref := range r.s.references {
		if includeInactive || ref.Active {
			out = append(out, cloneReference(ref))
		}
	}
	slices.SortFunc(out, func(a, b *reference.Reference) int { return cmp.Compare(a.Code, b.Code) })
	return out, nil
}

func (r *ReferenceRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.references[id]
	if !ok {
		return apperror.NewNotFound("reference", id.String())
	}
	ref.Active = active
	ref.UpdatedAt = touchNow()
	return nil
}

func (r *ReferenceRepo) Delete(ctx context.Context, id entity.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.references[id]; !ok {
		return apperror.NewNotFound("reference", id.String())
	}
	delete(r.s.references, id)
	return nil
}

func (r *ReferenceRepo) LastCode(ctx context.Context, prefix string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	last := ""
	for _, ref := range r.s.references {
		if strings.HasPrefix(ref.Code, prefix) && ref.Code > last {
			last = ref.Code
		}
	}
	return last, nil
}
