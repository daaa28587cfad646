package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/contact"
	"paybatch/internal/infrastructure/storage/postgres"
)

// ContactRepo implements contact.Repository.
type ContactRepo struct {
	baseRepo
	cols []string
}

var _ contact.Repository = (*ContactRepo)(nil)

// NewContactRepo creates a contact repository.
func NewContactRepo(txm *postgres.TxManager) *ContactRepo {
	return &ContactRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     postgres.ExtractDBColumns[contact.Contact](),
	}
}

func (r *ContactRepo) Create(ctx context.Context, c *contact.Contact) error {
	err := r.insert(ctx, contactsTable, r.cols, c)
	if postgres.IsUniqueViolation(err, "") {
		return apperror.NewDuplicate("contact", "taxId", c.TaxID.String()).WithCause(err)
	}
	return err
}

func (r *ContactRepo) Get(ctx context.Context, id entity.ID) (*contact.Contact, error) {
	var c contact.Contact
	q := r.builder().Select(r.cols...).From(contactsTable).Where(squirrel.Eq{"id": id})
	if err := r.get(ctx, &c, q, "contact", id.String()); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Update(ctx context.Context, c *contact.Contact) error {
	n, err := r.exec(ctx, r.builder().
		Update(contactsTable).
		Set("name", c.Name).
		Set("tax_id", c.TaxID).
		Set("account_code", c.AccountCode).
		Set("notes", c.Notes).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID, "version": c.Version}))
	if postgres.IsUniqueViolation(err, "") {
		return apperror.NewDuplicate("contact", "taxId", c.TaxID.String()).WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n == 0 {
		return apperror.NewConcurrentModification("contact", c.ID.String())
	}
	c.Touch()
	return nil
}

func (r *ContactRepo) Find(ctx context.Context, kind contact.Kind, taxID checkdigit.TaxID, accountCode checkdigit.BankAccountCode) (*contact.Contact, error) {
	q := r.builder().Select(r.cols...).From(contactsTable).
		Where(squirrel.Eq{"kind": kind, "tax_id": taxID.String()}).
		Limit(1)
	if kind == contact.KindTransfer {
		q = q.Where(squirrel.Eq{"account_code": accountCode.String()})
	}

	var c contact.Contact
	if err := r.get(ctx, &c, q, "contact", taxID.String()); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) List(ctx context.Context, kind contact.Kind, includeInactive bool) ([]*contact.Contact, error) {
	q := r.builder().Select(r.cols...).From(contactsTable).OrderBy("lower(name)", "id")
	if kind != "" {
		q = q.Where(squirrel.Eq{"kind": kind})
	}
	if !includeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}

	out := []*contact.Contact{}
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return out, nil
}

func (r *ContactRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	return r.setActive(ctx, contactsTable, "contact", id, active)
}
