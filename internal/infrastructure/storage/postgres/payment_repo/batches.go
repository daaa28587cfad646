package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
	"paybatch/internal/domain/batch"
	"paybatch/internal/infrastructure/storage/postgres"
)

// BatchRepo implements batch.Repository over payment_batches and payment_batch_items.
type BatchRepo struct {
	baseRepo
	cols       []string
	updateCols []string
	itemCols   []string
}

var _ batch.Repository = (*BatchRepo)(nil)

// NewBatchRepo creates a payment batch repository.
func NewBatchRepo(txm *postgres.TxManager) *BatchRepo {
	cols := postgres.ExtractDBColumns[batch.Batch]()
	return &BatchRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     cols,
		// reference and sequence never change after creation
		updateCols: postgres.Without(cols, "id", "version", "created_at", "reference_id", "sequence_number"),
		itemCols:   postgres.ExtractDBColumns[batch.Item](),
	}
}

func (r *BatchRepo) Create(ctx context.Context, b *batch.Batch) error {
	err := r.insert(ctx, batchesTable, r.cols, b)
	if postgres.IsUniqueViolation(err, "payment_batches_sequence_key") {
		return apperror.NewDuplicate("payment batch", "sequenceNumber", b.Sequence).WithCause(err)
	}
	if err != nil {
		return err
	}
	for _, it := range b.Items {
		if err := r.AddItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *BatchRepo) Get(ctx context.Context, id entity.ID) (*batch.Batch, error) {
	return r.load(ctx, id, false)
}

// GetForUpdate locks the batch row with FOR UPDATE; it must run inside a transaction.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id entity.ID) (*batch.Batch, error) {
	return r.load(ctx, id, true)
}

func (r *BatchRepo) load(ctx context.Context, id entity.ID, forUpdate bool) (*batch.Batch, error) {
	q := r.builder().Select(r.cols...).From(batchesTable).Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	var b batch.Batch
	if err := r.get(ctx, &b, q, "payment batch", id.String()); err != nil {
		return nil, err
	}

	b.Items = []*batch.Item{}
	items := r.builder().Select(r.itemCols...).From(itemsTable).
		Where(squirrel.Eq{"batch_id": id}).
		OrderBy("line_no")
	if err := r.selectAll(ctx, &b.Items, items); err != nil {
		return nil, fmt.Errorf("load items of batch %s: %w", id, err)
	}
	return &b, nil
}

func (r *BatchRepo) List(ctx context.Context, filter batch.ListFilter) (domain.ListResult[*batch.Batch], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[*batch.Batch]{
		Items:  []*batch.Batch{},
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	q := r.builder().Select(r.cols...).From(batchesTable)
	if filter.ReferenceID != nil {
		q = q.Where(squirrel.Eq{"reference_id": *filter.ReferenceID})
	}
	if filter.State != "" {
		q = q.Where(squirrel.Eq{"state": filter.State})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("sequence_number DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))
	if err := r.selectAll(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list payment batches: %w", err)
	}
	return result, nil
}

func (r *BatchRepo) Update(ctx context.Context, b *batch.Batch) error {
	data := postgres.Pick(postgres.StructToMap(b), r.updateCols)
	data["updated_at"] = squirrel.Expr("now()")

	n, err := r.exec(ctx, r.builder().
		Update(batchesTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": b.ID, "version": b.Version}))
	if err != nil {
		return fmt.Errorf("update payment batch: %w", err)
	}
	if n == 0 {
		return apperror.NewConcurrentModification("payment batch", b.ID.String())
	}
	b.Touch()
	return nil
}

func (r *BatchRepo) AddItem(ctx context.Context, item *batch.Item) error {
	err := r.insert(ctx, itemsTable, r.itemCols, item)
	if postgres.IsUniqueViolation(err, "payment_batch_items_line_key") {
		return apperror.NewDuplicate("batch item", "lineNo", item.LineNo).WithCause(err)
	}
	return err
}

func (r *BatchRepo) RemoveItem(ctx context.Context, batchID, itemID entity.ID) error {
	n, err := r.exec(ctx, r.builder().
		Delete(itemsTable).
		Where(squirrel.Eq{"id": itemID, "batch_id": batchID}))
	if err != nil {
		return fmt.Errorf("remove batch item: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("batch item", itemID.String())
	}
	return nil
}

func (r *BatchRepo) GetItemForUpdate(ctx context.Context, batchID, itemID entity.ID) (*batch.Item, error) {
	q := r.builder().Select(r.itemCols...).From(itemsTable).
		Where(squirrel.Eq{"id": itemID, "batch_id": batchID}).
		Suffix("FOR UPDATE")

	var it batch.Item
	if err := r.get(ctx, &it, q, "batch item", itemID.String()); err != nil {
		return nil, err
	}
	return &it, nil
}

// SetItemCheck fills an empty slot; a slot that is already set is left alone
// and reported as INVALID_STATE.
func (r *BatchRepo) SetItemCheck(ctx context.Context, itemID entity.ID, number string, issuedCheckID entity.ID) error {
	n, err := r.exec(ctx, r.builder().
		Update(itemsTable).
		Set("account_or_check", number).
		Set("issued_check_id", issuedCheckID).
		Where(squirrel.Eq{"id": itemID, "account_or_check": ""}))
	if err != nil {
		return fmt.Errorf("set item check: %w", err)
	}
	if n == 0 {
		return apperror.NewInvalidState("batch item", "numbered", "check number already assigned or item missing").
			WithDetail("id", itemID.String())
	}
	return nil
}

func (r *BatchRepo) CountByReference(ctx context.Context, referenceID entity.ID) (int64, error) {
	q := r.builder().Select("id").From(batchesTable).Where(squirrel.Eq{"reference_id": referenceID})
	return r.count(ctx, q)
}

func (r *BatchRepo) CountByState(ctx context.Context) ([]batch.StateCount, error) {
	q := r.builder().
		Select(
			"b.state",
			"COUNT(*) AS count",
			"COALESCE(SUM(COALESCE(b.total, (SELECT SUM(i.amount) FROM payment_batch_items i WHERE i.batch_id = b.id))), 0) AS total",
		).
		From(batchesTable + " b").
		GroupBy("b.state")

	var rows []batch.StateCount
	if err := r.selectAll(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("count payment batches: %w", err)
	}
	return rows, nil
}
