package memory

import (
	"cmp"
	"context"
	"slices"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain"
	"paybatch/internal/domain/batch"
)

// BatchRepo implements batch.Repository. Items live in their own table.
type BatchRepo struct{ s *Store }

var _ batch.Repository = (*BatchRepo)(nil)

func cloneHeader(b *batch.Batch) *batch.Batch {
	cp := *b
	cp.Items = nil
	if b.CachedTotal != nil {
		total := *b.CachedTotal
		cp.CachedTotal = &total
	}
	return &cp
}

func cloneItem(it *batch.Item) *batch.Item {
	cp := *it
	return &cp
}

func (r *BatchRepo) Create(ctx context.Context, b *batch.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.batches {
		if existing.Sequence == b.Sequence {
			return apperror.NewDuplicate("payment batch", "sequenceNumber", b.Sequence)
		}
	}
	r.s.batches[b.ID] = cloneHeader(b)
	for _, it := range b.Items {
		r.s.items[it.ID] = cloneItem(it)
	}
	return nil
}

// itemsOf returns copies of the batch items in line order. Caller holds the lock.
func (r *BatchRepo) itemsOf(batchID entity.ID) []*batch.Item {
	items := []*batch.Item{}
	for _, it := range r.s.items {
		if it.BatchID == batchID {
			items = append(items, cloneItem(it))
		}
	}
	slices.SortFunc(items, func(a, b *batch.Item) int { return cmp.Compare(a.LineNo, b.LineNo) })
	return items
}

func (r *BatchRepo) Get(ctx context.Context, id entity.ID) (*batch.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.batches[id]
	if !ok {
		return nil, apperror.NewNotFound("payment batch", id.String())
	}
	out := cloneHeader(b)
	out.Items = r.itemsOf(id)
	return out, nil
}

// GetForUpdate is Get; row locking is provided by the TxManager.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id entity.ID) (*batch.Batch, error) {
	return r.Get(ctx, id)
}

func (r *BatchRepo) List(ctx context.Context, filter batch.ListFilter) (domain.ListResult[*batch.Batch], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*batch.Batch
	for _, b := range r.s.batches {
		if filter.ReferenceID != nil && b.ReferenceID != *filter.ReferenceID {
			continue
		}
		if filter.State != "" && b.State != filter.State {
			continue
		}
		all = append(all, cloneHeader(b))
	}
	slices.SortFunc(all, func(a, b *batch.Batch) int { return cmp.Compare(b.Sequence, a.Sequence) })

	page := filter.Page.Normalize()
	return domain.ListResult[*batch.Batch]{
		Items:      domain.Apply(all, page),
		TotalCount: int64(len(all)),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}

func (r *BatchRepo) Update(ctx context.Context, b *batch.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.batches[b.ID]
	if !ok {
		return apperror.NewNotFound("payment batch", b.ID.String())
	}
	if stored.Version != b.Version {
		return apperror.NewConcurrentModification("payment batch", b.ID.String())
	}
	b.Touch()
	r.s.batches[b.ID] = cloneHeader(b)
	return nil
}

func (r *BatchRepo) AddItem(ctx context.Context, item *batch.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.batches[item.BatchID]; !ok {
		return apperror.NewNotFound("payment batch", item.BatchID.String())
	}
	for _, it := range r.s.items {
		if it.BatchID == item.BatchID && it.LineNo == item.LineNo {
			return apperror.NewDuplicate("batch item", "lineNo", item.LineNo)
		}
	}
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *BatchRepo) RemoveItem(ctx context.Context, batchID, itemID entity.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[itemID]
	if !ok || it.BatchID != batchID {
		return apperror.NewNotFound("batch item", itemID.String())
	}
	delete(r.s.items, itemID)
	return nil
}

func (r *BatchRepo) GetItemForUpdate(ctx context.Context, batchID, itemID entity.ID) (*batch.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[itemID]
	if !ok || it.BatchID != batchID {
		return nil, apperror.NewNotFound("batch item", itemID.String())
	}
	return cloneItem(it), nil
}

func (r *BatchRepo) SetItemCheck(ctx context.Context, itemID entity.ID, number string, issuedCheckID entity.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[itemID]
	if !ok {
		return apperror.NewNotFound("batch item", itemID.String())
	}
	if it.Slot != "" {
		return apperror.NewInvalidState("batch item", "numbered", "check number already assigned").
			WithDetail("id", itemID.String()).
			WithDetail("number", it.Slot)
	}
	it.Slot = number
	it.IssuedCheckID = &issuedCheckID
	return nil
}

func (r *BatchRepo) CountByReference(ctx context.Context, referenceID entity.ID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, b := range r.s.batches {
		if b.ReferenceID == referenceID {
			n++
		}
	}
	return n, nil
}

func (r *BatchRepo) CountByState(ctx context.Context) ([]batch.StateCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make(map[batch.State]*batch.StateCount)
	for _, b := range r.s.batches {
		row, ok := rows[b.State]
		if !ok {
			row = &batch.StateCount{State: b.State, Total: types.Amount{}}
			rows[b.State] = row
		}
		full := cloneHeader(b)
		full.Items = r.itemsOf(b.ID)
		row.Count++
		row.Total = row.Total.Add(full.Total())
	}

	out := make([]batch.StateCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
