package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/numerator"
	"paybatch/internal/core/tx"
	"paybatch/internal/domain"
	"paybatch/internal/domain/ledger"
	"paybatch/pkg/logger"
)

// CreateInput describes a new batch.
type CreateInput struct {
	ReferenceID  entity.ID
	Branch       string
	DebitAccount string
}

// ServiceConfig wires the batch service. Exporter is optional.
type ServiceConfig struct {
	Repo       Repository
	References ReferenceReader
	Allocator  NumberAllocator
	Ledger     CheckRecorder
	Sequence   numerator.Sequence
	TxManager  tx.Manager
	Exporter   Exporter
}

// Service runs the batch lifecycle: draft editing, finalize and download.
type Service struct {
	repo       Repository
	references ReferenceReader
	allocator  NumberAllocator
	ledger     CheckRecorder
	sequence   numerator.Sequence
	txManager  tx.Manager
	exporter   Exporter
	hooks      *domain.HookRegistry[*Batch]
	now        func() time.Time
}

// NewService creates a new batch Service.
func NewService(cfg ServiceConfig) *Service {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Passthrough
	}
	return &Service{
		repo:       cfg.Repo,
		references: cfg.References,
		allocator:  cfg.Allocator,
		ledger:     cfg.Ledger,
		sequence:   cfg.Sequence,
		txManager:  txm,
		exporter:   cfg.Exporter,
		hooks:      domain.NewHookRegistry[*Batch](),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Hooks returns the hook registry for external registration.
// After-hooks run outside transactions; their errors are logged, not returned.
func (s *Service) Hooks() *domain.HookRegistry[*Batch] {
	return s.hooks
}

func (s *Service) runAfter(ctx context.Context, event domain.HookEvent, b *Batch) {
	if err := s.hooks.Run(ctx, event, b); err != nil {
		logger.Warn(ctx, "batch hook failed", "event", event, "batch_id", b.ID, "error", err)
	}
}

// Create opens a draft batch under an active reference and assigns it the
// next number of the shared batch counter.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Batch, error) {
	b := &Batch{
		Base:         entity.NewBase(),
		ReferenceID:  in.ReferenceID,
		Branch:       strings.TrimSpace(in.Branch),
		DebitAccount: strings.TrimSpace(in.DebitAccount),
		State:        StateDraft,
		Items:        []*Item{},
	}
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref, err := s.references.Get(ctx, in.ReferenceID)
		if err != nil {
			return err
		}
		if !ref.Active {
			return apperror.NewInvalidState("reference", "inactive",
				"batches can only be created under an active reference").
				WithDetail("code", ref.Code)
		}

		seq, err := s.sequence.Next(ctx, numerator.KeyPaymentBatch)
		if err != nil {
			return fmt.Errorf("next batch number: %w", err)
		}
		b.Sequence = seq

		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create payment batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment batch created", "batch_id", b.ID, "sequence", b.Sequence)
	s.runAfter(ctx, domain.AfterCreate, b)
	return b, nil
}

// AddItem appends a payment line to a draft batch.
func (s *Service) AddItem(ctx context.Context, batchID entity.ID, in ItemInput) (*Item, error) {
	var item *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if err := b.CanModify(); err != nil {
			return err
		}

		item, err = buildItem(b.ID, b.NextLineNo(), in)
		if err != nil {
			return err
		}
		if err := s.repo.AddItem(ctx, item); err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		// Version bump makes a concurrent finalize of the old item set fail.
		return s.repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes a payment line from a draft batch. Check items that
// already got a number from an interrupted finalize cannot be removed.
func (s *Service) RemoveItem(ctx context.Context, batchID, itemID entity.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if err := b.CanModify(); err != nil {
			return err
		}
		for _, it := range b.Items {
			if it.ID == itemID && it.IssuedCheckID != nil {
				// The number is already in the ledger; dropping the line would lose it.
				return apperror.NewInvalidState("payment batch item", "numbered",
					"items holding an issued check cannot be removed").
					WithDetail("line_no", it.LineNo).
					WithDetail("check_number", it.Slot)
			}
		}
		if err := s.repo.RemoveItem(ctx, batchID, itemID); err != nil {
			return err
		}
		return s.repo.Update(ctx, b)
	})
}

// Finalize allocates check numbers and freezes the batch.
//
// Items are processed in line order. For every check item without a number,
// allocation, ledger record and slot write commit together. When an item
// fails (for example RANGE_EXHAUSTED) finalize stops: items numbered earlier
// in the call keep their numbers and the batch stays a draft. A later
// Finalize skips already numbered items, so no item is ever numbered twice.
func (s *Service) Finalize(ctx context.Context, batchID entity.ID) (*Batch, error) {
	b, err := s.repo.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b.State != StateDraft {
		return nil, apperror.NewInvalidState("payment batch", string(b.State),
			"only draft batches can be finalized").
			WithDetail("id", b.ID.String())
	}
	if len(b.Items) == 0 {
		return nil, apperror.NewValidation("batch has no items").
			WithDetail("id", b.ID.String())
	}

	allocated := 0
	for _, it := range b.Items {
		if !it.NeedsNumber() {
			continue
		}
		n, err := s.numberItem(ctx, b, it)
		if err != nil {
			logger.Warn(ctx, "batch finalize aborted",
				"batch_id", b.ID,
				"line_no", it.LineNo,
				"allocated", allocated,
				"error", err)
			return nil, err
		}
		if n > 0 {
			allocated++
		}
	}

	var final *Batch
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		fresh, err := s.repo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if fresh.State != StateDraft {
			return apperror.NewInvalidState("payment batch", string(fresh.State),
				"batch was finalized concurrently").
				WithDetail("id", fresh.ID.String())
		}
		if fresh.Version != b.Version {
			return apperror.NewConcurrentModification("payment batch", batchID.String())
		}
		for _, it := range fresh.Items {
			if it.NeedsNumber() {
				return apperror.NewConcurrentModification("payment batch", batchID.String()).
					WithDetail("line_no", it.LineNo)
			}
		}

		fresh.markFinal(s.now())

		// The workbook is stored before the state change so a failed export
		// leaves the batch a draft on stores without rollback too.
		if s.exporter != nil {
			ref, err := s.references.Get(ctx, fresh.ReferenceID)
			if err != nil {
				return err
			}
			if _, err := s.exporter.Export(ctx, fresh, ref); err != nil {
				return fmt.Errorf("export batch %d: %w", fresh.Sequence, err)
			}
		}

		if err := s.repo.Update(ctx, fresh); err != nil {
			return err
		}
		final = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment batch finalized",
		"batch_id", final.ID,
		"sequence", final.Sequence,
		"items", len(final.Items),
		"checks_allocated", allocated,
		"total", final.Total().String())
	s.runAfter(ctx, domain.AfterFinalize, final)
	return final, nil
}

// numberItem allocates and records a check for one item in its own transaction.
// Returns 0 when a concurrent finalize already numbered the item.
func (s *Service) numberItem(ctx context.Context, b *Batch, it *Item) (int64, error) {
	category, _ := it.Mode.CheckCategory()

	var number int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetItemForUpdate(ctx, b.ID, it.ID)
		if err != nil {
			return err
		}
		if !current.NeedsNumber() {
			it.Slot, it.IssuedCheckID = current.Slot, current.IssuedCheckID
			return nil
		}

		n, err := s.allocator.Next(ctx, category)
		if err != nil {
			return err
		}

		batchID := b.ID
		check, err := s.ledger.Record(ctx, ledger.RecordInput{
			Number:      n,
			Category:    category,
			BatchID:     &batchID,
			Beneficiary: it.Beneficiary,
			Amount:      it.Amount,
			IssueDate:   derefOr(it.IssueDate, s.now()),
			PaymentDate: it.DeferredDate,
		})
		if err != nil {
			return err
		}

		slot := strconv.FormatInt(n, 10)
		if err := s.repo.SetItemCheck(ctx, it.ID, slot, check.ID); err != nil {
			return fmt.Errorf("write check %d into line %d: %w", n, it.LineNo, err)
		}
		it.Slot, it.IssuedCheckID = slot, &check.ID
		number = n
		return nil
	})
	return number, err
}

// MarkDownloaded records that the workbook has been handed to the bank.
func (s *Service) MarkDownloaded(ctx context.Context, batchID entity.ID) (*Batch, error) {
	var b *Batch
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if err := b.markDownloaded(s.now()); err != nil {
			return err
		}
		return s.repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	s.runAfter(ctx, domain.AfterDownload, b)
	return b, nil
}

// Download returns the archived workbook. The first download of a final batch
// marks it downloaded.
func (s *Service) Download(ctx context.Context, batchID entity.ID) (*Artifact, error) {
	if s.exporter == nil {
		return nil, apperror.NewNotFound("batch workbook", batchID.String()).
			WithDetail("reason", "export disabled")
	}

	b, err := s.repo.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b.State == StateDraft {
		return nil, apperror.NewInvalidState("payment batch", string(b.State),
			"draft batches have no workbook; finalize first").
			WithDetail("id", b.ID.String())
	}

	artifact, err := s.exporter.Fetch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if b.State == StateFinal {
		if _, err := s.MarkDownloaded(ctx, batchID); err != nil && !apperror.IsCode(err, apperror.CodeInvalidState) {
			return nil, err
		}
	}
	return artifact, nil
}

// Get retrieves a batch with its items.
func (s *Service) Get(ctx context.Context, id entity.ID) (*Batch, error) {
	return s.repo.Get(ctx, id)
}

// List returns batch headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Batch], error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// Stats tallies batches per state. Every state is present.
func (s *Service) Stats(ctx context.Context) ([]StateCount, error) {
	rows, err := s.repo.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	byState := make(map[State]StateCount, len(rows))
	for _, r := range rows {
		byState[r.State] = r
	}
	out := make([]StateCount, 0, len(States))
	for _, st := range States {
		row := byState[st]
		row.State = st
		out = append(out, row)
	}
	return out, nil
}

func derefOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
