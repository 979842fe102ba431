package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/domain"
)

var tracer = otel.Tracer("registration")

type RegistrationUsecase struct {
	store    RecordStore
	ledger   Ledger
	receipts ReceiptRepository
	events   EventPublisher
}

func NewRegistrationUsecase(
	store RecordStore,
	ledger Ledger,
	receipts ReceiptRepository,
	events EventPublisher,
) *RegistrationUsecase {
	return &RegistrationUsecase{
		store:    store,
		ledger:   ledger,
		receipts: receipts,
		events:   events,
	}
}

// Register persists the record, hashes it, anchors the hash and returns the
// combined receipt. The steps are strictly sequential; if anchoring fails the
// record stays persisted and is reported as pending until reconciled.
func (uc *RegistrationUsecase) Register(ctx context.Context, fields map[string]string) (*efir.RegistrationResult, error) {
	ctx, span := tracer.Start(ctx, "Registration.Usecase.Register")
	defer span.End()

	firID := fields[efir.FieldFIRID]
	if firID == "" {
		err := errors.New("missing firId")
		span.RecordError(err)
		return nil, &domain.RegistrationError{Cause: err}
	}

	existing, err := uc.receipts.Get(ctx, firID)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.RegistrationError{Cause: err}
	}
	if existing != nil {
		span.RecordError(domain.ErrDuplicateRecord)
		return nil, &domain.RegistrationError{Cause: domain.ErrDuplicateRecord}
	}

	record, err := uc.store.Put(ctx, firID, fields)
	if err != nil {
		span.RecordError(errors.Wrap(err, "persist record"))
		return nil, &domain.RegistrationError{Cause: err}
	}

	digest, err := efir.Digest(fields)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.RegistrationError{Cause: err}
	}

	receipt, err := uc.anchor(ctx, firID, digest, fields)
	if err != nil {
		span.RecordError(errors.Wrap(err, "anchor digest"))
		return nil, &domain.RegistrationError{Cause: err}
	}

	uc.publish(ctx, efir.Event{
		Type:      efir.EventFIRRegistered,
		FIRID:     firID,
		TxHash:    receipt.TxHash,
		Timestamp: time.Now().UTC(),
	})

	return &efir.RegistrationResult{
		Record:  record,
		Receipt: *receipt,
		Digest:  digest,
	}, nil
}

// List returns every stored record, newest first, decorated with its
// anchoring state.
func (uc *RegistrationUsecase) List(ctx context.Context) ([]efir.StoredRecord, error) {
	ctx, span := tracer.Start(ctx, "Registration.Usecase.List")
	defer span.End()

	records, err := uc.store.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	anchored, err := uc.receipts.AnchoredIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := make([]efir.StoredRecord, 0, len(records))
	for _, record := range records {
		status := efir.AnchorStatusPendingAnchor
		if anchored[record.FIRID] {
			status = efir.AnchorStatusAnchored
		}
		out = append(out, efir.StoredRecord{Record: record, AnchorStatus: status})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// ReconcilePending re-anchors stored records that lack a receipt. Returns how
// many records were anchored in this pass; per-record failures are logged and
// skipped so one dead record cannot wedge the loop.
func (uc *RegistrationUsecase) ReconcilePending(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Registration.Usecase.ReconcilePending")
	defer span.End()

	records, err := uc.store.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	anchored, err := uc.receipts.AnchoredIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	count := 0
	for _, record := range records {
		if anchored[record.FIRID] {
			continue
		}

		digest, err := efir.Digest(record.Fields)
		if err != nil {
			slog.WarnContext(ctx, "reconcile: digest failed",
				slog.String("firId", record.FIRID),
				slog.String("error", err.Error()),
			)
			continue
		}

		receipt, err := uc.anchor(ctx, record.FIRID, digest, record.Fields)
		if err != nil {
			slog.WarnContext(ctx, "reconcile: anchor failed",
				slog.String("firId", record.FIRID),
				slog.String("error", err.Error()),
			)
			continue
		}

		uc.publish(ctx, efir.Event{
			Type:      efir.EventFIRRegistered,
			FIRID:     record.FIRID,
			TxHash:    receipt.TxHash,
			Timestamp: time.Now().UTC(),
		})
		count++
	}

	return count, nil
}

func (uc *RegistrationUsecase) anchor(ctx context.Context, firID, digest string, fields map[string]string) (*efir.AnchorReceipt, error) {
	receipt, err := uc.ledger.Anchor(ctx, efir.AnchorRequest{
		FIRID:        firID,
		Digest:       digest,
		Complainant:  fields["complainantName"],
		Officer:      fields["officerName"],
		IncidentType: fields["incidentType"],
	})
	if err != nil {
		return nil, err
	}

	// The transaction is already on chain; a failed receipt write only means
	// the reconciler would re-anchor, so it is logged rather than surfaced.
	if err := uc.receipts.Save(ctx, *receipt); err != nil {
		slog.WarnContext(ctx, "receipt save failed",
			slog.String("firId", firID),
			slog.String("txHash", receipt.TxHash),
			slog.String("error", err.Error()),
		)
	}

	return receipt, nil
}

func (uc *RegistrationUsecase) publish(ctx context.Context, event efir.Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "event publish failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}
