package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/domain"
)

type mockStore struct {
	records map[string]efir.Record
	putErr  error
	listErr error
}

func newMockStore() *mockStore {
	return &mockStore{records: map[string]efir.Record{}}
}

func (m *mockStore) Put(ctx context.Context, id string, fields map[string]string) (efir.Record, error) {
	if m.putErr != nil {
		return efir.Record{}, m.putErr
	}
	record := efir.Record{
		FIRID:     id,
		Fields:    fields,
		CreatedAt: time.Now().UTC(),
		Status:    efir.StatusRegistered,
	}
	m.records[id] = record
	return record, nil
}

func (m *mockStore) ListAll(ctx context.Context) ([]efir.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]efir.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

type mockLedger struct {
	calls     []efir.AnchorRequest
	anchorErr error
}

func (m *mockLedger) Anchor(ctx context.Context, req efir.AnchorRequest) (*efir.AnchorReceipt, error) {
	if m.anchorErr != nil {
		return nil, m.anchorErr
	}
	m.calls = append(m.calls, req)
	return &efir.AnchorReceipt{
		FIRID:       req.FIRID,
		TxHash:      "0xabc123",
		BlockNumber: 7,
		Timestamp:   time.Now().UTC(),
		Signer:      "0xsigner",
		Digest:      req.Digest,
	}, nil
}

type mockReceipts struct {
	saved map[string]efir.AnchorReceipt
}

func newMockReceipts() *mockReceipts {
	return &mockReceipts{saved: map[string]efir.AnchorReceipt{}}
}

func (m *mockReceipts) Save(ctx context.Context, receipt efir.AnchorReceipt) error {
	m.saved[receipt.FIRID] = receipt
	return nil
}

func (m *mockReceipts) Get(ctx context.Context, firID string) (*efir.AnchorReceipt, error) {
	if r, ok := m.saved[firID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockReceipts) AnchoredIDs(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(m.saved))
	for id := range m.saved {
		out[id] = true
	}
	return out, nil
}

type mockEvents struct {
	published []efir.Event
}

func (m *mockEvents) Publish(ctx context.Context, event efir.Event) error {
	m.published = append(m.published, event)
	return nil
}

func sampleFIR() map[string]string {
	return map[string]string{
		"firId":           "FIR-1",
		"complainantName": "Asha",
		"incidentType":    "Theft",
	}
}

func TestRegisterSuccess(t *testing.T) {
	store := newMockStore()
	ledger := &mockLedger{}
	receipts := newMockReceipts()
	events := &mockEvents{}
	uc := NewRegistrationUsecase(store, ledger, receipts, events)

	result, err := uc.Register(context.Background(), sampleFIR())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	wantDigest, _ := efir.Digest(sampleFIR())
	if result.Digest != wantDigest {
		t.Fatalf("digest mismatch: got %s want %s", result.Digest, wantDigest)
	}
	if result.Receipt.TxHash == "" {
		t.Fatalf("expected a transaction hash")
	}
	if result.Receipt.BlockNumber == 0 {
		t.Fatalf("expected a block number")
	}
	if result.Record.Status != efir.StatusRegistered {
		t.Fatalf("expected status %s got %s", efir.StatusRegistered, result.Record.Status)
	}
	if len(ledger.calls) != 1 || ledger.calls[0].Digest != wantDigest {
		t.Fatalf("ledger was not called with the computed digest")
	}
	if _, ok := receipts.saved["FIR-1"]; !ok {
		t.Fatalf("receipt was not persisted")
	}
	if len(events.published) != 1 || events.published[0].Type != efir.EventFIRRegistered {
		t.Fatalf("registration event was not published")
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	store := newMockStore()
	uc := NewRegistrationUsecase(store, &mockLedger{}, newMockReceipts(), nil)

	submitted := sampleFIR()
	if _, err := uc.Register(context.Background(), submitted); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	listed, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(listed))
	}
	got := listed[0]
	if got.FIRID != "FIR-1" {
		t.Fatalf("id mismatch: %s", got.FIRID)
	}
	for k, v := range submitted {
		if got.Fields[k] != v {
			t.Fatalf("field %s mismatch: got %q want %q", k, got.Fields[k], v)
		}
	}
	if got.AnchorStatus != efir.AnchorStatusAnchored {
		t.Fatalf("expected anchored status, got %s", got.AnchorStatus)
	}
}

func TestRegisterStoreFailureAbortsBeforeAnchor(t *testing.T) {
	store := newMockStore()
	store.putErr = &domain.StoreError{Op: "put", Err: errors.New("connection refused")}
	ledger := &mockLedger{}
	uc := NewRegistrationUsecase(store, ledger, newMockReceipts(), nil)

	_, err := uc.Register(context.Background(), sampleFIR())
	if err == nil {
		t.Fatalf("expected failure")
	}

	var regErr *domain.RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected RegistrationError, got %T", err)
	}
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("cause should be a StoreError, got %v", err)
	}
	if len(ledger.calls) != 0 {
		t.Fatalf("ledger must not be called when persistence fails")
	}
}

func TestRegisterAnchorFailureLeavesRecordPersisted(t *testing.T) {
	store := newMockStore()
	ledger := &mockLedger{anchorErr: &domain.AnchorError{FIRID: "FIR-1", Err: errors.New("node down")}}
	uc := NewRegistrationUsecase(store, ledger, newMockReceipts(), nil)

	_, err := uc.Register(context.Background(), sampleFIR())
	if err == nil {
		t.Fatalf("expected failure")
	}
	var anchorErr *domain.AnchorError
	if !errors.As(err, &anchorErr) {
		t.Fatalf("cause should be an AnchorError, got %v", err)
	}

	// The record must survive the anchoring failure.
	listed, listErr := uc.List(context.Background())
	if listErr != nil {
		t.Fatalf("list failed: %v", listErr)
	}
	if len(listed) != 1 {
		t.Fatalf("record lost after anchor failure")
	}
	if listed[0].AnchorStatus != efir.AnchorStatusPendingAnchor {
		t.Fatalf("expected pending status, got %s", listed[0].AnchorStatus)
	}
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	store := newMockStore()
	uc := NewRegistrationUsecase(store, &mockLedger{}, newMockReceipts(), nil)

	if _, err := uc.Register(context.Background(), sampleFIR()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := uc.Register(context.Background(), sampleFIR())
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestRegisterMissingID(t *testing.T) {
	uc := NewRegistrationUsecase(newMockStore(), &mockLedger{}, newMockReceipts(), nil)
	if _, err := uc.Register(context.Background(), map[string]string{"a": "1"}); err == nil {
		t.Fatalf("expected rejection of record without firId")
	}
}

func TestReconcilePendingAnchorsMissingReceipts(t *testing.T) {
	store := newMockStore()
	failing := &mockLedger{anchorErr: &domain.AnchorError{FIRID: "FIR-1", Err: errors.New("node down")}}
	receipts := newMockReceipts()
	uc := NewRegistrationUsecase(store, failing, receipts, nil)

	_, _ = uc.Register(context.Background(), sampleFIR())

	// Node comes back; reconciliation should anchor the stranded record.
	recovered := &mockLedger{}
	uc = NewRegistrationUsecase(store, recovered, receipts, nil)

	count, err := uc.ReconcilePending(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reconciled record, got %d", count)
	}
	if _, ok := receipts.saved["FIR-1"]; !ok {
		t.Fatalf("reconciled receipt not saved")
	}

	// A second pass has nothing to do.
	count, err = uc.ReconcilePending(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("expected idle pass, got count=%d err=%v", count, err)
	}
}
