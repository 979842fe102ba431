package usecase

import (
	"context"

	"github.com/suraksha/efir-anchor"
)

// RecordStore persists plaintext records in the document store.
type RecordStore interface {
	Put(ctx context.Context, id string, fields map[string]string) (efir.Record, error)
	ListAll(ctx context.Context) ([]efir.Record, error)
}

// Ledger anchors a digest on the chain and returns confirmation details.
type Ledger interface {
	Anchor(ctx context.Context, req efir.AnchorRequest) (*efir.AnchorReceipt, error)
}

// ReceiptRepository tracks which records already hold an anchor receipt.
type ReceiptRepository interface {
	Save(ctx context.Context, receipt efir.AnchorReceipt) error
	Get(ctx context.Context, firID string) (*efir.AnchorReceipt, error)
	AnchoredIDs(ctx context.Context) (map[string]bool, error)
}

// EventPublisher fans registration and emergency events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event efir.Event) error
}
