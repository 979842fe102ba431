package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/infrastructure/database/models"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Save(ctx context.Context, receipt efir.AnchorReceipt) error {
	row := models.AnchorReceipt{
		FIRID:       receipt.FIRID,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		Timestamp:   receipt.Timestamp,
		Signer:      receipt.Signer,
		Digest:      receipt.Digest,
	}

	// Receipts are immutable; a duplicate anchor of the same id keeps the
	// first receipt on record.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&row).Error
}

func (r *ReceiptRepository) Get(ctx context.Context, firID string) (*efir.AnchorReceipt, error) {
	var row models.AnchorReceipt
	err := r.db.WithContext(ctx).Where("fir_id = ?", firID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &efir.AnchorReceipt{
		FIRID:       row.FIRID,
		TxHash:      row.TxHash,
		BlockNumber: row.BlockNumber,
		Timestamp:   row.Timestamp,
		Signer:      row.Signer,
		Digest:      row.Digest,
	}, nil
}

func (r *ReceiptRepository) AnchoredIDs(ctx context.Context) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.AnchorReceipt{}).Pluck("fir_id", &ids).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
