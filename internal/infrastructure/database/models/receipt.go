package models

import (
	"time"
)

// AnchorReceipt stores the confirmation of a ledger transaction, one row per
// anchored record. Rows are written once and never updated.
type AnchorReceipt struct {
	FIRID       string    `json:"firId" gorm:"primaryKey;type:text"`
	TxHash      string    `json:"transactionHash" gorm:"type:text;not null"`
	BlockNumber uint64    `json:"blockNumber" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"type:timestamp with time zone;not null"`
	Signer      string    `json:"signer" gorm:"type:text"`
	Digest      string    `json:"dataHash" gorm:"type:text;not null"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
