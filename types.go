package efir

import (
	"time"
)

const (
	// StatusRegistered is set by the document store on every persisted record.
	StatusRegistered = "REGISTERED"

	// AnchorStatusAnchored and AnchorStatusPendingAnchor describe whether a
	// ledger receipt exists for a stored record. Computed at read time, never
	// written into the document itself.
	AnchorStatusAnchored      = "ANCHORED"
	AnchorStatusPendingAnchor = "PENDING_ANCHOR"
)

// FieldFIRID is the caller-supplied unique identifier field of a record.
const FieldFIRID = "firId"

// Record is an incident report as submitted by a citizen: a flat bag of
// string fields keyed by field name. Once its digest has been anchored the
// field values must never change.
type Record struct {
	FIRID     string            `json:"firId"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"createdAt"`
	Status    string            `json:"status"`
}

// StoredRecord is a Record as it comes back from the document store,
// decorated with its anchoring state.
type StoredRecord struct {
	Record
	AnchorStatus string `json:"anchorStatus"`
}

// AnchorReceipt is the confirmation of a single ledger transaction. Created
// once per record, immutable thereafter.
type AnchorReceipt struct {
	FIRID       string    `json:"firId"`
	TxHash      string    `json:"transactionHash"`
	BlockNumber uint64    `json:"blockNumber"`
	Timestamp   time.Time `json:"timestamp"`
	Signer      string    `json:"signer"`
	Digest      string    `json:"dataHash"`
}

// AnchorRequest carries the digest and the small set of indexing fields
// written to the registry contract alongside it.
type AnchorRequest struct {
	FIRID        string
	Digest       string
	Complainant  string
	Officer      string
	IncidentType string
}

// RegistrationResult is the combined outcome of a successful registration:
// the persisted record, the ledger receipt and the digest that was anchored.
type RegistrationResult struct {
	Record  Record        `json:"record"`
	Receipt AnchorReceipt `json:"receipt"`
	Digest  string        `json:"dataHash"`
}

// Event is a notification fanned out to realtime subscribers.
type Event struct {
	Type      string    `json:"type"`
	FIRID     string    `json:"firId,omitempty"`
	TxHash    string    `json:"transactionHash,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventFIRRegistered = "fir.registered"
	EventEmergency     = "emergency"
)
