package agreement

import (
	"context"
)

// RequestStore is the durable mapping of request identity to its
// lifecycle record. Every operation is idempotent.
type RequestStore interface {
	InsertPending(rec *PendingRecord) error
	RemovePending(id RequestIdentity) error
	ListPending() ([]*PendingRecord, error)
	InsertProcessed(id RequestIdentity) error
	ListProcessedIdentities() (IdentitySet, error)
}

// WatermarkTracker holds the last fully scanned EVM height.
type WatermarkTracker interface {
	// Get returns the stored watermark. On the first call ever it
	// initializes the watermark to the current chain height.
	Get(ctx context.Context) (uint64, error)
	Set(height uint64) error
}

// ProofReport is the raw answer of the proof oracle for a tx proof.
type ProofReport struct {
	InPool        bool
	Confirmations uint64
	Received      uint64 // piconero
}

// ProofOracle checks a monero tx proof against a receive address.
// An unknown proof is reported as an error.
type ProofOracle interface {
	CheckProof(ctx context.Context, id RequestIdentity, receiveAddress string) (*ProofReport, error)
}
