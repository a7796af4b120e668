// Golbal Agreement on types

package agreement

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RequestIdentity uniquely identifies a mint request.
// TxId is the monero transaction id, TxKey is the transaction secret
// key that proves the deposit and is consumed by confirmMint() on
// the wXMR contract.
type RequestIdentity struct {
	TxId  common.Hash
	TxKey common.Hash
}

func (id RequestIdentity) String() string {
	return fmt.Sprintf("txId=%s txKey=%s", id.TxId.Hex(), id.TxKey.Hex())
}

// IdentitySet is a set of request identities.
type IdentitySet map[RequestIdentity]struct{}

func NewIdentitySet(ids ...RequestIdentity) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IdentitySet) Add(id RequestIdentity) {
	s[id] = struct{}{}
}

func (s IdentitySet) Has(id RequestIdentity) bool {
	_, ok := s[id]
	return ok
}

// MintRequest is what the bridge reads out of a MintRequested event
// on the EVM side. Amount is not part of the request, it is taken from
// the verified monero output.
type MintRequest struct {
	Identity  RequestIdentity
	Receiver  common.Address // who receives the wXMR
	EvmHeight uint64         // block the event was emitted in
}

func (req *MintRequest) String() string {
	return fmt.Sprintf("%+v", *req)
}

// ProofKind tags the variants of ProofState.
type ProofKind int

const (
	ProofNotFound ProofKind = iota
	ProofPending
	ProofConfirmed
)

func (k ProofKind) String() string {
	switch k {
	case ProofNotFound:
		return "not_found"
	case ProofPending:
		return "pending"
	case ProofConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// ProofState is the classification of a monero tx proof at the time
// it was checked. Confirmations is meaningful for Pending and Confirmed,
// Received only for Confirmed.
type ProofState struct {
	Kind          ProofKind
	Confirmations uint64
	Received      uint64 // piconero
}

func NotFound() ProofState {
	return ProofState{Kind: ProofNotFound}
}

func Pending(confirmations uint64) ProofState {
	return ProofState{Kind: ProofPending, Confirmations: confirmations}
}

func Confirmed(confirmations, received uint64) ProofState {
	return ProofState{Kind: ProofConfirmed, Confirmations: confirmations, Received: received}
}

func (ps ProofState) String() string {
	switch ps.Kind {
	case ProofPending:
		return fmt.Sprintf("pending(%d)", ps.Confirmations)
	case ProofConfirmed:
		return fmt.Sprintf("confirmed(%d, %d)", ps.Confirmations, ps.Received)
	default:
		return ps.Kind.String()
	}
}

// PendingRecord is a mint request whose monero tx was last seen pending.
type PendingRecord struct {
	Request       MintRequest
	Confirmations uint64
}

// ProcessedRecord marks that a settlement attempt has been issued for
// the identity. It is terminal.
type ProcessedRecord struct {
	Identity RequestIdentity
}

// ConfirmedRequest pairs a mint request with the confirmed proof that
// backs it.
type ConfirmedRequest struct {
	Request MintRequest
	Proof   ProofState
}

// Enum for the status of a settlement tx submitted to the EVM chain.
type TxStatus string

const (
	TxPending  TxStatus = "pending"  // sent, not yet included
	TxSuccess  TxStatus = "success"  // included, status 1
	TxReverted TxStatus = "reverted" // included, status 0
	TxTimeout  TxStatus = "timeout"  // not included before the wait timed out
)

type TxReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Status      TxStatus
}
