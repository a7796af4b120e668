package reconciler

import (
	"context"
	"errors"
	"math/big"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type scanRange struct{ from, to uint64 }

// fakeLedger plays the EVM chain together with the wXMR contract: a
// successful submission marks the secret as used.
type fakeLedger struct {
	head    uint64
	headErr error

	// CurrentHeight fails on this call number only, 0 disables
	failHeadCall int
	headCalls    int

	used    map[ethcommon.Hash]bool
	usedErr error
	checks  int

	balance *big.Int
}

func newFakeLedger(head uint64) *fakeLedger {
	return &fakeLedger{head: head, used: map[ethcommon.Hash]bool{}, balance: big.NewInt(1)}
}

func (l *fakeLedger) CurrentHeight(context.Context) (uint64, error) {
	l.headCalls++
	if l.headCalls == l.failHeadCall {
		return 0, errors.New("connection reset")
	}
	return l.head, l.headErr
}

func (l *fakeLedger) IsSecretUsed(_ context.Context, txSecret ethcommon.Hash) (bool, error) {
	l.checks++
	if l.usedErr != nil {
		return false, l.usedErr
	}
	return l.used[txSecret], nil
}

func (l *fakeLedger) OperatorBalance(context.Context) (*big.Int, error) {
	return l.balance, nil
}

// fakeScanner serves requests by height and records the scanned ranges.
// always is appended to every non-empty scan.
type fakeScanner struct {
	byHeight map[uint64][]*agreement.MintRequest
	always   []*agreement.MintRequest
	err      error
	ranges   []scanRange
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{byHeight: map[uint64][]*agreement.MintRequest{}}
}

func (s *fakeScanner) add(req *agreement.MintRequest) {
	s.byHeight[req.EvmHeight] = append(s.byHeight[req.EvmHeight], req)
}

func (s *fakeScanner) Scan(_ context.Context, from, to uint64) ([]*agreement.MintRequest, error) {
	if s.err != nil {
		return nil, errors.Join(agreement.ErrScanFailure, s.err)
	}
	out := []*agreement.MintRequest{}
	if to <= from {
		return out, nil
	}
	s.ranges = append(s.ranges, scanRange{from, to})
	for h := from + 1; h <= to; h++ {
		out = append(out, s.byHeight[h]...)
	}
	return append(out, s.always...), nil
}

type fakeVerifier struct {
	states map[agreement.RequestIdentity]agreement.ProofState
	calls  map[agreement.RequestIdentity]int
	addrs  []string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{
		states: map[agreement.RequestIdentity]agreement.ProofState{},
		calls:  map[agreement.RequestIdentity]int{},
	}
}

func (v *fakeVerifier) Verify(_ context.Context, id agreement.RequestIdentity, addr string) agreement.ProofState {
	v.calls[id]++
	v.addrs = append(v.addrs, addr)
	if st, ok := v.states[id]; ok {
		return st
	}
	return agreement.NotFound()
}

type fakeSubmitter struct {
	ledger    *fakeLedger
	submitted []*agreement.ConfirmedRequest
	err       error
}

func (s *fakeSubmitter) Submit(_ context.Context, req *agreement.ConfirmedRequest) (*agreement.TxReceipt, error) {
	s.submitted = append(s.submitted, req)
	if s.err != nil {
		return &agreement.TxReceipt{TxHash: common.RandBytes32(), Status: agreement.TxReverted}, s.err
	}
	s.ledger.used[req.Request.Identity.TxKey] = true
	return &agreement.TxReceipt{
		TxHash:      common.RandBytes32(),
		BlockNumber: s.ledger.head + 1,
		Status:      agreement.TxSuccess,
	}, nil
}

// flakyStore fails InsertProcessed while failProcessed is set
type flakyStore struct {
	*state.RequestStore
	failProcessed bool
}

func (s *flakyStore) InsertProcessed(id agreement.RequestIdentity) error {
	if s.failProcessed {
		return errors.New("disk full")
	}
	return s.RequestStore.InsertProcessed(id)
}

func randRequest(height uint64) *agreement.MintRequest {
	return &agreement.MintRequest{
		Identity: agreement.RequestIdentity{
			TxId:  common.RandBytes32(),
			TxKey: common.RandBytes32(),
		},
		Receiver:  common.RandEthAddress(),
		EvmHeight: height,
	}
}
