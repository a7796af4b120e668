package ethsync

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/etherman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockRange struct{ from, to uint64 }

// fakeSource serves events by block number and records queried ranges
type fakeSource struct {
	events map[uint64][]*etherman.MintRequestedEvent
	calls  []blockRange
	err    error
}

func (f *fakeSource) GetMintRequestedEvents(_ context.Context, from, to uint64) ([]*etherman.MintRequestedEvent, error) {
	f.calls = append(f.calls, blockRange{from, to})
	if f.err != nil {
		return nil, f.err
	}
	out := []*etherman.MintRequestedEvent{}
	for h := from; h <= to; h++ {
		out = append(out, f.events[h]...)
	}
	return out, nil
}

func randEvent(height uint64) *etherman.MintRequestedEvent {
	return &etherman.MintRequestedEvent{
		TxId:        common.RandBytes32(),
		TxSecret:    common.RandBytes32(),
		Receiver:    common.RandEthAddress(),
		Amount:      big.NewInt(0),
		BlockNumber: height,
		TxHash:      common.RandBytes32(),
	}
}

func TestScanEmptyRange(t *testing.T) {
	src := &fakeSource{}
	s := New(&Config{}, src)

	reqs, err := s.Scan(context.Background(), 10, 10)
	assert.NoError(t, err)
	assert.Empty(t, reqs)

	reqs, err = s.Scan(context.Background(), 10, 5)
	assert.NoError(t, err)
	assert.Empty(t, reqs)

	assert.Empty(t, src.calls)
}

func TestScan(t *testing.T) {
	ev1, ev2, ev3 := randEvent(11), randEvent(12), randEvent(12)
	src := &fakeSource{events: map[uint64][]*etherman.MintRequestedEvent{
		10: {randEvent(10)}, // at the watermark, must not be returned
		11: {ev1},
		12: {ev2, ev3},
	}}
	s := New(&Config{}, src)

	reqs, err := s.Scan(context.Background(), 10, 12)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, []blockRange{{11, 12}}, src.calls)

	for i, ev := range []*etherman.MintRequestedEvent{ev1, ev2, ev3} {
		assert.Equal(t, &agreement.MintRequest{
			Identity:  agreement.RequestIdentity{TxId: ev.TxId, TxKey: ev.TxSecret},
			Receiver:  ev.Receiver,
			EvmHeight: ev.BlockNumber,
		}, reqs[i])
	}
}

func TestScanSplitsRange(t *testing.T) {
	src := &fakeSource{events: map[uint64][]*etherman.MintRequestedEvent{
		3: {randEvent(3)},
		7: {randEvent(7)},
	}}
	s := New(&Config{MaxBlockRange: 3}, src)

	reqs, err := s.Scan(context.Background(), 0, 8)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
	assert.Equal(t, []blockRange{{1, 3}, {4, 6}, {7, 8}}, src.calls)
}

func TestScanFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	s := New(&Config{}, src)

	_, err := s.Scan(context.Background(), 0, 1)
	assert.ErrorIs(t, err, agreement.ErrScanFailure)
}

type outOfRangeSource struct{}

func (outOfRangeSource) GetMintRequestedEvents(_ context.Context, from, to uint64) ([]*etherman.MintRequestedEvent, error) {
	return []*etherman.MintRequestedEvent{randEvent(to + 1)}, nil
}

func TestScanRejectsOutOfRangeEvent(t *testing.T) {
	s := New(&Config{}, outOfRangeSource{})

	_, err := s.Scan(context.Background(), 0, 1)
	assert.ErrorIs(t, err, agreement.ErrScanFailure)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

type chainIDReader struct{ id *big.Int }

func (r chainIDReader) ChainID(context.Context) (*big.Int, error) { return r.id, nil }

func TestCheckChainID(t *testing.T) {
	assert.NoError(t, CheckChainID(context.Background(), chainIDReader{big.NewInt(1337)}, big.NewInt(1337)))
	assert.Error(t, CheckChainID(context.Background(), chainIDReader{big.NewInt(1)}, big.NewInt(1337)))
}
