package ethsync

import (
	"context"
	"math/big"

	"github.com/TEENet-io/xmr-bridge-go/etherman"
)

// EventSource returns the MintRequested events in blocks [from, to].
type EventSource interface {
	GetMintRequestedEvents(ctx context.Context, from, to uint64) ([]*etherman.MintRequestedEvent, error)
}

type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}
