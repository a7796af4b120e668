package ethsync

import (
	"context"
	"fmt"
	"math/big"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	logger "github.com/sirupsen/logrus"
)

// Scanner turns MintRequested events into mint requests.
type Scanner struct {
	cfg    *Config
	source EventSource
}

func New(cfg *Config, source EventSource) *Scanner {
	c := *cfg
	if c.MaxBlockRange == 0 {
		c.MaxBlockRange = DefaultMaxBlockRange
	}
	return &Scanner{cfg: &c, source: source}
}

// Scan returns the mint requests emitted in (fromExclusive, toInclusive],
// in chain order. An empty range returns nothing without touching the
// chain. Failures wrap agreement.ErrScanFailure.
func (s *Scanner) Scan(ctx context.Context, fromExclusive, toInclusive uint64) ([]*agreement.MintRequest, error) {
	if toInclusive <= fromExclusive {
		logger.WithFields(logger.Fields{
			"from": fromExclusive,
			"to":   toInclusive,
		}).Debug("no new blocks to scan")
		return []*agreement.MintRequest{}, nil
	}

	logger.WithFields(logger.Fields{
		"from": fromExclusive + 1,
		"to":   toInclusive,
	}).Info("getting MintRequested logs")

	requests := []*agreement.MintRequest{}
	for start := fromExclusive + 1; start <= toInclusive; {
		end := start + s.cfg.MaxBlockRange - 1
		if end > toInclusive || end < start {
			end = toInclusive
		}

		events, err := s.source.GetMintRequestedEvents(ctx, start, end)
		if err != nil {
			logger.WithFields(logger.Fields{
				"from": start,
				"to":   end,
			}).Errorf("failed to get MintRequested logs: err=%v", err)
			return nil, fmt.Errorf("%w: %v", agreement.ErrScanFailure, err)
		}

		for _, ev := range events {
			if ev.BlockNumber < start || ev.BlockNumber > end {
				return nil, fmt.Errorf("%w: %w: event at %d outside [%d, %d]",
					agreement.ErrScanFailure, ErrInvalidRange, ev.BlockNumber, start, end)
			}

			logger.WithFields(logger.Fields{
				"txId":     ev.TxId.Hex(),
				"receiver": ev.Receiver.Hex(),
				"height":   ev.BlockNumber,
				"evmTx":    ev.TxHash.Hex(),
			}).Debug("MintRequested event")

			requests = append(requests, &agreement.MintRequest{
				Identity: agreement.RequestIdentity{
					TxId:  ev.TxId,
					TxKey: ev.TxSecret,
				},
				Receiver:  ev.Receiver,
				EvmHeight: ev.BlockNumber,
			})
		}

		if end == toInclusive {
			break
		}
		start = end + 1
	}

	logger.WithField("count", len(requests)).Info("retrieved MintRequested logs")

	return requests, nil
}

// CheckChainID fails when the node reports a chain id other than expected.
func CheckChainID(ctx context.Context, reader ChainIDReader, expected *big.Int) error {
	actual, err := reader.ChainID(ctx)
	if err != nil {
		logger.Error("failed to get eth chain ID")
		return err
	}
	if actual.Cmp(expected) != 0 {
		return ErrChainIDUnmatched(expected, actual)
	}
	return nil
}
