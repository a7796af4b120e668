package ethtxmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrSettlementReverted = errors.New("confirmMint tx reverted")
	ErrSettlementTimeout  = errors.New("confirmMint tx not included before timeout")
)

// Submitter sends confirmMint for confirmed requests and waits for
// inclusion.
type Submitter struct {
	cfg     *Config
	ledger  Ledger
	journal *EthTxManagerDB
}

// NewSubmitter creates a submitter. journal may be nil.
func NewSubmitter(cfg *Config, ledger Ledger, journal *EthTxManagerDB) *Submitter {
	c := *cfg
	if c.SettlementTimeout <= 0 {
		c.SettlementTimeout = DefaultSettlementTimeout
	}
	return &Submitter{cfg: &c, ledger: ledger, journal: journal}
}

// Submit sends confirmMint(txKey, received) and blocks until the tx is
// included or the settlement timeout elapses. Any failure wraps
// agreement.ErrSubmissionFailure. A receipt is returned whenever the tx
// was broadcast, also when it reverted or timed out.
func (s *Submitter) Submit(ctx context.Context, req *agreement.ConfirmedRequest) (*agreement.TxReceipt, error) {
	id := req.Request.Identity
	amount := req.Proof.Received

	newLogger := logger.WithFields(logger.Fields{
		"txId":   id.TxId.Hex(),
		"txKey":  id.TxKey.Hex(),
		"amount": amount,
	})

	txHash, err := s.ledger.SendSettlement(ctx, id.TxKey, amount)
	if err != nil {
		newLogger.Errorf("failed to send confirmMint tx: err=%v", err)
		return nil, fmt.Errorf("%w: %v", agreement.ErrSubmissionFailure, err)
	}
	newLogger = newLogger.WithField("txHash", txHash.Hex())

	s.record(&Settlement{
		TxHash: txHash,
		TxId:   id.TxId,
		TxKey:  id.TxKey,
		Amount: amount,
		Status: agreement.TxPending,
	})

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SettlementTimeout)
	defer cancel()

	receipt, err := s.ledger.WaitSettlement(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			newLogger.Errorf("confirmMint tx not included within %v", s.cfg.SettlementTimeout)
			s.update(txHash, agreement.TxTimeout, 0)
			return &agreement.TxReceipt{TxHash: txHash, Status: agreement.TxTimeout},
				fmt.Errorf("%w: %w", agreement.ErrSubmissionFailure, ErrSettlementTimeout)
		}
		newLogger.Errorf("failed waiting for confirmMint tx: err=%v", err)
		return &agreement.TxReceipt{TxHash: txHash, Status: agreement.TxPending},
			fmt.Errorf("%w: %v", agreement.ErrSubmissionFailure, err)
	}

	s.update(txHash, receipt.Status, receipt.BlockNumber)

	if receipt.Status != agreement.TxSuccess {
		newLogger.WithField("block", receipt.BlockNumber).Error("confirmMint tx reverted")
		return receipt, fmt.Errorf("%w: %w", agreement.ErrSubmissionFailure, ErrSettlementReverted)
	}

	newLogger.WithField("block", receipt.BlockNumber).Info("confirmMint tx confirmed")
	return receipt, nil
}

// journal errors do not fail a settlement, the chain is the source of truth
func (s *Submitter) record(st *Settlement) {
	if s.journal == nil {
		return
	}
	if err := s.journal.InsertSettlement(st); err != nil {
		logger.WithField("txHash", st.TxHash.Hex()).Errorf("failed to journal settlement: err=%v", err)
	}
}

func (s *Submitter) update(txHash ethcommon.Hash, status agreement.TxStatus, blockNumber uint64) {
	if s.journal == nil {
		return
	}
	if err := s.journal.UpdateSettlementStatus(txHash, status, blockNumber); err != nil {
		logger.WithField("status", status).Errorf("failed to update journaled settlement: err=%v", err)
	}
}
