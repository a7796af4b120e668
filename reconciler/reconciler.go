package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/etherman"
	"github.com/TEENet-io/xmr-bridge-go/state"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

// Reconciler matches MintRequested events against monero proofs and
// settles confirmed ones on the wXMR contract. It is the only writer of
// the request store and the watermark.
type Reconciler struct {
	cfg *Config

	ledger    PublicLedger
	scanner   LogScanner
	verifier  ProofVerifier
	submitter SettlementSubmitter

	store     agreement.RequestStore
	watermark agreement.WatermarkTracker

	metrics *Metrics
}

func New(
	cfg *Config,
	ledger PublicLedger,
	scanner LogScanner,
	verifier ProofVerifier,
	submitter SettlementSubmitter,
	store agreement.RequestStore,
	watermark agreement.WatermarkTracker,
	metrics *Metrics,
) *Reconciler {
	return &Reconciler{
		cfg:       cfg.withDefaults(),
		ledger:    ledger,
		scanner:   scanner,
		verifier:  verifier,
		submitter: submitter,
		store:     store,
		watermark: watermark,
		metrics:   metrics,
	}
}

// Loop runs ticks until ctx is cancelled or a tick hits a store failure.
// Cancellation is only observed between ticks.
func (r *Reconciler) Loop(ctx context.Context) error {
	logger.Info("starting reconciliation loop")
	defer logger.Info("stopping reconciliation loop")

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logBalance(ctx)

		if err := r.Tick(ctx); err != nil {
			if errors.Is(err, agreement.ErrStoreFailure) {
				logger.Errorf("stopping after store failure: err=%v", err)
				return err
			}
			logger.Warnf("tick aborted, retrying next tick: err=%v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one reconciliation round. It runs to completion even if ctx
// is cancelled meanwhile. Errors wrap agreement.ErrScanFailure, in which
// case nothing was written, or agreement.ErrStoreFailure.
func (r *Reconciler) Tick(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	newLogger := logger.WithField("tick", uuid.NewString())

	err := r.tick(ctx, newLogger)
	switch {
	case err == nil:
		r.metrics.tick(OutcomeOK)
	case errors.Is(err, agreement.ErrStoreFailure):
		r.metrics.tick(OutcomeStoreFailure)
	default:
		r.metrics.tick(OutcomeScanFailure)
	}
	return err
}

func (r *Reconciler) tick(ctx context.Context, newLogger *logger.Entry) error {
	// 1. height up to which events are considered final
	head, err := r.ledger.CurrentHeight(ctx)
	if err != nil {
		newLogger.Errorf("failed to get current EVM height: err=%v", err)
		return fmt.Errorf("%w: %v", agreement.ErrScanFailure, err)
	}
	confirmedHeight := uint64(0)
	if head > r.cfg.EvmRequiredConfirmations {
		confirmedHeight = head - r.cfg.EvmRequiredConfirmations
	}

	// 2. new requests since the watermark
	watermark, err := r.watermark.Get(ctx)
	if err != nil {
		newLogger.Errorf("failed to get watermark: err=%v", err)
		// the first ever read initializes from the chain head
		if errors.Is(err, state.ErrChainHeight) {
			return fmt.Errorf("%w: %v", agreement.ErrScanFailure, err)
		}
		return storeFailure(err)
	}
	logRequests, err := r.scanner.Scan(ctx, watermark, confirmedHeight)
	if err != nil {
		return err
	}

	// 3. requests waiting for confirmations
	pendingRecords, err := r.store.ListPending()
	if err != nil {
		newLogger.Errorf("failed to list pending requests: err=%v", err)
		return storeFailure(err)
	}
	inPending := agreement.NewIdentitySet()
	pendingRequests := make([]*agreement.MintRequest, 0, len(pendingRecords))
	for _, rec := range pendingRecords {
		req := rec.Request
		pendingRequests = append(pendingRequests, &req)
		inPending.Add(req.Identity)
	}

	// 4. candidates, first occurrence of an identity wins
	candidates := dedupe(append(logRequests, pendingRequests...))
	r.metrics.candidate(SourceLog, len(logRequests))
	r.metrics.candidate(SourcePending, len(pendingRequests))

	// 5. drop already settled requests
	processed, err := r.store.ListProcessedIdentities()
	if err != nil {
		newLogger.Errorf("failed to list processed requests: err=%v", err)
		return storeFailure(err)
	}
	unprocessed := make([]*agreement.MintRequest, 0, len(candidates))
	for _, c := range candidates {
		if !processed.Has(c.Identity) {
			unprocessed = append(unprocessed, c)
		}
	}

	newLogger.WithFields(logger.Fields{
		"head":      head,
		"confirmed": confirmedHeight,
		"watermark": watermark,
	}).Infof("found %d unprocessed mint requests out of %d total (%d from logs, %d from pending)",
		len(unprocessed), len(candidates), len(logRequests), len(pendingRequests))

	// 6. classify
	toSettle := []*agreement.ConfirmedRequest{}
	for _, c := range unprocessed {
		reqLogger := newLogger.WithField("txId", c.Identity.TxId.Hex())

		state := r.verifier.Verify(ctx, c.Identity, r.cfg.ReceiveAddress)
		r.metrics.proofState(state.Kind.String())

		switch {
		case state.Kind == agreement.ProofConfirmed && state.Confirmations >= r.cfg.XmrRequiredConfirmations:
			reqLogger.WithField("received", state.Received).Info("monero tx confirmed")
			toSettle = append(toSettle, &agreement.ConfirmedRequest{Request: *c, Proof: state})

		case state.Kind == agreement.ProofNotFound:
			if inPending.Has(c.Identity) {
				if err := r.store.RemovePending(c.Identity); err != nil {
					reqLogger.Errorf("failed to remove pending request: err=%v", err)
					return storeFailure(err)
				}
				delete(inPending, c.Identity)
			}
			reqLogger.Warn("monero tx not found for mint request")

		default:
			if inPending.Has(c.Identity) {
				reqLogger.WithField("confirmations", state.Confirmations).Info("request is already pending")
				continue
			}
			if err := r.store.InsertPending(&agreement.PendingRecord{
				Request:       *c,
				Confirmations: state.Confirmations,
			}); err != nil {
				reqLogger.Errorf("failed to insert pending request: err=%v", err)
				return storeFailure(err)
			}
			inPending.Add(c.Identity)
			reqLogger.WithField("confirmations", state.Confirmations).Info("added pending request")
		}
	}

	newLogger.Infof("found %d confirmed mint requests", len(toSettle))

	// 7, 8. settle, then mark processed, then leave pending
	for _, c := range toSettle {
		if err := r.settle(ctx, newLogger, c, inPending); err != nil {
			return err
		}
	}
	r.metrics.setPending(len(inPending))

	// 9.
	if err := r.watermark.Set(confirmedHeight); err != nil {
		newLogger.Errorf("failed to set watermark: err=%v", err)
		return storeFailure(err)
	}
	r.metrics.setWatermark(confirmedHeight)

	return nil
}

func (r *Reconciler) settle(
	ctx context.Context,
	newLogger *logger.Entry,
	c *agreement.ConfirmedRequest,
	inPending agreement.IdentitySet,
) error {
	id := c.Request.Identity
	reqLogger := newLogger.WithFields(logger.Fields{
		"txId":  id.TxId.Hex(),
		"txKey": id.TxKey.Hex(),
	})

	used, err := r.ledger.IsSecretUsed(ctx, id.TxKey)
	if err != nil {
		// not settled, try again next tick
		reqLogger.Errorf("failed to check if secret is used: err=%v", err)
		r.metrics.settlement(ResultCheckFailed)
		if inPending.Has(id) {
			return nil
		}
		if err := r.store.InsertPending(&agreement.PendingRecord{
			Request:       c.Request,
			Confirmations: c.Proof.Confirmations,
		}); err != nil {
			reqLogger.Errorf("failed to insert pending request: err=%v", err)
			return storeFailure(err)
		}
		inPending.Add(id)
		return nil
	}

	if used {
		reqLogger.Info("secret already used, skipping mint")
		r.metrics.settlement(ResultAlreadyUsed)
	} else {
		receipt, err := r.submitter.Submit(ctx, c)
		if err != nil {
			fields := logger.Fields{}
			if receipt != nil {
				fields["txHash"] = receipt.TxHash.Hex()
				fields["status"] = receipt.Status
			}
			reqLogger.WithFields(fields).Errorf("settlement failed, marking processed anyway: err=%v", err)
			r.metrics.settlement(ResultFailed)
		} else {
			reqLogger.WithFields(logger.Fields{
				"txHash": receipt.TxHash.Hex(),
				"block":  receipt.BlockNumber,
			}).Info("minted wXMR")
			r.metrics.settlement(ResultSuccess)
		}
	}

	if err := r.store.InsertProcessed(id); err != nil {
		reqLogger.Errorf("failed to insert processed request: err=%v", err)
		return storeFailure(err)
	}
	if inPending.Has(id) {
		if err := r.store.RemovePending(id); err != nil {
			reqLogger.Errorf("failed to remove pending request: err=%v", err)
			return storeFailure(err)
		}
		delete(inPending, id)
	}

	return nil
}

func (r *Reconciler) logBalance(ctx context.Context) {
	br, ok := r.ledger.(BalanceReader)
	if !ok {
		return
	}
	balance, err := br.OperatorBalance(ctx)
	if err != nil {
		logger.Warnf("failed to get operator balance: err=%v", err)
		return
	}
	logger.WithField("wei", balance.String()).Infof("current ETH balance: %s ETH", etherman.WeiToEther(balance))
}

func dedupe(reqs []*agreement.MintRequest) []*agreement.MintRequest {
	seen := agreement.NewIdentitySet()
	out := make([]*agreement.MintRequest, 0, len(reqs))
	for _, req := range reqs {
		if seen.Has(req.Identity) {
			continue
		}
		seen.Add(req.Identity)
		out = append(out, req)
	}
	return out
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", agreement.ErrStoreFailure, err)
}
