package xmrverifier

import (
	"context"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	logger "github.com/sirupsen/logrus"
)

// Verifier classifies a monero tx proof into a ProofState.
type Verifier struct {
	cfg    *Config
	oracle agreement.ProofOracle
}

func New(cfg *Config, oracle agreement.ProofOracle) *Verifier {
	c := *cfg
	if c.RequiredConfirmations == 0 {
		c.RequiredConfirmations = DefaultRequiredConfirmations
	}
	return &Verifier{cfg: &c, oracle: oracle}
}

// Verify never fails. Rules, first match wins:
//  1. oracle error: NotFound
//  2. tx still in the pool: Pending, whatever the confirmation count
//  3. enough confirmations: Confirmed
//  4. otherwise: Pending
func (v *Verifier) Verify(ctx context.Context, id agreement.RequestIdentity, receiveAddress string) agreement.ProofState {
	report, err := v.oracle.CheckProof(ctx, id, receiveAddress)
	if err != nil {
		logger.WithFields(logger.Fields{
			"txId":  id.TxId.Hex(),
			"error": err,
		}).Warn(agreement.ErrOracleFailure.Error())
		return agreement.NotFound()
	}

	switch {
	case report.InPool:
		return agreement.Pending(report.Confirmations)
	case report.Confirmations >= v.cfg.RequiredConfirmations:
		return agreement.Confirmed(report.Confirmations, report.Received)
	default:
		return agreement.Pending(report.Confirmations)
	}
}

func (v *Verifier) RequiredConfirmations() uint64 {
	return v.cfg.RequiredConfirmations
}
