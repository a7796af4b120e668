package reconciler

import (
	"context"
	"math/big"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// PublicLedger is the EVM side as seen by the loop.
type PublicLedger interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	IsSecretUsed(ctx context.Context, txSecret ethcommon.Hash) (bool, error)
}

// BalanceReader is implemented by ledgers that can report the balance of
// the operator account. The balance is only logged.
type BalanceReader interface {
	OperatorBalance(ctx context.Context) (*big.Int, error)
}

type LogScanner interface {
	Scan(ctx context.Context, fromExclusive, toInclusive uint64) ([]*agreement.MintRequest, error)
}

type ProofVerifier interface {
	Verify(ctx context.Context, id agreement.RequestIdentity, receiveAddress string) agreement.ProofState
}

type SettlementSubmitter interface {
	Submit(ctx context.Context, req *agreement.ConfirmedRequest) (*agreement.TxReceipt, error)
}
