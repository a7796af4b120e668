package ethtxmanager

import (
	"context"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Ledger signs, broadcasts and watches confirmMint transactions.
type Ledger interface {
	SendSettlement(ctx context.Context, txSecret ethcommon.Hash, amount uint64) (ethcommon.Hash, error)
	WaitSettlement(ctx context.Context, txHash ethcommon.Hash) (*agreement.TxReceipt, error)
}
