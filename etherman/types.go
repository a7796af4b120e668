package etherman

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// MintRequestedEvent is a decoded MintRequested log of the wXMR contract.
type MintRequestedEvent struct {
	TxId        ethcommon.Hash // monero txid
	TxSecret    ethcommon.Hash // monero tx key
	Receiver    ethcommon.Address
	Amount      *big.Int
	BlockNumber uint64
	TxHash      ethcommon.Hash // evm tx that emitted the event
}

// Fees of an EIP-1559 transaction, in wei.
type Fees struct {
	GasTipCap *big.Int
	GasFeeCap *big.Int
}
