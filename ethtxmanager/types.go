package ethtxmanager

import (
	"strconv"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Settlement is a journaled confirmMint transaction.
type Settlement struct {
	TxHash      ethcommon.Hash
	TxId        ethcommon.Hash
	TxKey       ethcommon.Hash
	Amount      uint64 // piconero
	Status      agreement.TxStatus
	BlockNumber uint64
}

type sqlSettlement struct {
	TxHash      string
	TxId        string
	TxKey       string
	Amount      string
	Status      string
	BlockNumber int64
}

func (s *sqlSettlement) encode(st *Settlement) *sqlSettlement {
	s.TxHash = common.Bytes32ToPureHexStr(st.TxHash)
	s.TxId = common.Bytes32ToPureHexStr(st.TxId)
	s.TxKey = common.Bytes32ToPureHexStr(st.TxKey)
	s.Amount = strconv.FormatUint(st.Amount, 10)
	s.Status = string(st.Status)
	s.BlockNumber = int64(st.BlockNumber)
	return s
}

func (s *sqlSettlement) decode() (*Settlement, error) {
	amount, err := strconv.ParseUint(s.Amount, 10, 64)
	if err != nil {
		return nil, err
	}

	return &Settlement{
		TxHash:      common.HexStrToBytes32(s.TxHash),
		TxId:        common.HexStrToBytes32(s.TxId),
		TxKey:       common.HexStrToBytes32(s.TxKey),
		Amount:      amount,
		Status:      agreement.TxStatus(s.Status),
		BlockNumber: uint64(s.BlockNumber),
	}, nil
}
