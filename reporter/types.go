package reporter

import (
	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/ethtxmanager"
)

type jsonIdentity struct {
	TxId  string `json:"tx_id"`
	TxKey string `json:"tx_key"`
}

func (j *jsonIdentity) encode(id agreement.RequestIdentity) *jsonIdentity {
	j.TxId = id.TxId.Hex()
	j.TxKey = id.TxKey.Hex()
	return j
}

type jsonPending struct {
	jsonIdentity
	Receiver      string `json:"receiver"`
	EvmHeight     uint64 `json:"evm_height"`
	Confirmations uint64 `json:"confirmations"`
}

func (j *jsonPending) encode(rec *agreement.PendingRecord) *jsonPending {
	j.jsonIdentity.encode(rec.Request.Identity)
	j.Receiver = rec.Request.Receiver.Hex()
	j.EvmHeight = rec.Request.EvmHeight
	j.Confirmations = rec.Confirmations
	return j
}

type jsonSettlement struct {
	TxHash      string `json:"tx_hash"`
	TxId        string `json:"tx_id"`
	TxKey       string `json:"tx_key"`
	Amount      uint64 `json:"amount"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"block_number"`
}

func (j *jsonSettlement) encode(st *ethtxmanager.Settlement) *jsonSettlement {
	j.TxHash = st.TxHash.Hex()
	j.TxId = st.TxId.Hex()
	j.TxKey = st.TxKey.Hex()
	j.Amount = st.Amount
	j.Status = string(st.Status)
	j.BlockNumber = st.BlockNumber
	return j
}
