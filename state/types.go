package state

import (
	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
)

// On-disk form of a pending record. Hashes are hex strings without 0x.
type jsonPendingRecord struct {
	TxId          string `json:"transaction_id"`
	TxKey         string `json:"transaction_secret"`
	Receiver      string `json:"receiver"`
	EvmHeight     uint64 `json:"evm_height"`
	Confirmations uint64 `json:"confirmations"`
}

func (j *jsonPendingRecord) encode(rec *agreement.PendingRecord) *jsonPendingRecord {
	j.TxId = common.Bytes32ToPureHexStr(rec.Request.Identity.TxId)
	j.TxKey = common.Bytes32ToPureHexStr(rec.Request.Identity.TxKey)
	j.Receiver = rec.Request.Receiver.Hex()
	j.EvmHeight = rec.Request.EvmHeight
	j.Confirmations = rec.Confirmations
	return j
}

func (j *jsonPendingRecord) decode() (*agreement.PendingRecord, error) {
	id, err := decodeIdentity(j.TxId, j.TxKey)
	if err != nil {
		return nil, err
	}
	receiver, err := common.ParseEthAddress(j.Receiver)
	if err != nil {
		return nil, err
	}

	return &agreement.PendingRecord{
		Request: agreement.MintRequest{
			Identity:  id,
			Receiver:  receiver,
			EvmHeight: j.EvmHeight,
		},
		Confirmations: j.Confirmations,
	}, nil
}

// On-disk form of a processed record.
type jsonProcessedRecord struct {
	TxId  string `json:"transaction_id"`
	TxKey string `json:"transaction_secret"`
}

func (j *jsonProcessedRecord) encode(id agreement.RequestIdentity) *jsonProcessedRecord {
	j.TxId = common.Bytes32ToPureHexStr(id.TxId)
	j.TxKey = common.Bytes32ToPureHexStr(id.TxKey)
	return j
}

func (j *jsonProcessedRecord) decode() (agreement.RequestIdentity, error) {
	return decodeIdentity(j.TxId, j.TxKey)
}

type jsonWatermark struct {
	MinBlockHeight uint64 `json:"min_block_height"`
}

func decodeIdentity(txId, txKey string) (agreement.RequestIdentity, error) {
	var (
		id  agreement.RequestIdentity
		err error
	)
	if id.TxId, err = common.ParseBytes32(txId); err != nil {
		return agreement.RequestIdentity{}, err
	}
	if id.TxKey, err = common.ParseBytes32(txKey); err != nil {
		return agreement.RequestIdentity{}, err
	}
	return id, nil
}
