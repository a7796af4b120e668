package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/state"
)

type inspectIdentity struct {
	TxId  string `json:"tx_id"`
	TxKey string `json:"tx_key"`
}

type inspectPending struct {
	inspectIdentity
	Receiver      string `json:"receiver"`
	EvmHeight     uint64 `json:"evm_height"`
	Confirmations uint64 `json:"confirmations"`
}

// InspectReport is a snapshot of the persisted bridge state.
type InspectReport struct {
	Watermark *uint64            `json:"watermark"` // nil before the first tick
	Pending   []*inspectPending  `json:"pending"`
	Processed []*inspectIdentity `json:"processed"`
}

// Inspect opens the store named by DB_BACKEND and DB_FILE_PATH and writes
// its content to w as JSON. The store must not be in use by a running
// server when the leveldb backend is used.
func Inspect(v *viper.Viper, w io.Writer) error {
	setDefaults(v)
	backend := v.GetString(KEY_DB_BACKEND)
	path := v.GetString(KEY_DB_FILE_PATH)
	if path == "" {
		return fmt.Errorf("%w: %s", ErrMissingConfig, KEY_DB_FILE_PATH)
	}

	kv, err := state.OpenKVStore(backend, path)
	if err != nil {
		return err
	}
	defer kv.Close()

	report, err := inspectStore(kv)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func inspectStore(kv state.KVStore) (*InspectReport, error) {
	store := state.NewRequestStore(kv)
	// never initialized here, no chain needed
	watermark := state.NewWatermarkTracker(kv, nil)

	report := &InspectReport{
		Pending:   []*inspectPending{},
		Processed: []*inspectIdentity{},
	}

	h, ok, err := watermark.Peek()
	if err != nil {
		return nil, err
	}
	if ok {
		report.Watermark = &h
	}

	pending, err := store.ListPending()
	if err != nil {
		return nil, err
	}
	for _, rec := range pending {
		report.Pending = append(report.Pending, &inspectPending{
			inspectIdentity: toInspectIdentity(rec.Request.Identity),
			Receiver:        rec.Request.Receiver.Hex(),
			EvmHeight:       rec.Request.EvmHeight,
			Confirmations:   rec.Confirmations,
		})
	}

	processed, err := store.ListProcessed()
	if err != nil {
		return nil, err
	}
	for _, id := range processed {
		ident := toInspectIdentity(id)
		report.Processed = append(report.Processed, &ident)
	}

	return report, nil
}

func toInspectIdentity(id agreement.RequestIdentity) inspectIdentity {
	return inspectIdentity{TxId: id.TxId.Hex(), TxKey: id.TxKey.Hex()}
}
