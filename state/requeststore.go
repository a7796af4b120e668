package state

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrGetPending     = errors.New("failed to read pending requests")
	ErrPutPending     = errors.New("failed to write pending requests")
	ErrGetProcessed   = errors.New("failed to read processed requests")
	ErrPutProcessed   = errors.New("failed to write processed requests")
	ErrCorruptedValue = errors.New("stored value cannot be decoded")
)

// RequestStore keeps the pending and processed mint requests, each as
// one list value in the KVStore. Every mutation reads the list, changes
// it in memory and writes the whole list back, so a crash leaves the
// list as of the last completed write.
type RequestStore struct {
	kv KVStore
	mu sync.Mutex
}

func NewRequestStore(kv KVStore) *RequestStore {
	return &RequestStore{kv: kv}
}

// InsertPending adds rec unless a record with the same identity is
// already pending. The stored confirmations are not updated.
func (rs *RequestStore) InsertPending(rec *agreement.PendingRecord) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list, err := rs.loadPending()
	if err != nil {
		return err
	}

	for _, item := range list {
		if item.Request.Identity == rec.Request.Identity {
			return nil
		}
	}

	copied := *rec
	return rs.storePending(append(list, &copied))
}

// RemovePending deletes the pending record of id. Removing an unknown
// identity is a no-op and does not touch storage.
func (rs *RequestStore) RemovePending(id agreement.RequestIdentity) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list, err := rs.loadPending()
	if err != nil {
		return err
	}

	kept := make([]*agreement.PendingRecord, 0, len(list))
	for _, item := range list {
		if item.Request.Identity != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(list) {
		return nil
	}

	return rs.storePending(kept)
}

// ListPending returns the pending records in insertion order.
func (rs *RequestStore) ListPending() ([]*agreement.PendingRecord, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.loadPending()
}

func (rs *RequestStore) InsertProcessed(id agreement.RequestIdentity) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list, err := rs.loadProcessed()
	if err != nil {
		return err
	}

	for _, item := range list {
		if item == id {
			return nil
		}
	}

	return rs.storeProcessed(append(list, id))
}

func (rs *RequestStore) ListProcessedIdentities() (agreement.IdentitySet, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list, err := rs.loadProcessed()
	if err != nil {
		return nil, err
	}

	return agreement.NewIdentitySet(list...), nil
}

// ListProcessed returns the processed identities in insertion order.
func (rs *RequestStore) ListProcessed() ([]agreement.RequestIdentity, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.loadProcessed()
}

func (rs *RequestStore) loadPending() ([]*agreement.PendingRecord, error) {
	raw, ok, err := rs.kv.Get(KeyPending)
	if err != nil {
		logger.Errorf("failed to get pending requests: err=%v", err)
		return nil, ErrGetPending
	}
	if !ok || len(raw) == 0 {
		return []*agreement.PendingRecord{}, nil
	}

	var items []jsonPendingRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Errorf("failed to decode pending requests: err=%v", err)
		return nil, ErrCorruptedValue
	}

	list := make([]*agreement.PendingRecord, 0, len(items))
	for _, item := range items {
		rec, err := item.decode()
		if err != nil {
			logger.WithField("txId", item.TxId).Errorf("failed to decode pending request: err=%v", err)
			return nil, ErrCorruptedValue
		}
		list = append(list, rec)
	}

	return list, nil
}

func (rs *RequestStore) storePending(list []*agreement.PendingRecord) error {
	items := make([]jsonPendingRecord, len(list))
	for i, rec := range list {
		items[i].encode(rec)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := rs.kv.Put(KeyPending, raw); err != nil {
		logger.Errorf("failed to put pending requests: err=%v", err)
		return ErrPutPending
	}
	return nil
}

func (rs *RequestStore) loadProcessed() ([]agreement.RequestIdentity, error) {
	raw, ok, err := rs.kv.Get(KeyProcessed)
	if err != nil {
		logger.Errorf("failed to get processed requests: err=%v", err)
		return nil, ErrGetProcessed
	}
	if !ok || len(raw) == 0 {
		return []agreement.RequestIdentity{}, nil
	}

	var items []jsonProcessedRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Errorf("failed to decode processed requests: err=%v", err)
		return nil, ErrCorruptedValue
	}

	list := make([]agreement.RequestIdentity, 0, len(items))
	for _, item := range items {
		id, err := item.decode()
		if err != nil {
			logger.WithField("txId", item.TxId).Errorf("failed to decode processed request: err=%v", err)
			return nil, ErrCorruptedValue
		}
		list = append(list, id)
	}

	return list, nil
}

func (rs *RequestStore) storeProcessed(list []agreement.RequestIdentity) error {
	items := make([]jsonProcessedRecord, len(list))
	for i, id := range list {
		items[i].encode(id)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := rs.kv.Put(KeyProcessed, raw); err != nil {
		logger.Errorf("failed to put processed requests: err=%v", err)
		return ErrPutProcessed
	}
	return nil
}
