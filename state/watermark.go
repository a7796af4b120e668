package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	logger "github.com/sirupsen/logrus"
)

var (
	ErrGetWatermark = errors.New("failed to read watermark")
	ErrPutWatermark = errors.New("failed to write watermark")
	ErrChainHeight  = errors.New("failed to get current chain height")
)

// HeightReader returns the current height of the EVM chain.
type HeightReader interface {
	CurrentHeight(ctx context.Context) (uint64, error)
}

// WatermarkTracker persists the last fully scanned EVM height.
//
// Writes are non-decreasing: Set with a height lower than the stored one
// keeps the stored value, so a late or reordered caller cannot make the
// scanner go back over ranges it has already covered.
type WatermarkTracker struct {
	kv   KVStore
	head HeightReader

	mu     sync.Mutex
	cached *uint64
}

func NewWatermarkTracker(kv KVStore, head HeightReader) *WatermarkTracker {
	return &WatermarkTracker{kv: kv, head: head}
}

func (wt *WatermarkTracker) Get(ctx context.Context) (uint64, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if wt.cached != nil {
		return *wt.cached, nil
	}

	h, ok, err := wt.load()
	if err != nil {
		return 0, err
	}
	if ok {
		wt.cached = &h
		return h, nil
	}

	// first run ever, start from the current head
	h, err = wt.head.CurrentHeight(ctx)
	if err != nil {
		logger.Errorf("failed to get chain height for initial watermark: err=%v", err)
		return 0, ErrChainHeight
	}
	if err := wt.store(h); err != nil {
		return 0, err
	}
	logger.WithField("height", h).Info("initialized watermark")

	return h, nil
}

// Peek returns the stored watermark without initializing it.
func (wt *WatermarkTracker) Peek() (uint64, bool, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	return wt.currentLocked()
}

func (wt *WatermarkTracker) Set(height uint64) error {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	stored, ok, err := wt.currentLocked()
	if err != nil {
		return err
	}
	if ok && height < stored {
		logger.WithFields(logger.Fields{
			"stored": stored,
			"new":    height,
		}).Warn("refusing to move watermark backwards")
		return nil
	}
	if ok && height == stored {
		return nil
	}

	return wt.store(height)
}

func (wt *WatermarkTracker) currentLocked() (uint64, bool, error) {
	if wt.cached != nil {
		return *wt.cached, true, nil
	}
	return wt.load()
}

func (wt *WatermarkTracker) load() (uint64, bool, error) {
	raw, ok, err := wt.kv.Get(KeyWatermark)
	if err != nil {
		logger.Errorf("failed to get watermark: err=%v", err)
		return 0, false, ErrGetWatermark
	}
	if !ok {
		return 0, false, nil
	}

	var w jsonWatermark
	if err := json.Unmarshal(raw, &w); err != nil {
		logger.Errorf("failed to decode watermark: err=%v", err)
		return 0, false, ErrCorruptedValue
	}
	return w.MinBlockHeight, true, nil
}

func (wt *WatermarkTracker) store(height uint64) error {
	raw, err := json.Marshal(&jsonWatermark{MinBlockHeight: height})
	if err != nil {
		return err
	}

	if err := wt.kv.Put(KeyWatermark, raw); err != nil {
		logger.Errorf("failed to put watermark: err=%v", err)
		return ErrPutWatermark
	}
	wt.cached = &height
	return nil
}
