package ethtxmanager

import "time"

const DefaultSettlementTimeout = 120 * time.Second

type Config struct {
	// Timeout on waiting for a confirmMint tx to be included
	SettlementTimeout time.Duration
}
