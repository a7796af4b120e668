package etherman

import (
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultGasBufferMultiplier = 1.2
	DefaultPriorityFeeGwei     = 2
	DefaultReceiptPollInterval = time.Second
)

type Config struct {
	// URL is the URL of the Ethereum node
	URL string

	// ContractAddress is the deployed wXMR contract address
	ContractAddress common.Address

	// PrivateKey signs confirmMint transactions
	PrivateKey *ecdsa.PrivateKey

	// ChainID is fetched from the node when nil
	ChainID *big.Int

	GasBufferMultiplier float64
	PriorityFeeGwei     uint64
	ReceiptPollInterval time.Duration
}

func (cfg *Config) withDefaults() *Config {
	c := *cfg
	if c.GasBufferMultiplier <= 0 {
		c.GasBufferMultiplier = DefaultGasBufferMultiplier
	}
	if c.PriorityFeeGwei == 0 {
		c.PriorityFeeGwei = DefaultPriorityFeeGwei
	}
	if c.ReceiptPollInterval <= 0 {
		c.ReceiptPollInterval = DefaultReceiptPollInterval
	}
	return &c
}
