package reconciler

import "time"

const (
	DefaultEvmRequiredConfirmations = 1
	DefaultXmrRequiredConfirmations = 1
	DefaultTickInterval             = time.Second
)

type Config struct {
	// blocks an EVM event must be buried under before it is scanned
	EvmRequiredConfirmations uint64

	// monero confirmations a proof needs to be settled
	XmrRequiredConfirmations uint64

	// monero address deposits must pay to
	ReceiveAddress string

	// delay between two ticks
	TickInterval time.Duration
}

func (cfg *Config) withDefaults() *Config {
	c := *cfg
	if c.XmrRequiredConfirmations == 0 {
		c.XmrRequiredConfirmations = DefaultXmrRequiredConfirmations
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return &c
}
