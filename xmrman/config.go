package xmrman

import "time"

const (
	DefaultURL     = "http://localhost:38081"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	// URL of the monero wallet RPC, without the /json_rpc path
	URL string

	// digest auth credentials, auth is off when Username is empty
	Username string
	Password string

	Timeout time.Duration

	// RateLimit is the max number of calls per second, 0 means unlimited
	RateLimit float64
}
