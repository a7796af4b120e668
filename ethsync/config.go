package ethsync

const DefaultMaxBlockRange = 1000

type Config struct {
	// MaxBlockRange caps the number of blocks queried by one log filter
	// call. Larger ranges are split.
	MaxBlockRange uint64
}
