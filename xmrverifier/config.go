package xmrverifier

const DefaultRequiredConfirmations = 1

type Config struct {
	// number of monero confirmations before a proof counts as confirmed
	RequiredConfirmations uint64
}
