package agreement

import "errors"

var (
	// public ledger query failed, the tick aborts and is retried
	ErrScanFailure = errors.New("public ledger scan failed")
	// proof oracle failed, treated as not found
	ErrOracleFailure = errors.New("proof oracle failed")
	// settlement broadcast or inclusion wait failed
	ErrSubmissionFailure = errors.New("settlement submission failed")
	// request store or watermark persistence failed, fatal for the tick
	ErrStoreFailure = errors.New("store operation failed")
)
