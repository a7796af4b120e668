package ethtxmanager

import "strings"

var (
	strZeroBytes32 = strings.Repeat("0", 64)

	// one row per broadcast confirmMint tx
	settlementTable = `CREATE TABLE IF NOT EXISTS settlement (
		txHash CHAR(64) PRIMARY KEY NOT NULL,
		txId CHAR(64) NOT NULL,
		txKey CHAR(64) NOT NULL,
		amount VARCHAR(20) NOT NULL,
		status VARCHAR(10) NOT NULL,
		blockNumber INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT chk_txHash CHECK (txHash != '` + strZeroBytes32 + `'),
		CONSTRAINT chk_txKey CHECK (txKey != '` + strZeroBytes32 + `'),
		CONSTRAINT chk_status CHECK (status IN ('pending', 'success', 'reverted', 'timeout'))
	);
	CREATE INDEX IF NOT EXISTS idx_settlement_txKey ON settlement (txKey);`
)
