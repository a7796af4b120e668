package ethtxmanager

import (
	"database/sql"
	"errors"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidStatus      = errors.New("invalid status")
	ErrSettlementNotFound = errors.New("settlement not found")
)

// EthTxManagerDB journals the confirmMint transactions sent by the
// bridge.
type EthTxManagerDB struct {
	stmtCache *database.StmtCache
}

func NewEthTxManagerDB(db *sql.DB) (*EthTxManagerDB, error) {
	if _, err := db.Exec(settlementTable); err != nil {
		return nil, err
	}

	return &EthTxManagerDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (db *EthTxManagerDB) Close() {
	db.stmtCache.Clear()
}

func (db *EthTxManagerDB) InsertSettlement(st *Settlement) error {
	if !isValidStatus(st.Status) {
		return ErrInvalidStatus
	}

	query := `INSERT OR IGNORE INTO settlement (txHash, txId, txKey, amount, status, blockNumber) VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	sqlSt := &sqlSettlement{}
	sqlSt.encode(st)

	if _, err := stmt.Exec(
		sqlSt.TxHash,
		sqlSt.TxId,
		sqlSt.TxKey,
		sqlSt.Amount,
		sqlSt.Status,
		sqlSt.BlockNumber,
	); err != nil {
		return err
	}

	return nil
}

func (db *EthTxManagerDB) UpdateSettlementStatus(txHash ethcommon.Hash, status agreement.TxStatus, blockNumber uint64) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}

	query := `UPDATE settlement SET status = ?, blockNumber = ? WHERE txHash = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	res, err := stmt.Exec(string(status), int64(blockNumber), common.Bytes32ToPureHexStr(txHash))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSettlementNotFound
	}

	return nil
}

func (db *EthTxManagerDB) GetSettlement(txHash ethcommon.Hash) (*Settlement, bool, error) {
	query := `SELECT txHash, txId, txKey, amount, status, blockNumber FROM settlement WHERE txHash = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, false, err
	}

	var sqlSt sqlSettlement
	if err := stmt.QueryRow(common.Bytes32ToPureHexStr(txHash)).Scan(
		&sqlSt.TxHash,
		&sqlSt.TxId,
		&sqlSt.TxKey,
		&sqlSt.Amount,
		&sqlSt.Status,
		&sqlSt.BlockNumber,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	st, err := sqlSt.decode()
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

// GetSettlementsByTxKey returns every tx sent for the given tx key. More
// than one means the request was resubmitted after a restart.
func (db *EthTxManagerDB) GetSettlementsByTxKey(txKey ethcommon.Hash) ([]*Settlement, error) {
	query := `SELECT txHash, txId, txKey, amount, status, blockNumber FROM settlement WHERE txKey = ? ORDER BY rowid`
	return db.querySettlements(query, common.Bytes32ToPureHexStr(txKey))
}

func (db *EthTxManagerDB) GetSettlements() ([]*Settlement, error) {
	query := `SELECT txHash, txId, txKey, amount, status, blockNumber FROM settlement ORDER BY rowid`
	return db.querySettlements(query)
}

func (db *EthTxManagerDB) querySettlements(query string, args ...any) ([]*Settlement, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sts := []*Settlement{}
	for rows.Next() {
		var sqlSt sqlSettlement
		if err := rows.Scan(
			&sqlSt.TxHash,
			&sqlSt.TxId,
			&sqlSt.TxKey,
			&sqlSt.Amount,
			&sqlSt.Status,
			&sqlSt.BlockNumber,
		); err != nil {
			return nil, err
		}

		st, err := sqlSt.decode()
		if err != nil {
			return nil, err
		}
		sts = append(sts, st)
	}

	return sts, rows.Err()
}

func isValidStatus(status agreement.TxStatus) bool {
	switch status {
	case agreement.TxPending, agreement.TxSuccess, agreement.TxReverted, agreement.TxTimeout:
		return true
	}
	return false
}
