package ethtxmanager

import (
	"database/sql"
	"testing"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *EthTxManagerDB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	etm, err := NewEthTxManagerDB(db)
	require.NoError(t, err)
	t.Cleanup(etm.Close)
	return etm
}

func randSettlement() *Settlement {
	return &Settlement{
		TxHash: common.RandBytes32(),
		TxId:   common.RandBytes32(),
		TxKey:  common.RandBytes32(),
		Amount: 1_000_000_000_000,
		Status: agreement.TxPending,
	}
}

func TestSettlementOps(t *testing.T) {
	etm := newTestDB(t)

	sts, err := etm.GetSettlements()
	assert.NoError(t, err)
	assert.Len(t, sts, 0)

	st := randSettlement()
	assert.NoError(t, etm.InsertSettlement(st))
	// duplicate insert is ignored
	assert.NoError(t, etm.InsertSettlement(st))

	st1, ok, err := etm.GetSettlement(st.TxHash)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, st, st1)

	assert.NoError(t, etm.UpdateSettlementStatus(st.TxHash, agreement.TxSuccess, 99))
	st1, ok, err = etm.GetSettlement(st.TxHash)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, agreement.TxSuccess, st1.Status)
	assert.Equal(t, uint64(99), st1.BlockNumber)

	_, ok, err = etm.GetSettlement(common.RandBytes32())
	assert.NoError(t, err)
	assert.False(t, ok)

	err = etm.UpdateSettlementStatus(common.RandBytes32(), agreement.TxSuccess, 1)
	assert.ErrorIs(t, err, ErrSettlementNotFound)
}

func TestSettlementsByTxKey(t *testing.T) {
	etm := newTestDB(t)

	first := randSettlement()
	second := randSettlement()
	second.TxId, second.TxKey = first.TxId, first.TxKey
	other := randSettlement()

	for _, st := range []*Settlement{first, other, second} {
		require.NoError(t, etm.InsertSettlement(st))
	}

	sts, err := etm.GetSettlementsByTxKey(first.TxKey)
	assert.NoError(t, err)
	assert.Equal(t, []*Settlement{first, second}, sts)

	sts, err = etm.GetSettlements()
	assert.NoError(t, err)
	assert.Len(t, sts, 3)
}

func TestInvalidStatus(t *testing.T) {
	etm := newTestDB(t)

	st := randSettlement()
	st.Status = "lost"
	assert.ErrorIs(t, etm.InsertSettlement(st), ErrInvalidStatus)
	assert.ErrorIs(t, etm.UpdateSettlementStatus(st.TxHash, "lost", 0), ErrInvalidStatus)
}
