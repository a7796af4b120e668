package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/state"
)

func randPrivateKeyHex(t *testing.T) string {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return ethcommon.Bytes2Hex(crypto.FromECDSA(sk))
}

func minimalViper(t *testing.T) *viper.Viper {
	v := viper.New()
	v.Set(KEY_ETH_RPC_URL, "http://localhost:8545")
	v.Set(KEY_ETH_PRIVATE_KEY, randPrivateKeyHex(t))
	v.Set(KEY_W_XMR_CONTRACT_ADDRESS, common.RandEthAddress().Hex())
	v.Set(KEY_XMR_RECEIVE_ADDRESS, "5receive")
	v.Set(KEY_DB_FILE_PATH, filepath.Join(t.TempDir(), "bridge.db"))
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	bsc, err := LoadBridgeServerConfig(minimalViper(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), bsc.EvmRequiredConfirmations)
	assert.Equal(t, uint64(1), bsc.XmrRequiredConfirmations)
	assert.Equal(t, uint64(1000), bsc.EthMaxBlockRange)
	assert.Equal(t, 1.2, bsc.GasBufferMultiplier)
	assert.Equal(t, uint64(2), bsc.PriorityFeeGwei)
	assert.Equal(t, 120*time.Second, bsc.SettlementTimeout)
	assert.Equal(t, "http://localhost:38081", bsc.XmrRpcUrl)
	assert.Equal(t, 10*time.Second, bsc.XmrRpcTimeout)
	assert.Equal(t, float64(0), bsc.XmrRpcRateLimit)
	assert.Equal(t, time.Second, bsc.TickInterval)
	assert.Equal(t, state.BackendSQLite, bsc.DbBackend)
	assert.Empty(t, bsc.JournalFilePath)
	assert.Equal(t, "0.0.0.0", bsc.HttpIp)
	assert.Equal(t, "8080", bsc.HttpPort)
	assert.Equal(t, "info", bsc.LogLevel)
	assert.Nil(t, bsc.ChainID())
}

func TestLoadConfigOverrides(t *testing.T) {
	v := minimalViper(t)
	v.Set(KEY_EVM_REQUIRED_CONFIRMATIONS, 0)
	v.Set(KEY_XMR_REQUIRED_CONFIRMATIONS, 10)
	v.Set(KEY_ETH_CHAIN_ID, 1337)
	v.Set(KEY_TICK_INTERVAL, "250ms")
	v.Set(KEY_DB_BACKEND, state.BackendLevelDB)

	bsc, err := LoadBridgeServerConfig(v)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), bsc.EvmRequiredConfirmations)
	assert.Equal(t, uint64(10), bsc.XmrRequiredConfirmations)
	assert.Equal(t, int64(1337), bsc.ChainID().Int64())
	assert.Equal(t, 250*time.Millisecond, bsc.TickInterval)
	assert.Equal(t, bsc.DbFilePath+"-journal.sqlite", bsc.JournalFilePath)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
		err  error
	}{
		{"missing rpc", KEY_ETH_RPC_URL, "", ErrMissingConfig},
		{"missing receive address", KEY_XMR_RECEIVE_ADDRESS, "", ErrMissingConfig},
		{"missing db path", KEY_DB_FILE_PATH, "", ErrMissingConfig},
		{"bad key", KEY_ETH_PRIVATE_KEY, "xyz", nil},
		{"bad contract", KEY_W_XMR_CONTRACT_ADDRESS, "0x1234", common.ErrInvalidHexStr},
		{"bad backend", KEY_DB_BACKEND, "rocksdb", state.ErrUnknownBackend},
		{"bad multiplier", KEY_GAS_BUFFER_MULTIPLIER, 0.5, nil},
		{"negative chain id", KEY_ETH_CHAIN_ID, -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := minimalViper(t)
			v.Set(tt.key, tt.val)

			_, err := LoadBridgeServerConfig(v)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestNewViperFromEnv(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")
	t.Setenv(KEY_ETH_RPC_URL, "http://node:8545")
	t.Setenv(KEY_ETH_PRIVATE_KEY, randPrivateKeyHex(t))
	t.Setenv(KEY_W_XMR_CONTRACT_ADDRESS, common.RandEthAddress().Hex())
	t.Setenv(KEY_XMR_RECEIVE_ADDRESS, "5receive")
	t.Setenv(KEY_DB_FILE_PATH, "/tmp/bridge.db")
	t.Setenv(KEY_XMR_RPC_RATE_LIMIT, "5")

	v, err := NewViper()
	require.NoError(t, err)
	bsc, err := LoadBridgeServerConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://node:8545", bsc.EthRpcUrl)
	assert.Equal(t, float64(5), bsc.XmrRpcRateLimit)
}

func TestNewViperFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	content := "eth_rpc_url: http://file:8545\n" +
		"eth_private_key: \"" + randPrivateKeyHex(t) + "\"\n" +
		"w_xmr_contract_address: \"" + common.RandEthAddress().Hex() + "\"\n" +
		"xmr_receive_address: 5receive\n" +
		"db_file_path: " + filepath.Join(dir, "bridge.db") + "\n" +
		"xmr_required_confirmations: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ENV_CONFIG_FILE_PATH, path)

	v, err := NewViper()
	require.NoError(t, err)
	bsc, err := LoadBridgeServerConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://file:8545", bsc.EthRpcUrl)
	assert.Equal(t, uint64(3), bsc.XmrRequiredConfirmations)

	t.Setenv(ENV_CONFIG_FILE_PATH, filepath.Join(dir, "missing.yaml"))
	_, err = NewViper()
	assert.ErrorContains(t, err, "config file not found")
}
