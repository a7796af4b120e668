package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/xmr-bridge-go/cmd"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/etherman"
	"github.com/TEENet-io/xmr-bridge-go/state"
)

// newWalletRPC answers get_version like a monero wallet RPC v1.26
func newWalletRPC(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Method string `json:"method"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "get_version", req.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"version": 65562},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T, backend, xmrURL string, sim *etherman.SimulatedChain) *cmd.BridgeServerConfig {
	dir := t.TempDir()
	bsc := &cmd.BridgeServerConfig{
		EthRpcUrl:                "simulated",
		EthPrivateKey:            ethcommon.Bytes2Hex(crypto.FromECDSA(sim.Keys[0])),
		WXmrContractAddr:         common.RandEthAddress().Hex(),
		EvmRequiredConfirmations: 1,
		GasBufferMultiplier:      etherman.DefaultGasBufferMultiplier,
		SettlementTimeout:        time.Second,
		XmrRpcUrl:                xmrURL,
		XmrReceiveAddress:        "5receive",
		XmrRequiredConfirmations: 1,
		TickInterval:             20 * time.Millisecond,
		DbBackend:                backend,
		DbFilePath:               filepath.Join(dir, "bridge.db"),
		HttpIp:                   "127.0.0.1",
		HttpPort:                 "0",
	}
	if backend == state.BackendLevelDB {
		bsc.JournalFilePath = filepath.Join(dir, "journal.sqlite")
	}
	require.NoError(t, bsc.Validate())
	return bsc
}

func newTestChain(t *testing.T) *etherman.SimulatedChain {
	sim := etherman.NewSimulatedChain(etherman.GenPrivateKeys(2), etherman.SimulatedChainID)
	t.Cleanup(func() { sim.Backend.Close() })
	return sim
}

func newServer(t *testing.T, bsc *cmd.BridgeServerConfig, sim *etherman.SimulatedChain) (*cmd.BridgeServer, error) {
	contract, err := bsc.ContractAddress()
	require.NoError(t, err)
	myEtherman, err := etherman.NewSimulatedEtherman(sim, contract, 0)
	require.NoError(t, err)
	return cmd.NewBridgeServerWithEtherman(context.Background(), bsc, myEtherman)
}

func TestBridgeServer(t *testing.T) {
	for _, backend := range []string{state.BackendSQLite, state.BackendLevelDB} {
		t.Run(backend, func(t *testing.T) {
			sim := newTestChain(t)
			bsc := newTestConfig(t, backend, newWalletRPC(t).URL, sim)
			bsc.EthChainID = etherman.SimulatedChainID.Int64()

			bs, err := newServer(t, bsc, sim)
			require.NoError(t, err)

			ctx := context.Background()
			for i := 0; i < 5; i++ {
				sim.Backend.Commit()
			}
			head, err := bs.MyEtherman.CurrentHeight(ctx)
			require.NoError(t, err)

			// first tick initializes the watermark at the head
			require.NoError(t, bs.MyReconciler.Tick(ctx))
			wm, err := bs.MyWatermark.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, head, wm)

			for i := 0; i < 3; i++ {
				sim.Backend.Commit()
			}
			require.NoError(t, bs.MyReconciler.Tick(ctx))
			wm, err = bs.MyWatermark.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, head+2, wm)

			// loop and reporter stop on cancel
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- bs.Run(runCtx) }()
			time.Sleep(100 * time.Millisecond)
			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("server did not stop")
			}
			bs.Close()

			// the state survives the server
			v := viper.New()
			v.Set(cmd.KEY_DB_BACKEND, backend)
			v.Set(cmd.KEY_DB_FILE_PATH, bsc.DbFilePath)
			var out bytes.Buffer
			require.NoError(t, cmd.Inspect(v, &out))

			var report cmd.InspectReport
			require.NoError(t, json.Unmarshal(out.Bytes(), &report))
			require.NotNil(t, report.Watermark)
			assert.GreaterOrEqual(t, *report.Watermark, head+2)
			assert.Empty(t, report.Pending)
			assert.Empty(t, report.Processed)
		})
	}
}

func TestBridgeServerChainIDMismatch(t *testing.T) {
	sim := newTestChain(t)
	bsc := newTestConfig(t, state.BackendSQLite, newWalletRPC(t).URL, sim)
	bsc.EthChainID = 1

	_, err := newServer(t, bsc, sim)
	assert.ErrorContains(t, err, "chain ID mismatch")

	_, err = os.Stat(bsc.DbFilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestBridgeServerWalletUnreachable(t *testing.T) {
	sim := newTestChain(t)
	rpc := httptest.NewServer(http.NotFoundHandler())
	rpc.Close()
	bsc := newTestConfig(t, state.BackendSQLite, rpc.URL, sim)

	_, err := newServer(t, bsc, sim)
	assert.Error(t, err)

	_, err = os.Stat(bsc.DbFilePath)
	assert.True(t, os.IsNotExist(err))
}
