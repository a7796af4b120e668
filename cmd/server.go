// Server = eth side components + monero oracle + db/state + http reporter.
// All components are configured via BridgeServerConfig.

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TEENet-io/xmr-bridge-go/database"
	"github.com/TEENet-io/xmr-bridge-go/etherman"
	"github.com/TEENet-io/xmr-bridge-go/ethsync"
	"github.com/TEENet-io/xmr-bridge-go/ethtxmanager"
	"github.com/TEENet-io/xmr-bridge-go/reconciler"
	"github.com/TEENet-io/xmr-bridge-go/reporter"
	"github.com/TEENet-io/xmr-bridge-go/state"
	"github.com/TEENet-io/xmr-bridge-go/xmrman"
	"github.com/TEENet-io/xmr-bridge-go/xmrverifier"
)

// BridgeServer holds the objects that consists of the bridge server.
type BridgeServer struct {
	Config *BridgeServerConfig

	// Eth side
	MyEtherman  *etherman.Etherman
	MyScanner   *ethsync.Scanner
	MySubmitter *ethtxmanager.Submitter

	// Monero side
	MyXmrClient *xmrman.Client
	MyVerifier  *xmrverifier.Verifier

	// State
	MyKV        state.KVStore
	MyStore     *state.RequestStore
	MyWatermark *state.WatermarkTracker
	MyJournalDb *sql.DB
	MyJournal   *ethtxmanager.EthTxManagerDB

	MyRegistry   *prometheus.Registry
	MyReconciler *reconciler.Reconciler
	MyReporter   *reporter.HttpReporter
}

// NewBridgeServer connects to the EVM node and builds the server.
func NewBridgeServer(ctx context.Context, bsc *BridgeServerConfig) (*BridgeServer, error) {
	sk, err := bsc.PrivateKey()
	if err != nil {
		return nil, err
	}
	contract, err := bsc.ContractAddress()
	if err != nil {
		return nil, err
	}

	myEtherman, err := etherman.NewEtherman(&etherman.Config{
		URL:                 bsc.EthRpcUrl,
		ContractAddress:     contract,
		PrivateKey:          sk,
		GasBufferMultiplier: bsc.GasBufferMultiplier,
		PriorityFeeGwei:     bsc.PriorityFeeGwei,
	})
	if err != nil {
		logger.Errorf("failed to create etherman: err=%v", err)
		return nil, err
	}

	return NewBridgeServerWithEtherman(ctx, bsc, myEtherman)
}

// NewBridgeServerWithEtherman builds the server over an existing
// etherman. It checks that both chains are reachable before anything is
// opened on disk.
func NewBridgeServerWithEtherman(ctx context.Context, bsc *BridgeServerConfig, myEtherman *etherman.Etherman) (*BridgeServer, error) {
	logger.WithFields(logger.Fields{
		"contract": myEtherman.ContractAddress().Hex(),
		"operator": myEtherman.Operator().Hex(),
	}).Info("wXMR contract")

	// 1) eth chain id
	if expected := bsc.ChainID(); expected != nil {
		if err := ethsync.CheckChainID(ctx, myEtherman, expected); err != nil {
			logger.Errorf("eth chain id check failed: err=%v", err)
			return nil, err
		}
	}

	// 2) monero wallet rpc
	myXmrClient := xmrman.NewClient(&xmrman.Config{
		URL:       bsc.XmrRpcUrl,
		Username:  bsc.XmrRpcUsername,
		Password:  bsc.XmrRpcPassword,
		Timeout:   bsc.XmrRpcTimeout,
		RateLimit: bsc.XmrRpcRateLimit,
	})
	version, err := myXmrClient.GetVersion(ctx)
	if err != nil {
		logger.Errorf("cannot connect to monero wallet rpc at %s: err=%v", bsc.XmrRpcUrl, err)
		return nil, err
	}
	logger.WithField("version", version.String()).Info("connected to monero wallet rpc")

	// 3) state
	kv, journalDb, err := openStores(bsc)
	if err != nil {
		logger.Errorf("failed to open stores: err=%v", err)
		return nil, err
	}
	myJournal, err := ethtxmanager.NewEthTxManagerDB(journalDb)
	if err != nil {
		logger.Errorf("failed to create settlement journal: err=%v", err)
		kv.Close()
		journalDb.Close()
		return nil, err
	}
	myStore := state.NewRequestStore(kv)
	myWatermark := state.NewWatermarkTracker(kv, myEtherman)

	// 4) reconciliation
	myVerifier := xmrverifier.New(&xmrverifier.Config{
		RequiredConfirmations: bsc.XmrRequiredConfirmations,
	}, myXmrClient)
	myScanner := ethsync.New(&ethsync.Config{MaxBlockRange: bsc.EthMaxBlockRange}, myEtherman)
	mySubmitter := ethtxmanager.NewSubmitter(&ethtxmanager.Config{
		SettlementTimeout: bsc.SettlementTimeout,
	}, myEtherman, myJournal)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	myReconciler := reconciler.New(
		&reconciler.Config{
			EvmRequiredConfirmations: bsc.EvmRequiredConfirmations,
			XmrRequiredConfirmations: bsc.XmrRequiredConfirmations,
			ReceiveAddress:           bsc.XmrReceiveAddress,
			TickInterval:             bsc.TickInterval,
		},
		myEtherman,
		myScanner,
		myVerifier,
		mySubmitter,
		myStore,
		myWatermark,
		reconciler.NewMetrics(registry),
	)

	// 5) http reporter
	myReporter := reporter.NewHttpReporter(
		bsc.HttpIp,
		bsc.HttpPort,
		myStore,
		myWatermark,
		myJournal,
		registry,
	)

	return &BridgeServer{
		Config:       bsc,
		MyEtherman:   myEtherman,
		MyScanner:    myScanner,
		MySubmitter:  mySubmitter,
		MyXmrClient:  myXmrClient,
		MyVerifier:   myVerifier,
		MyKV:         kv,
		MyStore:      myStore,
		MyWatermark:  myWatermark,
		MyJournalDb:  journalDb,
		MyJournal:    myJournal,
		MyRegistry:   registry,
		MyReconciler: myReconciler,
		MyReporter:   myReporter,
	}, nil
}

// openStores opens the request store backend and the sqlite database of
// the settlement journal. With the sqlite backend both live in the same
// database.
func openStores(bsc *BridgeServerConfig) (state.KVStore, *sql.DB, error) {
	switch bsc.DbBackend {
	case state.BackendLevelDB:
		kv, err := state.NewLevelKV(bsc.DbFilePath)
		if err != nil {
			return nil, nil, err
		}
		db, err := database.OpenSQLite(bsc.JournalFilePath)
		if err != nil {
			kv.Close()
			return nil, nil, err
		}
		return kv, db, nil

	case state.BackendSQLite, "":
		db, err := database.OpenSQLite(bsc.DbFilePath)
		if err != nil {
			return nil, nil, err
		}
		kv, err := state.NewSQLiteKV(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return kv, db, nil

	default:
		return nil, nil, state.ErrUnknownBackend
	}
}

// Run turns on the reconciliation loop and the http reporter and blocks
// until ctx is cancelled or one of them stops. A store failure of the
// loop is returned.
func (bs *BridgeServer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := bs.MyReconciler.Loop(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return bs.MyReporter.Run(ctx)
	})

	return g.Wait()
}

func (bs *BridgeServer) Close() {
	bs.MyJournal.Close()
	if err := bs.MyKV.Close(); err != nil {
		logger.Warnf("failed to close store: err=%v", err)
	}
	if err := bs.MyJournalDb.Close(); err != nil {
		logger.Warnf("failed to close journal db: err=%v", err)
	}
}

// Create, then start the bridge server and wait.
// Press Ctrl-C to kill the server.
func StartBridgeServerAndWait(bsc *BridgeServerConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bs, err := NewBridgeServer(ctx, bsc)
	if err != nil {
		return err
	}
	defer bs.Close()

	err = bs.Run(ctx)
	if err != nil {
		logger.Errorf("bridge server stopped: err=%v", err)
		return err
	}
	logger.Info("bridge server stopped")
	return nil
}
