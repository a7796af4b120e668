package cmd

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/etherman"
	"github.com/TEENet-io/xmr-bridge-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Configuration keys. They are read from environment variables or from
// the file named by BRIDGE_CONFIG.
const (
	ENV_CONFIG_FILE_PATH = "BRIDGE_CONFIG"

	KEY_ETH_RPC_URL                = "ETH_RPC_URL"
	KEY_ETH_PRIVATE_KEY            = "ETH_PRIVATE_KEY"
	KEY_W_XMR_CONTRACT_ADDRESS     = "W_XMR_CONTRACT_ADDRESS"
	KEY_ETH_CHAIN_ID               = "ETH_CHAIN_ID"
	KEY_EVM_REQUIRED_CONFIRMATIONS = "EVM_REQUIRED_CONFIRMATIONS"
	KEY_ETH_MAX_BLOCK_RANGE        = "ETH_MAX_BLOCK_RANGE"
	KEY_GAS_BUFFER_MULTIPLIER      = "GAS_BUFFER_MULTIPLIER"
	KEY_PRIORITY_FEE_GWEI          = "PRIORITY_FEE_GWEI"
	KEY_SETTLEMENT_TIMEOUT         = "SETTLEMENT_TIMEOUT"

	KEY_XMR_RPC_URL                = "XMR_RPC_URL"
	KEY_XMR_RPC_USERNAME           = "XMR_RPC_USERNAME"
	KEY_XMR_RPC_PASSWORD           = "XMR_RPC_PASSWORD"
	KEY_XMR_RECEIVE_ADDRESS        = "XMR_RECEIVE_ADDRESS"
	KEY_XMR_REQUIRED_CONFIRMATIONS = "XMR_REQUIRED_CONFIRMATIONS"
	KEY_XMR_RPC_TIMEOUT            = "XMR_RPC_TIMEOUT"
	KEY_XMR_RPC_RATE_LIMIT         = "XMR_RPC_RATE_LIMIT"

	KEY_TICK_INTERVAL     = "TICK_INTERVAL"
	KEY_DB_BACKEND        = "DB_BACKEND"
	KEY_DB_FILE_PATH      = "DB_FILE_PATH"
	KEY_JOURNAL_FILE_PATH = "JOURNAL_FILE_PATH"

	KEY_HTTP_IP   = "HTTP_IP"
	KEY_HTTP_PORT = "HTTP_PORT"

	KEY_LOG_LEVEL = "LOG_LEVEL"
	KEY_LOG_FILE  = "LOG_FILE"
)

var ErrMissingConfig = errors.New("missing required configuration")

func ErrInvalidConfig(key string, err error) error {
	return fmt.Errorf("invalid %s: %w", key, err)
}

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type BridgeServerConfig struct {
	// eth side
	EthRpcUrl                string
	EthPrivateKey            string // hex, signs confirmMint
	WXmrContractAddr         string
	EthChainID               int64 // 0 skips the chain id check
	EvmRequiredConfirmations uint64
	EthMaxBlockRange         uint64
	GasBufferMultiplier      float64
	PriorityFeeGwei          uint64
	SettlementTimeout        time.Duration

	// monero side
	XmrRpcUrl                string
	XmrRpcUsername           string
	XmrRpcPassword           string
	XmrReceiveAddress        string
	XmrRequiredConfirmations uint64
	XmrRpcTimeout            time.Duration
	XmrRpcRateLimit          float64 // calls per second, 0 = unlimited

	// state side
	TickInterval    time.Duration
	DbBackend       string // sqlite or leveldb
	DbFilePath      string
	JournalFilePath string // settlement journal, only used with leveldb

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080

	LogLevel string
	LogFile  string // empty = stderr only
}

// NewViper returns a viper instance reading environment variables and,
// when BRIDGE_CONFIG is set, the config file it points to.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	if path := v.GetString(ENV_CONFIG_FILE_PATH); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KEY_EVM_REQUIRED_CONFIRMATIONS, 1)
	v.SetDefault(KEY_ETH_MAX_BLOCK_RANGE, 1000)
	v.SetDefault(KEY_GAS_BUFFER_MULTIPLIER, etherman.DefaultGasBufferMultiplier)
	v.SetDefault(KEY_PRIORITY_FEE_GWEI, etherman.DefaultPriorityFeeGwei)
	v.SetDefault(KEY_SETTLEMENT_TIMEOUT, "120s")
	v.SetDefault(KEY_XMR_RPC_URL, "http://localhost:38081")
	v.SetDefault(KEY_XMR_REQUIRED_CONFIRMATIONS, 1)
	v.SetDefault(KEY_XMR_RPC_TIMEOUT, "10s")
	v.SetDefault(KEY_XMR_RPC_RATE_LIMIT, 0)
	v.SetDefault(KEY_TICK_INTERVAL, "1s")
	v.SetDefault(KEY_DB_BACKEND, state.BackendSQLite)
	v.SetDefault(KEY_HTTP_IP, "0.0.0.0")
	v.SetDefault(KEY_HTTP_PORT, "8080")
	v.SetDefault(KEY_LOG_LEVEL, "info")
}

// LoadBridgeServerConfig reads the configuration from v, applies the
// defaults and validates it.
func LoadBridgeServerConfig(v *viper.Viper) (*BridgeServerConfig, error) {
	setDefaults(v)

	bsc := &BridgeServerConfig{
		EthRpcUrl:                v.GetString(KEY_ETH_RPC_URL),
		EthPrivateKey:            v.GetString(KEY_ETH_PRIVATE_KEY),
		WXmrContractAddr:         v.GetString(KEY_W_XMR_CONTRACT_ADDRESS),
		EthChainID:               v.GetInt64(KEY_ETH_CHAIN_ID),
		EvmRequiredConfirmations: v.GetUint64(KEY_EVM_REQUIRED_CONFIRMATIONS),
		EthMaxBlockRange:         v.GetUint64(KEY_ETH_MAX_BLOCK_RANGE),
		GasBufferMultiplier:      v.GetFloat64(KEY_GAS_BUFFER_MULTIPLIER),
		PriorityFeeGwei:          v.GetUint64(KEY_PRIORITY_FEE_GWEI),
		SettlementTimeout:        v.GetDuration(KEY_SETTLEMENT_TIMEOUT),

		XmrRpcUrl:                v.GetString(KEY_XMR_RPC_URL),
		XmrRpcUsername:           v.GetString(KEY_XMR_RPC_USERNAME),
		XmrRpcPassword:           v.GetString(KEY_XMR_RPC_PASSWORD),
		XmrReceiveAddress:        v.GetString(KEY_XMR_RECEIVE_ADDRESS),
		XmrRequiredConfirmations: v.GetUint64(KEY_XMR_REQUIRED_CONFIRMATIONS),
		XmrRpcTimeout:            v.GetDuration(KEY_XMR_RPC_TIMEOUT),
		XmrRpcRateLimit:          v.GetFloat64(KEY_XMR_RPC_RATE_LIMIT),

		TickInterval:    v.GetDuration(KEY_TICK_INTERVAL),
		DbBackend:       v.GetString(KEY_DB_BACKEND),
		DbFilePath:      v.GetString(KEY_DB_FILE_PATH),
		JournalFilePath: v.GetString(KEY_JOURNAL_FILE_PATH),

		HttpIp:   v.GetString(KEY_HTTP_IP),
		HttpPort: v.GetString(KEY_HTTP_PORT),

		LogLevel: v.GetString(KEY_LOG_LEVEL),
		LogFile:  v.GetString(KEY_LOG_FILE),
	}

	if bsc.DbBackend == state.BackendLevelDB && bsc.JournalFilePath == "" && bsc.DbFilePath != "" {
		bsc.JournalFilePath = bsc.DbFilePath + "-journal.sqlite"
	}

	if err := bsc.Validate(); err != nil {
		return nil, err
	}
	return bsc, nil
}

func (bsc *BridgeServerConfig) Validate() error {
	required := []struct{ key, value string }{
		{KEY_ETH_RPC_URL, bsc.EthRpcUrl},
		{KEY_ETH_PRIVATE_KEY, bsc.EthPrivateKey},
		{KEY_W_XMR_CONTRACT_ADDRESS, bsc.WXmrContractAddr},
		{KEY_XMR_RPC_URL, bsc.XmrRpcUrl},
		{KEY_XMR_RECEIVE_ADDRESS, bsc.XmrReceiveAddress},
		{KEY_DB_FILE_PATH, bsc.DbFilePath},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingConfig, r.key)
		}
	}

	if _, err := bsc.PrivateKey(); err != nil {
		return ErrInvalidConfig(KEY_ETH_PRIVATE_KEY, err)
	}
	if _, err := bsc.ContractAddress(); err != nil {
		return ErrInvalidConfig(KEY_W_XMR_CONTRACT_ADDRESS, err)
	}
	if bsc.EthChainID < 0 {
		return ErrInvalidConfig(KEY_ETH_CHAIN_ID, errors.New("negative"))
	}
	switch bsc.DbBackend {
	case state.BackendSQLite, state.BackendLevelDB:
	default:
		return ErrInvalidConfig(KEY_DB_BACKEND, fmt.Errorf("%w: %s", state.ErrUnknownBackend, bsc.DbBackend))
	}
	if bsc.GasBufferMultiplier < 1 {
		return ErrInvalidConfig(KEY_GAS_BUFFER_MULTIPLIER, errors.New("must be at least 1"))
	}
	if bsc.XmrRpcRateLimit < 0 {
		return ErrInvalidConfig(KEY_XMR_RPC_RATE_LIMIT, errors.New("negative"))
	}

	return nil
}

func (bsc *BridgeServerConfig) PrivateKey() (*ecdsa.PrivateKey, error) {
	return etherman.StringToPrivateKey(bsc.EthPrivateKey)
}

func (bsc *BridgeServerConfig) ContractAddress() (ethcommon.Address, error) {
	return common.ParseEthAddress(bsc.WXmrContractAddr)
}

// ChainID returns nil when no chain id check is configured.
func (bsc *BridgeServerConfig) ChainID() *big.Int {
	if bsc.EthChainID == 0 {
		return nil
	}
	return big.NewInt(bsc.EthChainID)
}
