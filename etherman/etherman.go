package etherman

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/contracts/WXMR"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrNoPrivateKey = errors.New("no private key configured for settlement")
	ErrNoLogTopics  = errors.New("log without topics")
)

type ethereumClient interface {
	ethereum.ChainReader
	ethereum.ChainStateReader
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.LogFilterer
	ethereum.TransactionReader
	ethereum.TransactionSender

	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)

	bind.DeployBackend
	bind.ContractBackend
}

// Etherman talks to the EVM chain that hosts the wXMR contract.
type Etherman struct {
	cfg       *Config
	ethClient ethereumClient
	contract  *WXMR.WXMR
	chainID   *big.Int
	from      ethcommon.Address
	signer    types.Signer
}

func NewEtherman(cfg *Config) (*Etherman, error) {
	ethClient, err := ethclient.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	return NewEthermanWithClient(cfg, ethClient)
}

// NewEthermanWithClient uses an already connected client, e.g. the one of
// a simulated backend.
func NewEthermanWithClient(cfg *Config, client ethereumClient) (*Etherman, error) {
	cfg = cfg.withDefaults()

	contract, err := WXMR.NewWXMR(cfg.ContractAddress, client)
	if err != nil {
		return nil, err
	}

	chainID := cfg.ChainID
	if chainID == nil {
		chainID, err = client.ChainID(context.Background())
		if err != nil {
			return nil, err
		}
	}

	etherman := &Etherman{
		cfg:       cfg,
		ethClient: client,
		contract:  contract,
		chainID:   chainID,
		signer:    types.LatestSignerForChainID(chainID),
	}
	if cfg.PrivateKey != nil {
		etherman.from = crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey)
	}

	return etherman, nil
}

func (etherman *Etherman) ContractAddress() ethcommon.Address {
	return etherman.cfg.ContractAddress
}

// Operator is the account that signs confirmMint transactions.
func (etherman *Etherman) Operator() ethcommon.Address {
	return etherman.from
}

// ChainID returns the chain id reported by the node.
func (etherman *Etherman) ChainID(ctx context.Context) (*big.Int, error) {
	return etherman.ethClient.ChainID(ctx)
}

func (etherman *Etherman) CurrentHeight(ctx context.Context) (uint64, error) {
	return etherman.ethClient.BlockNumber(ctx)
}

// OperatorBalance returns the ETH balance of the operator account in wei.
func (etherman *Etherman) OperatorBalance(ctx context.Context) (*big.Int, error) {
	return etherman.ethClient.BalanceAt(ctx, etherman.from, nil)
}

// GetMintRequestedEvents returns the MintRequested events emitted by the
// wXMR contract in blocks [from, to], in chain order. Logs removed by a
// reorg are skipped.
func (etherman *Etherman) GetMintRequestedEvents(ctx context.Context, from, to uint64) ([]*MintRequestedEvent, error) {
	query := etherman.contract.MintRequestedFilterQuery(etherman.cfg.ContractAddress, from, to)
	logs, err := etherman.ethClient.FilterLogs(ctx, query)
	if err != nil {
		return nil, err
	}

	events := make([]*MintRequestedEvent, 0, len(logs))
	for _, vlog := range logs {
		if vlog.Removed {
			continue
		}
		ev, err := etherman.DecodeMintRequested(vlog)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

func (etherman *Etherman) DecodeMintRequested(vlog types.Log) (*MintRequestedEvent, error) {
	if len(vlog.Topics) == 0 {
		return nil, ErrNoLogTopics
	}

	ev, err := etherman.contract.ParseMintRequested(vlog)
	if err != nil {
		return nil, err
	}

	return &MintRequestedEvent{
		TxId:        ev.TxId,
		TxSecret:    ev.TxSecret,
		Receiver:    ev.Receiver,
		Amount:      ev.Amount,
		BlockNumber: vlog.BlockNumber,
		TxHash:      vlog.TxHash,
	}, nil
}

// IsSecretUsed reports whether confirmMint already consumed txSecret.
func (etherman *Etherman) IsSecretUsed(ctx context.Context, txSecret ethcommon.Hash) (bool, error) {
	return etherman.contract.MintSecretUsed(&bind.CallOpts{Context: ctx}, txSecret)
}

// SendSettlement signs and broadcasts confirmMint(txSecret, amount) and
// returns the hash of the transaction.
func (etherman *Etherman) SendSettlement(ctx context.Context, txSecret ethcommon.Hash, amount uint64) (ethcommon.Hash, error) {
	sk := etherman.cfg.PrivateKey
	if sk == nil {
		return ethcommon.Hash{}, ErrNoPrivateKey
	}

	data, err := etherman.contract.PackConfirmMint(txSecret, amount)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	tx, err := etherman.prepareTx(ctx, data)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	signed, err := etherman.signTx(tx, sk)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	if err := etherman.ethClient.SendTransaction(ctx, signed); err != nil {
		return ethcommon.Hash{}, err
	}

	logger.WithFields(logger.Fields{
		"txHash":   signed.Hash().Hex(),
		"txSecret": txSecret.Hex(),
		"amount":   amount,
		"gas":      signed.Gas(),
		"feeCap":   signed.GasFeeCap(),
		"tipCap":   signed.GasTipCap(),
	}).Info("sent confirmMint tx")

	return signed.Hash(), nil
}

// WaitSettlement polls for the receipt of txHash until it is available or
// ctx is done.
func (etherman *Etherman) WaitSettlement(ctx context.Context, txHash ethcommon.Hash) (*agreement.TxReceipt, error) {
	ticker := time.NewTicker(etherman.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := etherman.ethClient.TransactionReceipt(ctx, txHash)
		if err == nil {
			status := agreement.TxSuccess
			if receipt.Status != types.ReceiptStatusSuccessful {
				status = agreement.TxReverted
			}
			return &agreement.TxReceipt{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				Status:      status,
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			logger.WithField("txHash", txHash.Hex()).Debugf("failed to get receipt: err=%v", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (etherman *Etherman) prepareTx(ctx context.Context, data []byte) (*types.DynamicFeeTx, error) {
	to := etherman.cfg.ContractAddress

	gas, err := etherman.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From: etherman.from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasLimit := GasWithBuffer(gas, etherman.cfg.GasBufferMultiplier)

	baseFee, err := etherman.baseFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get base fee: %w", err)
	}
	fees := ComputeFees(baseFee, etherman.cfg.PriorityFeeGwei)

	nonce, err := etherman.ethClient.PendingNonceAt(ctx, etherman.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	logger.WithFields(logger.Fields{
		"estimated": gas,
		"limit":     gasLimit,
		"baseFee":   baseFee,
	}).Debug("prepared confirmMint tx")

	return &types.DynamicFeeTx{
		ChainID:   etherman.chainID,
		Nonce:     nonce,
		GasTipCap: fees.GasTipCap,
		GasFeeCap: fees.GasFeeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      data,
	}, nil
}

// baseFee is the base fee of the latest header, or the suggested gas
// price on chains without EIP-1559.
func (etherman *Etherman) baseFee(ctx context.Context) (*big.Int, error) {
	head, err := etherman.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if head.BaseFee != nil {
		return head.BaseFee, nil
	}
	return etherman.ethClient.SuggestGasPrice(ctx)
}

func (etherman *Etherman) signTx(tx *types.DynamicFeeTx, sk *ecdsa.PrivateKey) (*types.Transaction, error) {
	return types.SignTx(types.NewTx(tx), etherman.signer, sk)
}
