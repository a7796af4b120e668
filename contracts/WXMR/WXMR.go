// Binding for the subset of the wXMR contract used by the bridge.

package WXMR

import (
	"errors"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// WXMRMetaData contains the ABI of the wXMR contract functions and events
// the bridge touches.
var WXMRMetaData = &bind.MetaData{
	ABI: "[{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"txId\",\"type\":\"bytes32\"},{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"txSecret\",\"type\":\"bytes32\"},{\"indexed\":true,\"internalType\":\"address\",\"name\":\"receiver\",\"type\":\"address\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"MintRequested\",\"type\":\"event\"},{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"txId\",\"type\":\"bytes32\"},{\"internalType\":\"bytes32\",\"name\":\"txSecret\",\"type\":\"bytes32\"},{\"internalType\":\"address\",\"name\":\"receiver\",\"type\":\"address\"}],\"name\":\"requestMint\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"txSecret\",\"type\":\"bytes32\"},{\"internalType\":\"uint64\",\"name\":\"amount\",\"type\":\"uint64\"}],\"name\":\"confirmMint\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"\",\"type\":\"bytes32\"}],\"name\":\"mintSecretUsed\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]",
}

// WXMRABI is the input ABI of the binding.
var WXMRABI = WXMRMetaData.ABI

const (
	EventMintRequested   = "MintRequested"
	MethodRequestMint    = "requestMint"
	MethodConfirmMint    = "confirmMint"
	MethodMintSecretUsed = "mintSecretUsed"
)

// WXMR is a binding around the deployed wXMR contract.
type WXMR struct {
	abi      abi.ABI
	contract *bind.BoundContract
}

// WXMRMintRequested represents a MintRequested event raised by the WXMR contract.
type WXMRMintRequested struct {
	TxId     [32]byte
	TxSecret [32]byte
	Receiver common.Address
	Amount   *big.Int
	Raw      types.Log
}

// NewWXMR creates a new instance of WXMR, bound to a specific deployed contract.
func NewWXMR(address common.Address, backend bind.ContractBackend) (*WXMR, error) {
	parsed, err := WXMRMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("GetABI returned nil")
	}

	contract := bind.NewBoundContract(address, *parsed, backend, backend, backend)
	return &WXMR{abi: *parsed, contract: contract}, nil
}

// ABI returns the parsed contract ABI.
func (w *WXMR) ABI() *abi.ABI {
	return &w.abi
}

// MintSecretUsed is a free data retrieval call binding the contract method mintSecretUsed.
//
// Solidity: function mintSecretUsed(bytes32 ) view returns(bool)
func (w *WXMR) MintSecretUsed(opts *bind.CallOpts, txSecret [32]byte) (bool, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, MethodMintSecretUsed, txSecret)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// PackConfirmMint returns the calldata of confirmMint.
//
// Solidity: function confirmMint(bytes32 txSecret, uint64 amount) returns()
func (w *WXMR) PackConfirmMint(txSecret [32]byte, amount uint64) ([]byte, error) {
	return w.abi.Pack(MethodConfirmMint, txSecret, amount)
}

// RequestMint is a paid mutator transaction binding the contract method requestMint.
//
// Solidity: function requestMint(bytes32 txId, bytes32 txSecret, address receiver) returns()
func (w *WXMR) RequestMint(opts *bind.TransactOpts, txId, txSecret [32]byte, receiver common.Address) (*types.Transaction, error) {
	return w.contract.Transact(opts, MethodRequestMint, txId, txSecret, receiver)
}

// MintRequestedFilterQuery builds the log filter for MintRequested events
// emitted in [from, to].
func (w *WXMR) MintRequestedFilterQuery(address common.Address, from, to uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{address},
		Topics:    [][]common.Hash{{w.abi.Events[EventMintRequested].ID}},
	}
}

// ParseMintRequested is a log parse operation binding the contract event.
//
// Solidity: event MintRequested(bytes32 indexed txId, bytes32 indexed txSecret, address indexed receiver, uint256 amount)
func (w *WXMR) ParseMintRequested(log types.Log) (*WXMRMintRequested, error) {
	event := new(WXMRMintRequested)
	if err := w.contract.UnpackLog(event, EventMintRequested, log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
