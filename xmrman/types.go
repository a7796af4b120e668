package xmrman

import (
	"encoding/json"
	"fmt"
)

// Version is the wallet RPC version split into major and minor parts.
type Version struct {
	Raw   uint32
	Major uint32
	Minor uint32
}

func NewVersion(raw uint32) *Version {
	return &Version{Raw: raw, Major: raw >> 16, Minor: raw & 0xffff}
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CheckTxKeyResult is the result of check_tx_key.
type CheckTxKeyResult struct {
	Confirmations uint64 `json:"confirmations"`
	InPool        bool   `json:"in_pool"`
	Received      uint64 `json:"received"` // piconero
}

type checkTxKeyParams struct {
	TxId    string `json:"txid"`
	TxKey   string `json:"tx_key"`
	Address string `json:"address"`
}

type getVersionResult struct {
	Version uint32 `json:"version"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by the wallet RPC.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("monero rpc error %d: %s", e.Code, e.Message)
}
