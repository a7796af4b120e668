package xmrman

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcHandler func(method string, params json.RawMessage) (interface{}, *RPCError)

func newRPCServer(t *testing.T, h rpcHandler) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, rpcPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      string          `json:"id"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "2.0", req.JSONRPC)

		result, rpcErr := h(req.Method, req.Params)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetVersion(t *testing.T) {
	srv := newRPCServer(t, func(method string, _ json.RawMessage) (interface{}, *RPCError) {
		assert.Equal(t, MethodGetVersion, method)
		return map[string]interface{}{"version": 65562}, nil
	})

	c := NewClient(&Config{URL: srv.URL})
	v, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v.Major)
	assert.Equal(t, uint32(26), v.Minor)
	assert.Equal(t, "1.26", v.String())
}

func TestCheckProof(t *testing.T) {
	id := agreement.RequestIdentity{TxId: common.RandBytes32(), TxKey: common.RandBytes32()}
	address := "5AbCdEf"

	srv := newRPCServer(t, func(method string, raw json.RawMessage) (interface{}, *RPCError) {
		assert.Equal(t, MethodCheckTxKey, method)

		var params checkTxKeyParams
		assert.NoError(t, json.Unmarshal(raw, &params))
		assert.Equal(t, common.Bytes32ToPureHexStr(id.TxId), params.TxId)
		assert.Equal(t, common.Bytes32ToPureHexStr(id.TxKey), params.TxKey)
		assert.Equal(t, address, params.Address)

		return map[string]interface{}{
			"confirmations": 12,
			"in_pool":       false,
			"received":      1000000000000,
		}, nil
	})

	c := NewClient(&Config{URL: srv.URL + "/"})
	report, err := c.CheckProof(context.Background(), id, address)
	require.NoError(t, err)
	assert.Equal(t, &agreement.ProofReport{
		InPool:        false,
		Confirmations: 12,
		Received:      1000000000000,
	}, report)
}

func TestRPCError(t *testing.T) {
	srv := newRPCServer(t, func(string, json.RawMessage) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -25, Message: "Failed to get transaction from daemon"}
	})

	c := NewClient(&Config{URL: srv.URL})
	_, err := c.CheckTxKey(context.Background(), "aa", "bb", "cc")
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -25, rpcErr.Code)
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(&Config{URL: srv.URL})
	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, ErrHTTPStatus)
}

func TestEmptyResult(t *testing.T) {
	srv := newRPCServer(t, func(string, json.RawMessage) (interface{}, *RPCError) {
		return nil, nil
	})

	c := NewClient(&Config{URL: srv.URL})
	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(&Config{URL: srv.URL})
	_, err := c.GetVersion(context.Background())
	assert.Error(t, err)
}

func TestDigestAuth(t *testing.T) {
	var authorized atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate",
				`Digest realm="monero-rpc", qop="auth", algorithm=MD5, nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Contains(t, auth, `username="monero"`)
		authorized.Store(true)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      "0",
			"result":  map[string]interface{}{"version": 65562},
		})
	}))
	defer srv.Close()

	c := NewClient(&Config{URL: srv.URL, Username: "monero", Password: "rpcPassword"})
	_, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.True(t, authorized.Load())
}

func TestRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := newRPCServer(t, func(string, json.RawMessage) (interface{}, *RPCError) {
		calls.Add(1)
		return map[string]interface{}{"version": 1}, nil
	})

	c := NewClient(&Config{URL: srv.URL, RateLimit: 1})
	ctx := context.Background()
	_, err := c.GetVersion(ctx)
	require.NoError(t, err)

	// the second call must wait about a second for a token
	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = c.GetVersion(ctx)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
