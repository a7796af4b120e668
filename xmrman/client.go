package xmrman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/icholy/digest"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	MethodGetVersion = "get_version"
	MethodCheckTxKey = "check_tx_key"

	rpcPath = "/json_rpc"
)

var (
	ErrEmptyResult = errors.New("monero rpc returned empty result")
	ErrHTTPStatus  = errors.New("monero rpc http request failed")
)

// Client is a JSON-RPC client of the monero wallet RPC.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

func NewClient(cfg *Config) *Client {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Username != "" {
		transport = &digest.Transport{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		endpoint: strings.TrimSuffix(url, "/") + rpcPath,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetVersion returns the version of the wallet RPC.
func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var res getVersionResult
	if err := c.call(ctx, MethodGetVersion, nil, &res); err != nil {
		return nil, err
	}
	return NewVersion(res.Version), nil
}

// CheckTxKey checks that the tx key of txid proves a payment to address.
// txid and txKey are hex strings without 0x.
func (c *Client) CheckTxKey(ctx context.Context, txid, txKey, address string) (*CheckTxKeyResult, error) {
	params := &checkTxKeyParams{
		TxId:    txid,
		TxKey:   txKey,
		Address: address,
	}

	var res CheckTxKeyResult
	if err := c.call(ctx, MethodCheckTxKey, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckProof implements agreement.ProofOracle.
func (c *Client) CheckProof(ctx context.Context, id agreement.RequestIdentity, receiveAddress string) (*agreement.ProofReport, error) {
	res, err := c.CheckTxKey(ctx,
		common.Bytes32ToPureHexStr(id.TxId),
		common.Bytes32ToPureHexStr(id.TxKey),
		receiveAddress,
	)
	if err != nil {
		return nil, err
	}

	return &agreement.ProofReport{
		InPool:        res.InPool,
		Confirmations: res.Confirmations,
		Received:      res.Received,
	}, nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	buf, err := json.Marshal(&rpcRequest{
		JSONRPC: "2.0",
		ID:      "0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.WithFields(logger.Fields{
			"method": method,
			"status": resp.StatusCode,
		}).Error("monero rpc request failed")
		return fmt.Errorf("%w: method=%s status=%d body=%s", ErrHTTPStatus, method, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("invalid monero rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		logger.WithField("method", method).Errorf("monero rpc error: %s", rpcResp.Error.Message)
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return ErrEmptyResult
	}

	return json.Unmarshal(rpcResp.Result, out)
}
