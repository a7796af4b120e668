// This is a http type of reporter.
// It fetches data from the request store, the watermark and the
// settlement journal and publishes it on the http routes. Read-only.

package reporter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/xmr-bridge-go/agreement"
	"github.com/TEENet-io/xmr-bridge-go/common"
	"github.com/TEENet-io/xmr-bridge-go/ethtxmanager"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	ROUTE_HELLO       = "/hello"
	ROUTE_PENDING     = "/pending"
	ROUTE_PROCESSED   = "/processed"
	ROUTE_WATERMARK   = "/watermark"
	ROUTE_SETTLEMENTS = "/settlements"
	ROUTE_METRICS     = "/metrics"
)

const shutdownTimeout = 5 * time.Second

type RequestReader interface {
	ListPending() ([]*agreement.PendingRecord, error)
	ListProcessed() ([]agreement.RequestIdentity, error)
}

// WatermarkReader never initializes the watermark, the reconciler does.
type WatermarkReader interface {
	Peek() (uint64, bool, error)
}

type SettlementReader interface {
	GetSettlements() ([]*ethtxmanager.Settlement, error)
	GetSettlementsByTxKey(txKey ethcommon.Hash) ([]*ethtxmanager.Settlement, error)
}

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream data sources
	requests    RequestReader
	watermark   WatermarkReader
	settlements SettlementReader
	gatherer    prometheus.Gatherer // nil disables /metrics
}

func NewHttpReporter(
	serverIP string,
	serverPort string,
	requests RequestReader,
	watermark WatermarkReader,
	settlements SettlementReader,
	gatherer prometheus.Gatherer,
) *HttpReporter {
	return &HttpReporter{
		serverIP:    serverIP,
		serverPort:  serverPort,
		requests:    requests,
		watermark:   watermark,
		settlements: settlements,
		gatherer:    gatherer,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_PENDING, h.Pending)
	router.GET(ROUTE_PROCESSED, h.Processed)
	router.GET(ROUTE_WATERMARK, h.Watermark)
	router.GET(ROUTE_SETTLEMENTS, h.Settlements)
	if h.gatherer != nil {
		router.GET(ROUTE_METRICS, gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

func (h *HttpReporter) Address() string {
	return h.serverIP + ":" + h.serverPort
}

// Run serves until ctx is cancelled.
func (h *HttpReporter) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    h.Address(),
		Handler: h.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", srv.Addr).Info("starting http reporter")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("stopped http reporter")
	return nil
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

func (h *HttpReporter) Pending(c *gin.Context) {
	records, err := h.requests.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([]*jsonPending, 0, len(records))
	for _, rec := range records {
		data = append(data, new(jsonPending).encode(rec))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *HttpReporter) Processed(c *gin.Context) {
	ids, err := h.requests.ListProcessed()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([]*jsonIdentity, 0, len(ids))
	for _, id := range ids {
		data = append(data, new(jsonIdentity).encode(id))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Watermark reports null until the first tick stored one.
func (h *HttpReporter) Watermark(c *gin.Context) {
	height, ok, err := h.watermark.Peek()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"watermark": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watermark": height})
}

// Settlements lists the journaled confirmMint txs, optionally filtered by
// tx_key.
func (h *HttpReporter) Settlements(c *gin.Context) {
	var (
		list []*ethtxmanager.Settlement
		err  error
	)

	if txKeyStr := c.Query("tx_key"); txKeyStr != "" {
		txKey, perr := common.ParseBytes32(txKeyStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		list, err = h.settlements.GetSettlementsByTxKey(txKey)
	} else {
		list, err = h.settlements.GetSettlements()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([]*jsonSettlement, 0, len(list))
	for _, st := range list {
		data = append(data, new(jsonSettlement).encode(st))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
