// Reader is a testing facility to read the output of a http reporter.

package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
	}
}

func (hr *HttpReader) GetHello() (string, error) {
	return hr.get(ROUTE_HELLO)
}

func (hr *HttpReader) GetPending() (string, error) {
	return hr.get(ROUTE_PENDING)
}

func (hr *HttpReader) GetProcessed() (string, error) {
	return hr.get(ROUTE_PROCESSED)
}

func (hr *HttpReader) GetSettlements(txKey string) (string, error) {
	route := ROUTE_SETTLEMENTS
	if txKey != "" {
		route += "?tx_key=" + url.QueryEscape(txKey)
	}
	return hr.get(route)
}

// GetWatermark returns false when the bridge has not stored a watermark yet.
func (hr *HttpReader) GetWatermark() (uint64, bool, error) {
	body, err := hr.get(ROUTE_WATERMARK)
	if err != nil {
		return 0, false, err
	}

	var resp struct {
		Watermark *uint64 `json:"watermark"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return 0, false, err
	}
	if resp.Watermark == nil {
		return 0, false, nil
	}
	return *resp.Watermark, true, nil
}

func (hr *HttpReader) get(route string) (string, error) {
	target := "http://" + hr.serverIP + ":" + hr.serverPort + route

	resp, err := http.Get(target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return string(body), fmt.Errorf("%s returned status %d", route, resp.StatusCode)
	}

	// Convert the body to a string
	return string(body), nil
}
