// Package sheets provides a client for spreadsheet-backed web apps that serve
// reference rows on GET and accept entry submissions on POST.
package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/fibertrack/deployform/internal/logger"
)

// ErrNoData is returned when a fetch response has neither data nor an error
var ErrNoData = errors.New("response contained no data")

// ErrInvalidResponse is returned when a fetch response is not a JSON object
var ErrInvalidResponse = errors.New("invalid JSON response")

// TransportError wraps a failure to reach the web app at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-success HTTP status
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// RemoteError carries the message of an {"error": ...} envelope
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Row is one reference row as served by the web app. Every cell is kept as
// text; numbers keep their literal JSON spelling.
type Row struct {
	City       string
	Ring       string
	Fdt        string
	Activity   string
	PrimaryBoq string
	Boq        string
	Completed  string
	Remaining  string
	Notes      string
}

// FetchResult is a successfully parsed data envelope
type FetchResult struct {
	Rows []Row
}

// Client defines the interface for spreadsheet web app operations
type Client interface {
	// Fetch retrieves the reference rows served at url
	Fetch(ctx context.Context, url string) (*FetchResult, error)
	// Post sends one JSON payload to url as text/plain
	Post(ctx context.Context, url string, payload []byte) error
}

// HTTPClient is a real HTTP client for spreadsheet web apps
type HTTPClient struct {
	httpClient *retryablehttp.Client
	log        logger.Logger
}

// NewHTTPClient creates a client with retries and a 30 second per-attempt timeout
func NewHTTPClient(log logger.Logger) *HTTPClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = log
	return NewHTTPClientWithRetryClient(rc, log)
}

// NewHTTPClientWithRetryClient creates a client around a preconfigured retryablehttp client.
// Without an ErrorHandler the last response is passed through once retries run
// out, so callers still see its status.
func NewHTTPClientWithRetryClient(rc *retryablehttp.Client, log logger.Logger) *HTTPClient {
	if rc.ErrorHandler == nil {
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	}
	return &HTTPClient{
		httpClient: rc,
		log:        log,
	}
}

// Fetch retrieves and parses the data envelope served at url
func (c *HTTPClient) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	c.log.Debug("Sheets request", "method", "GET", "url", url)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return ParseEnvelope(body)
}

// Post sends payload to url. Web apps reply with arbitrary bodies, so only
// the status is checked.
func (c *HTTPClient) Post(ctx context.Context, url string, payload []byte) error {
	c.log.Debug("Sheets request", "method", "POST", "url", url, "bytes", len(payload))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	_, err = c.do(req)
	return err
}

func (c *HTTPClient) do(req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.log.Debug("Sheets response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return body, nil
}

// ParseEnvelope decodes a {"data": [...]} or {"error": "..."} document.
// Rows are read loosely: keys are matched exactly, scalar values of any JSON
// type are kept as text, and anything else becomes empty.
func ParseEnvelope(body []byte) (*FetchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidResponse
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, ErrInvalidResponse
	}

	data := doc.Get("data")
	if data.IsArray() {
		result := &FetchResult{Rows: make([]Row, 0, len(data.Array()))}
		data.ForEach(func(_, value gjson.Result) bool {
			result.Rows = append(result.Rows, parseRow(value))
			return true
		})
		return result, nil
	}

	if msg := doc.Get("error"); msg.Exists() && scalar(msg) != "" {
		return nil, &RemoteError{Message: scalar(msg)}
	}
	return nil, ErrNoData
}

func parseRow(v gjson.Result) Row {
	if !v.IsObject() {
		return Row{}
	}
	cells := make(map[string]string)
	v.ForEach(func(key, value gjson.Result) bool {
		cells[key.String()] = scalar(value)
		return true
	})

	primary := cells["primaryBoq"]
	if primary == "" {
		primary = cells["Primary BOQ"]
	}

	return Row{
		City:       cells["city"],
		Ring:       cells["ring"],
		Fdt:        cells["fdt"],
		Activity:   cells["activity"],
		PrimaryBoq: primary,
		Boq:        cells["boq"],
		Completed:  cells["completed"],
		Remaining:  cells["remaining"],
		Notes:      cells["notes"],
	}
}

// scalar renders a string, number or boolean cell as text
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	case gjson.True, gjson.False:
		return v.String()
	default:
		return ""
	}
}
