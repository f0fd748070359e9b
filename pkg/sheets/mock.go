package sheets

import (
	"context"
	"sync"
)

// Posted records one payload sent through MockClient.Post
type Posted struct {
	URL     string
	Payload []byte
}

// MockClient is a mock sheets client for testing
type MockClient struct {
	mu         sync.Mutex
	rows       []Row
	fetchErr   error
	postErrs   map[string]error
	fetchCalls int
	posted     []Posted
	block      chan struct{}
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithRows sets the rows returned by Fetch
func WithRows(rows []Row) MockOption {
	return func(m *MockClient) {
		m.rows = rows
	}
}

// WithFetchError sets an error to return from Fetch
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithPostError makes Post to url fail with err
func WithPostError(url string, err error) MockOption {
	return func(m *MockClient) {
		m.postErrs[url] = err
	}
}

// WithBlockingFetch makes Fetch wait until release is closed
func WithBlockingFetch(release chan struct{}) MockOption {
	return func(m *MockClient) {
		m.block = release
	}
}

// NewMockClient creates a new mock client with the given options
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{postErrs: make(map[string]error)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fetch returns the configured rows or error
func (m *MockClient) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	m.mu.Lock()
	m.fetchCalls++
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	rows := make([]Row, len(m.rows))
	copy(rows, m.rows)
	return &FetchResult{Rows: rows}, nil
}

// Post records the payload and returns the error configured for url
func (m *MockClient) Post(ctx context.Context, url string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, Posted{URL: url, Payload: append([]byte(nil), payload...)})
	return m.postErrs[url]
}

// SetRows replaces the rows returned by Fetch
func (m *MockClient) SetRows(rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

// SetFetchError replaces the error returned by Fetch
func (m *MockClient) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// FetchCalls returns how many times Fetch was called
func (m *MockClient) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// Posted returns every payload sent so far
func (m *MockClient) Posted() []Posted {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Posted, len(m.posted))
	copy(out, m.posted)
	return out
}

// Ensure implementations satisfy the interface
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
