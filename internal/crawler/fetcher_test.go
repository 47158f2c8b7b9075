package crawler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockCacheService is an in-memory cache.CacheService for testing
type mockCacheService struct {
	data map[string][]byte
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{data: make(map[string][]byte)}
}

func (m *mockCacheService) Get(key string) ([]byte, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, io.EOF
}

func (m *mockCacheService) Set(key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheService) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestPageFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(testSourceConfig(), newMockCacheService())
	body, err := fetcher.Fetch(server.URL)
	assert.NoError(t, err)

	markup, err := io.ReadAll(body)
	assert.NoError(t, err)
	assert.Contains(t, string(markup), "ok")
}

func TestPageFetcherBlocksAfterRateLimit(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testSourceConfig()
	cfg.BlockTime = time.Minute
	fetcher := NewPageFetcher(cfg, newMockCacheService())

	_, err := fetcher.Fetch(server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())

	// the block marker short-circuits the next fetch
	_, err = fetcher.Fetch(server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestPageFetcherWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	cfg := testSourceConfig()
	cfg.CacheKey = ""
	fetcher := NewPageFetcher(cfg, nil)

	_, err := fetcher.Fetch(server.URL)
	assert.NoError(t, err)
}
