package gateways

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
)

func newTestDownloader(retries int) *HTTPDownloader {
	cfg := entities.DownloadConfig{
		Timeout:    10 * time.Second,
		MaxRetries: retries,
		UserAgent:  "pbs-scraper-test",
	}
	return NewDownloader(cfg, &interfaces.NoOpLogger{}, WithRetryInterval(time.Millisecond))
}

func TestDownloader_ComputeSHA256(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pbs-scraper-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("abc"))
	}))
	defer server.Close()

	sum, err := newTestDownloader(0).ComputeSHA256(context.Background(), server.URL+"/asset.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func TestDownloader_ComputeSHA256_LargeBody(t *testing.T) {
	// Spans many hash chunks
	body := make([]byte, 3*hashChunkSize+17)
	for i := range body {
		body[i] = byte(i % 251)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer server.Close()

	got, err := newTestDownloader(0).ComputeSHA256(context.Background(), server.URL)
	require.NoError(t, err)

	want, _, err := HashReader(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDownloader_FetchText_Trims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  deadbeef\n\n"))
	}))
	defer server.Close()

	text, err := newTestDownloader(0).FetchText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", text)
}

func TestDownloader_RetriesTransientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("abc"))
	}))
	defer server.Close()

	sum, err := newTestDownloader(3).ComputeSHA256(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownloader_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestDownloader(2).FetchText(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownloader_NotFoundIsPermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestDownloader(3).ComputeSHA256(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDownloader_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("abc"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDownloader(3).ComputeSHA256(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	for _, code := range []int{403, 429, 500, 502, 503, 504} {
		assert.True(t, isRetryableError(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 404, 422} {
		assert.False(t, isRetryableError(code), "status %d", code)
	}
}
