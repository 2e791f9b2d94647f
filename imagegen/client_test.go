package imagegen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{BaseURL: baseURL, Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func tuRequest() *Request {
	return &Request{
		Prompt:   "make it a figure",
		Mode:     ModeImageToImage,
		ImageURL: "https://cdn.example/cat.png",
		Width:    "1024",
		Height:   "1024",
		APIKey:   "sk-test",
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(ClientConfig{}, nil)
	require.NoError(t, err)
	cfg := c.Config()
	assert.Equal(t, DefaultClientConfig(), cfg)

	tr, ok := c.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, tr.MaxConnsPerHost)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
}

func TestNewClient_BadBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "ftp://example.com"}, nil)
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{BaseURL: "://nope"}, nil)
	assert.Error(t, err)
}

func TestClient_BuildURL(t *testing.T) {
	c := newTestClient(t, "https://missqiu.icu/API/Gemini.php")
	got := c.BuildURL(&Request{Prompt: "a b", Mode: ModeTextToImage, Width: "1024", Height: "512", APIKey: "k"})
	assert.Equal(t, "https://missqiu.icu/API/Gemini.php?text=a+b&width=1024&height=512&type=wen&tc=no&enhance=false&apikey=k", got)

	withQuery := newTestClient(t, "https://example.com/api?v=2")
	got = withQuery.BuildURL(&Request{Prompt: "p", Mode: ModeTextToImage, Width: "1", Height: "1"})
	assert.True(t, strings.HasPrefix(got, "https://example.com/api?v=2&text=p&"), got)
}

func TestClient_Generate_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "tu", q.Get("type"))
		assert.Equal(t, "https://cdn.example/cat.png", q.Get("url"))
		assert.Equal(t, "make it a figure", q.Get("text"))
		assert.Equal(t, "no", q.Get("tc"))
		assert.Equal(t, "false", q.Get("enhance"))
		assert.Equal(t, "sk-test", q.Get("apikey"))
		assert.True(t, strings.HasPrefix(r.URL.RawQuery, "text="))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	body, err := c.Generate(context.Background(), tuRequest())
	require.NoError(t, err)
	assert.Equal(t, pngBytes, body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Generate_NonOK(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusNoContent, http.StatusTooManyRequests} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(code)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Generate(context.Background(), tuRequest())
			require.Error(t, err)
			se, ok := AsStatusError(err)
			require.True(t, ok)
			assert.Equal(t, code, se.StatusCode)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_Generate_NetworkErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newTestClient(t, base).Generate(context.Background(), tuRequest())
	require.Error(t, err)
	_, isStatus := AsStatusError(err)
	assert.False(t, isStatus)
	assert.NotContains(t, err.Error(), "sk-test")
}

func TestClient_Generate_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv.URL).Generate(ctx, tuRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
}

func TestClient_Generate_InvalidRequestMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	req := tuRequest()
	req.ImageURL = ""
	_, err := newTestClient(t, srv.URL).Generate(context.Background(), req)
	assert.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Close(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	assert.False(t, c.Closed())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Close())
		}()
	}
	wg.Wait()
	assert.True(t, c.Closed())

	_, err := c.Generate(context.Background(), tuRequest())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_ConcurrentCallsShareOnePool(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, MaxConns: 3, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Generate(context.Background(), tuRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
