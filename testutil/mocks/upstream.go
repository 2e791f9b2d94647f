package mocks

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
)

// FakeUpstream 模拟 MissQiu Gemini 接口
type FakeUpstream struct {
	*httptest.Server

	mu      sync.Mutex
	status  int
	body    []byte
	queries []url.Values
	calls   atomic.Int32
}

// NewFakeUpstream 启动服务器，测试结束时自动关闭
func NewFakeUpstream(t testing.TB) *FakeUpstream {
	t.Helper()
	u := &FakeUpstream{status: http.StatusOK}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Server.Close)
	return u
}

// Respond 设置后续请求的状态码与响应体
func (u *FakeUpstream) Respond(status int, body []byte) *FakeUpstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
	u.body = body
	return u
}

func (u *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)

	u.mu.Lock()
	u.queries = append(u.queries, r.URL.Query())
	status, body := u.status, u.body
	u.mu.Unlock()

	if status == http.StatusOK {
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Calls 返回收到的请求数
func (u *FakeUpstream) Calls() int { return int(u.calls.Load()) }

// LastQuery 返回最后一次请求的 query
func (u *FakeUpstream) LastQuery() url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.queries) == 0 {
		return nil
	}
	return u.queries[len(u.queries)-1]
}
