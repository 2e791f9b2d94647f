// MockGenerator 与 FakeUpstream 是图像上游的测试替身。
//
// MockGenerator 直接替换插件里的 Generator；FakeUpstream 起一个
// httptest 服务器，走真实的 imagegen.Client。
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/figurebot/imagegen"
)

// MockGenerator 是 figurine.Generator 的模拟实现
type MockGenerator struct {
	mu sync.Mutex

	body      []byte
	err       error
	panicWith any
	closeErr  error
	closePan  any
	fn        func(ctx context.Context, req *imagegen.Request) ([]byte, error)

	requests   []imagegen.Request
	calls      atomic.Int32
	closeCalls atomic.Int32
}

// NewMockGenerator 创建默认返回空图片的 MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// WithImage 设置成功时返回的字节
func (m *MockGenerator) WithImage(body []byte) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = body
	return m
}

// WithError 设置 Generate 返回的错误
func (m *MockGenerator) WithError(err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithStatus 让 Generate 返回 *imagegen.StatusError
func (m *MockGenerator) WithStatus(code int) *MockGenerator {
	return m.WithError(&imagegen.StatusError{StatusCode: code})
}

// WithPanic 让 Generate panic
func (m *MockGenerator) WithPanic(v any) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicWith = v
	return m
}

// WithCloseError 设置 Close 返回的错误
func (m *MockGenerator) WithCloseError(err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
	return m
}

// WithClosePanic 让 Close panic
func (m *MockGenerator) WithClosePanic(v any) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closePan = v
	return m
}

// WithFunc 用自定义函数处理 Generate
func (m *MockGenerator) WithFunc(fn func(ctx context.Context, req *imagegen.Request) ([]byte, error)) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Generate 记录请求并按配置返回
func (m *MockGenerator) Generate(ctx context.Context, req *imagegen.Request) ([]byte, error) {
	m.calls.Add(1)

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	body, err, p, fn := m.body, m.err, m.panicWith, m.fn
	m.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Close 记录调用次数
func (m *MockGenerator) Close() error {
	m.closeCalls.Add(1)

	m.mu.Lock()
	err, p := m.closeErr, m.closePan
	m.mu.Unlock()

	if p != nil {
		panic(p)
	}
	return err
}

// Calls 返回 Generate 调用次数
func (m *MockGenerator) Calls() int { return int(m.calls.Load()) }

// CloseCalls 返回 Close 调用次数
func (m *MockGenerator) CloseCalls() int { return int(m.closeCalls.Load()) }

// Requests 返回收到的请求副本
func (m *MockGenerator) Requests() []imagegen.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]imagegen.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest 返回最后一次请求
func (m *MockGenerator) LastRequest() (imagegen.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return imagegen.Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}
