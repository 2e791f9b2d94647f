package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/internal/tlsutil"
)

const instrumentationName = "github.com/BaSui01/figurebot/imagegen"

// ClientConfig 配置上游客户端。
type ClientConfig struct {
	BaseURL  string        `json:"base_url" yaml:"base_url"`
	MaxConns int           `json:"max_conns" yaml:"max_conns"`
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultClientConfig returns the MissQiu endpoint with a pool of 10.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:  "https://missqiu.icu/API/Gemini.php",
		MaxConns: 10,
		Timeout:  5 * time.Minute,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled client. The caller keeps ownership of
// its transport settings; Close still releases idle connections.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Client 是共享的上游会话：一个连接池，所有调用复用。
type Client struct {
	cfg    ClientConfig
	base   *url.URL
	http   *http.Client
	tracer trace.Tracer
	logger *zap.Logger

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewClient creates a client. Zero config fields take DefaultClientConfig
// values.
func NewClient(cfg ClientConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = def.MaxConns
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	c := &Client{
		cfg:    cfg,
		base:   base,
		http:   tlsutil.PooledHTTPClient(cfg.Timeout, cfg.MaxConns),
		tracer: otel.Tracer(instrumentationName),
		logger: logger.With(zap.String("component", "imagegen")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig { return c.cfg }

// BuildURL returns the full GET URL for req. Existing query parameters on the
// base URL are kept in front.
func (c *Client) BuildURL(req *Request) string {
	u := *c.base
	q := ParamsFor(req).Encode()
	if u.RawQuery != "" {
		q = u.RawQuery + "&" + q
	}
	u.RawQuery = q
	return u.String()
}

// Generate 发出一次 GET。200 返回响应体原始字节；非 200 返回 *StatusError；
// 其余失败返回包装后的传输错误。
func (c *Client) Generate(ctx context.Context, req *Request) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "imagegen.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("imagegen.mode", req.Mode.String()),
			attribute.String("server.address", c.base.Host),
			attribute.String("imagegen.width", req.Width),
			attribute.String("imagegen.height", req.Height),
		))
	defer span.End()

	body, err := c.do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("imagegen.response.bytes", len(body)))
	return body, nil
}

func (c *Client) do(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		// url.Error 会带上完整 URL，其中包含 apikey
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL, req.APIKey)
		}
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		// 排空响应体，连接才能回到池里
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	c.logger.Debug("upstream responded",
		zap.String("mode", req.Mode.String()),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

// Close releases the pooled connections. Only the first call has an effect;
// later calls and calls racing with it return nil.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.http.CloseIdleConnections()
		c.logger.Debug("client closed")
	})
	return nil
}

// Closed reports whether Close has run.
func (c *Client) Closed() bool { return c.closed.Load() }

func redact(s, apikey string) string {
	if apikey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(apikey), "***")
	return strings.ReplaceAll(s, apikey, "***")
}
