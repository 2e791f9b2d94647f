package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/figurebot/api/handlers"
	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/figurine"
	"github.com/BaSui01/figurebot/internal/metrics"
	"github.com/BaSui01/figurebot/internal/server"
	"github.com/BaSui01/figurebot/internal/telemetry"
	"github.com/BaSui01/figurebot/plugins"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是本地宿主：一个插件注册表加一个 HTTP 服务
type Server struct {
	cfg           *config.Config
	logger        *zap.Logger
	pluginOptions []figurine.Option

	// 测试时覆盖监听地址，例如 127.0.0.1:0
	addr string

	registry  *prometheus.Registry
	collector *metrics.Collector
	plugins   *plugins.PluginManager
	otel      *telemetry.Providers

	healthHandler *handlers.HealthHandler
	eventsHandler *handlers.EventsHandler

	httpManager *server.Manager
	ready       chan struct{}
	readyOnce   sync.Once
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, pluginOptions ...figurine.Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:           cfg,
		logger:        logger,
		pluginOptions: pluginOptions,
		ready:         make(chan struct{}),
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Run 初始化全部组件并阻塞，直到 ctx 结束或 HTTP 服务异常退出。
// 插件在每条退出路径上都会被关闭。
func (s *Server) Run(ctx context.Context) error {
	if err := s.setup(ctx); err != nil {
		s.teardown()
		return err
	}
	defer s.teardown()

	srvCfg := server.ConfigFrom(s.cfg.Server)
	if s.addr != "" {
		srvCfg.Addr = s.addr
	}

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	s.httpManager = server.NewManager(s.Handler(limiterCtx), srvCfg, s.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.httpManager.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.httpManager.Started():
			s.logger.Info("figurebot ready",
				zap.String("addr", s.httpManager.ListenAddr()),
				zap.Bool("tls", s.cfg.Server.TLSEnabled()),
			)
			s.readyOnce.Do(func() { close(s.ready) })
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Ready 在 HTTP 服务开始监听后关闭
func (s *Server) Ready() <-chan struct{} { return s.ready }

// ListenAddr 返回实际监听地址
func (s *Server) ListenAddr() string {
	if s.httpManager == nil {
		return ""
	}
	return s.httpManager.ListenAddr()
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// setup 初始化遥测、指标、插件与 handlers
func (s *Server) setup(ctx context.Context) error {
	providers, err := telemetry.Init(s.cfg.Telemetry, Version, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
		providers = &telemetry.Providers{}
	}
	s.otel = providers

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.collector = metrics.NewCollector(s.cfg.Server.MetricsNamespace, s.registry, s.logger)

	opts := append([]figurine.Option{figurine.WithRecorder(s.collector)}, s.pluginOptions...)
	plugin, err := figurine.New(s.cfg.Figurine, s.logger, opts...)
	if err != nil {
		return fmt.Errorf("create figurine plugin: %w", err)
	}

	registry := plugins.NewInMemoryPluginRegistry(s.logger)
	s.plugins = plugins.NewPluginManager(registry, s.logger)
	if err := s.plugins.Register(plugin); err != nil {
		return fmt.Errorf("register figurine plugin: %w", err)
	}
	if err := s.plugins.InitAll(ctx); err != nil {
		return err
	}

	s.healthHandler = handlers.NewHealthHandler(s.logger).WithVersion(Version)
	s.healthHandler.RegisterCheck(handlers.NewPluginHealthCheck(registry, plugin.Name()))
	s.eventsHandler = handlers.NewEventsHandler(s.plugins, s.logger)

	s.logger.Info("handlers initialized", zap.String("plugin", plugin.String()))
	return nil
}

// teardown 关闭插件与遥测，只记录错误
func (s *Server) teardown() {
	s.logger.Info("starting graceful shutdown")

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if s.plugins != nil {
		s.plugins.Close(timeout)
	}

	if s.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Error("telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("graceful shutdown completed")
}

// =============================================================================
// 🌐 路由
// =============================================================================

// Handler 构建完整的 HTTP 处理链。ctx 控制限流器的后台清理。
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()

	// 健康检查端点
	r.HandleFunc("/health", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthHandler.HandleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.healthHandler.HandleReady).Methods(http.MethodGet)
	r.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	})).Methods(http.MethodGet)

	// 事件 API
	limit := RateLimit(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.collector, s.logger)
	api := r.PathPrefix("/v1").Subrouter()
	api.Handle("/events", limit(http.HandlerFunc(s.eventsHandler.HandleEvent))).Methods(http.MethodPost)

	// 只作用于已匹配的路由
	r.Use(mux.MiddlewareFunc(OTelTracing()), mux.MiddlewareFunc(Metrics(s.collector)))

	return Chain(r,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
	)
}
