// =============================================================================
// 🔭 figurebot 遥测初始化
// =============================================================================
// 关闭时什么也不建，全局 provider 保持 noop；开启时通过 OTLP gRPC 导出
// trace 与 metric。imagegen 的上游 span 和宿主 HTTP span 都走这里装好的
// 全局 TracerProvider。
// =============================================================================

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
)

// Providers 持有 SDK 的 provider；遥测关闭时两者都为 nil。
type Providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init 按配置安装全局 provider。version 为空时取模块构建版本。
func Init(cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "telemetry"))

	if !cfg.Enabled {
		logger.Info("telemetry disabled")
		return &Providers{}, nil
	}
	sampler, err := newSampler(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = buildVersion()
	}

	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp, mp, err := newProviders(ctx, cfg.OTLPEndpoint, res, sampler)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("telemetry enabled",
		zap.String("otlp_endpoint", cfg.OTLPEndpoint),
		zap.String("service", cfg.ServiceName),
		zap.String("version", version),
		zap.String("sampler", sampler.Description()),
	)
	return &Providers{tp: tp, mp: mp}, nil
}

// newSampler 父 span 已采样则跟随，根 span 按比例采样
func newSampler(rate float64) (sdktrace.Sampler, error) {
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("telemetry sample rate must be within [0, 1], got %v", rate)
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate)), nil
}

func newProviders(ctx context.Context, endpoint string, res *resource.Resource, sampler sdktrace.Sampler) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	traceExp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	metricExp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = traceExp.Shutdown(ctx)
		return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	return tp, mp, nil
}

// Enabled 表示是否装了真实的 SDK provider
func (p *Providers) Enabled() bool {
	return p != nil && p.tp != nil
}

// Shutdown 刷出未导出的数据并关闭 exporter；nil 或关闭状态下直接返回。
func (p *Providers) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	var errs []error
	if err := p.tp.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider: %w", err))
	}
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// buildVersion 读取模块版本，开发构建返回 "dev"
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
