package figurine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/imagegen"
	"github.com/BaSui01/figurebot/internal/ctxkeys"
	"github.com/BaSui01/figurebot/internal/metrics"
	"github.com/BaSui01/figurebot/plugins"
	"github.com/BaSui01/figurebot/types"
)

// Plugin identity
const (
	PluginName        = "figurine"
	PluginVersion     = "1.3.0"
	PluginAuthor      = "cube"
	PluginDescription = "通过 MissQiu Gemini API 图生图生成手办化图片"
)

// Generator is the upstream call the plugin makes. *imagegen.Client is the
// production implementation.
type Generator interface {
	Generate(ctx context.Context, req *imagegen.Request) ([]byte, error)
	Close() error
}

// Recorder receives invocation metrics. *metrics.Collector implements it.
type Recorder interface {
	UpstreamStarted() (done func())
	RecordGeneration(mode, outcome string, duration time.Duration, imageSize int)
	RecordUpstreamStatus(code int)
}

type nopRecorder struct{}

func (nopRecorder) UpstreamStarted() func()                             { return func() {} }
func (nopRecorder) RecordGeneration(string, string, time.Duration, int) {}
func (nopRecorder) RecordUpstreamStatus(int)                            {}

// Option customizes a Plugin.
type Option func(*Plugin)

// WithName overrides the registry name, for hosts running several triggers.
func WithName(name string) Option {
	return func(p *Plugin) {
		if name != "" {
			p.name = name
		}
	}
}

// WithSources replaces the standard settings chain.
func WithSources(sources ...config.Source) Option {
	return func(p *Plugin) { p.sources = sources }
}

// WithGenerator makes Init use gen instead of building an imagegen.Client.
// The plugin still closes it on Shutdown.
func WithGenerator(gen Generator) Option {
	return func(p *Plugin) { p.newGenerator = func(config.Settings) (Generator, error) { return gen, nil } }
}

// WithClientOptions passes options to the imagegen.Client built at Init.
func WithClientOptions(opts ...imagegen.Option) Option {
	return func(p *Plugin) { p.clientOpts = append(p.clientOpts, opts...) }
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(p *Plugin) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithMessages overrides reply texts; empty fields keep their defaults.
func WithMessages(m Messages) Option {
	return func(p *Plugin) { p.messages = m.merge(p.messages) }
}

// WithPrompt replaces the fixed image-to-image prompt.
func WithPrompt(prompt string) Option {
	return func(p *Plugin) { p.prompt = prompt }
}

// runtime is what Init produces; it is swapped in and out atomically so the
// hot path never takes a lock.
type runtime struct {
	settings config.Settings
	source   string
	gen      Generator
}

// Plugin 是手办化插件。
type Plugin struct {
	name     string
	cfg      config.FigurineConfig
	trigger  Trigger
	messages Messages
	prompt   string
	sources  []config.Source
	recorder Recorder
	logger   *zap.Logger

	clientOpts   []imagegen.Option
	newGenerator func(config.Settings) (Generator, error)

	rt atomic.Pointer[runtime]
	mu sync.Mutex // serializes Init and Shutdown
}

var (
	_ plugins.Plugin           = (*Plugin)(nil)
	_ plugins.EventHandler     = (*Plugin)(nil)
	_ plugins.MetadataProvider = (*Plugin)(nil)
	_ Recorder                 = (*metrics.Collector)(nil)
	_ Generator                = (*imagegen.Client)(nil)
)

// New creates an uninitialized plugin for cfg.
func New(cfg config.FigurineConfig, logger *zap.Logger, opts ...Option) (*Plugin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := config.DefaultFigurineConfig()
	if cfg.TriggerMode == "" {
		cfg.TriggerMode = def.TriggerMode
	}
	if cfg.Keyword == "" {
		cfg.Keyword = def.Keyword
	}
	if cfg.Command == "" {
		cfg.Command = def.Command
	}
	if cfg.SettingsEnvPrefix == "" {
		cfg.SettingsEnvPrefix = def.SettingsEnvPrefix
	}

	p := &Plugin{
		name:     PluginName,
		cfg:      cfg,
		recorder: nopRecorder{},
		logger:   logger.With(zap.String("component", "figurine")),
	}
	mode := imagegen.ModeImageToImage
	if cfg.TriggerMode == config.TriggerModeCommand {
		mode = imagegen.ModeTextToImage
	}
	p.messages = DefaultMessages(mode, cfg.Keyword, cfg.Command)
	p.newGenerator = p.newClient

	for _, opt := range opts {
		opt(p)
	}

	trigger, err := NewTrigger(cfg, p.prompt)
	if err != nil {
		return nil, types.NewError(types.ErrConfigInvalid, "invalid figurine trigger").WithCause(err)
	}
	p.trigger = trigger
	if p.sources == nil {
		p.sources = config.StandardSources(cfg)
	}
	p.logger = p.logger.With(zap.String("plugin", p.name), zap.String("mode", trigger.Mode().String()))
	return p, nil
}

func (p *Plugin) newClient(config.Settings) (Generator, error) {
	return imagegen.NewClient(imagegen.ClientConfig{
		BaseURL:  p.cfg.Endpoint,
		MaxConns: p.cfg.MaxConns,
		Timeout:  p.cfg.Timeout,
	}, p.logger, p.clientOpts...)
}

func (p *Plugin) Name() string    { return p.name }
func (p *Plugin) Version() string { return PluginVersion }

// Metadata describes the plugin for the registry.
func (p *Plugin) Metadata() plugins.PluginMetadata {
	return plugins.PluginMetadata{
		Name:        p.name,
		Version:     PluginVersion,
		Description: PluginDescription,
		Author:      PluginAuthor,
		Tags:        []string{"image", "figurine", string(p.trigger.Mode())},
		Metadata: map[string]string{
			"trigger_mode": p.cfg.TriggerMode,
		},
	}
}

// Trigger returns the configured trigger.
func (p *Plugin) Trigger() Trigger { return p.trigger }

// Settings returns the resolved settings and the source they came from.
// ok is false before Init and after Shutdown.
func (p *Plugin) Settings() (settings config.Settings, source string, ok bool) {
	rt := p.rt.Load()
	if rt == nil {
		return config.Settings{}, "", false
	}
	return rt.settings, rt.source, true
}

// Init resolves settings and acquires the pooled upstream client. Calling
// Init on an initialized plugin is a no-op.
func (p *Plugin) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rt.Load() != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res := config.NewResolver(p.logger, p.sources...).Resolve()
	if err := res.Settings.Validate(); err != nil {
		return types.NewError(types.ErrConfigInvalid, "invalid figurine settings").WithCause(err)
	}
	if res.Settings.APIKey == "" {
		p.logger.Warn("apikey is empty, upstream calls will be anonymous")
	}

	gen, err := p.newGenerator(res.Settings)
	if err != nil {
		return types.NewError(types.ErrConfigInvalid, "create upstream client").WithCause(err)
	}

	p.rt.Store(&runtime{settings: res.Settings, source: res.Source, gen: gen})
	p.logger.Info("figurine plugin initialized",
		zap.String("settings_source", res.Source),
		zap.String("width", res.Settings.Width.String()),
		zap.String("height", res.Settings.Height.String()))
	return nil
}

// Shutdown releases the upstream client exactly once. Close errors and
// panics are logged and swallowed; Shutdown always returns nil.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rt := p.rt.Swap(nil)
	if rt == nil {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("panic while closing upstream client", zap.Any("panic", rec))
		}
	}()
	if err := rt.gen.Close(); err != nil {
		p.logger.Error("failed to close upstream client", zap.Error(err))
		return nil
	}
	p.logger.Info("figurine plugin shut down")
	return nil
}

// Match reports whether the event triggers this plugin.
func (p *Plugin) Match(event types.Event) bool {
	return p.trigger.Match(event)
}

// Handle runs one invocation and always returns exactly one result.
func (p *Plugin) Handle(ctx context.Context, event types.Event) (result types.Result) {
	mode := p.trigger.Mode()
	invocationID := uuid.NewString()
	ctx = ctxkeys.WithInvocationID(ctx, invocationID)
	logger := p.logger.With(zap.String("invocation_id", invocationID))
	if requestID, ok := ctxkeys.RequestID(ctx); ok {
		logger = logger.With(zap.String("request_id", requestID))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while handling event",
				zap.Any("panic", rec),
				zap.Stack("stack"))
			p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeFailure, 0, 0)
			result = types.PlainResult(p.messages.GenericFailure)
		}
	}()

	rt := p.rt.Load()
	if rt == nil {
		err := types.NewError(types.ErrPluginNotReady, "plugin is not initialized")
		logger.Error("handle called outside Init/Shutdown window", zap.Error(err))
		p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeFailure, 0, 0)
		return types.PlainResult(p.messages.GenericFailure)
	}

	// Validating
	input, rejection := p.trigger.Extract(event)
	switch rejection {
	case RejectNoImage:
		logger.Debug("event rejected: no image attached")
		p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeRejected, 0, 0)
		return types.PlainResult(p.messages.MissingImage)
	case RejectEmptyPrompt:
		logger.Debug("event rejected: empty prompt")
		p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeRejected, 0, 0)
		return types.PlainResult(p.messages.MissingPrompt)
	}

	// Requesting
	req := &imagegen.Request{
		Prompt:   input.Prompt,
		Mode:     mode,
		ImageURL: input.ImageURL,
		Width:    rt.settings.Width.String(),
		Height:   rt.settings.Height.String(),
		APIKey:   rt.settings.APIKey,
	}
	done := p.recorder.UpstreamStarted()
	start := time.Now()
	body, err := rt.gen.Generate(ctx, req)
	elapsed := time.Since(start)
	done()

	if err != nil {
		if se, ok := imagegen.AsStatusError(err); ok {
			logger.Warn("upstream returned non-200 response",
				zap.Int("status_code", se.StatusCode),
				zap.Duration("elapsed", elapsed))
			p.recorder.RecordUpstreamStatus(se.StatusCode)
			p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeStatus, elapsed, 0)
			return types.PlainResult(p.messages.statusFailure(se.StatusCode))
		}
		logger.Error("image generation failed",
			zap.Error(err),
			zap.Bool("canceled", errors.Is(err, context.Canceled)),
			zap.Duration("elapsed", elapsed))
		p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeFailure, elapsed, 0)
		return types.PlainResult(p.messages.GenericFailure)
	}

	p.recorder.RecordUpstreamStatus(200)
	p.recorder.RecordGeneration(mode.Label(), metrics.OutcomeSuccess, elapsed, len(body))
	logger.Info("image generated",
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed))
	return types.ImageResult(body)
}

// String implements fmt.Stringer for log fields.
func (p *Plugin) String() string {
	return fmt.Sprintf("%s@%s(%s)", p.name, PluginVersion, p.trigger.Mode())
}
