package plugins

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/types"
)

// PluginManager is the host-facing layer over PluginRegistry: it registers
// plugins at startup, initializes them, routes events and tears everything
// down on exit.
type PluginManager struct {
	registry PluginRegistry
	logger   *zap.Logger
}

// NewPluginManager creates a PluginManager backed by the given registry.
func NewPluginManager(registry PluginRegistry, logger *zap.Logger) *PluginManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginManager{
		registry: registry,
		logger:   logger.With(zap.String("component", "plugin_manager")),
	}
}

// Register adds a plugin to the underlying registry. If the plugin
// implements MetadataProvider, its metadata is used automatically;
// otherwise a minimal metadata is derived from Name() and Version().
func (m *PluginManager) Register(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("plugin must not be nil")
	}
	return m.registry.Register(plugin, ExtractMetadata(plugin))
}

// RegisterWithMetadata adds a plugin with explicit metadata.
func (m *PluginManager) RegisterWithMetadata(plugin Plugin, meta PluginMetadata) error {
	return m.registry.Register(plugin, meta)
}

// InitAll initializes all registered plugins via the underlying registry.
func (m *PluginManager) InitAll(ctx context.Context) error {
	m.logger.Info("initializing all plugins")
	if err := m.registry.InitAll(ctx); err != nil {
		return fmt.Errorf("plugin manager: init all: %w", err)
	}
	m.logger.Info("all plugins initialized", zap.Int("count", len(m.registry.List())))
	return nil
}

// ShutdownAll shuts down all initialized plugins via the underlying registry.
func (m *PluginManager) ShutdownAll(ctx context.Context) error {
	m.logger.Info("shutting down all plugins")
	if err := m.registry.ShutdownAll(ctx); err != nil {
		return fmt.Errorf("plugin manager: shutdown all: %w", err)
	}
	m.logger.Info("all plugins shut down")
	return nil
}

// Close runs ShutdownAll bounded by timeout and only logs failures. It is
// meant for defer on every exit path of the host.
func (m *PluginManager) Close(timeout time.Duration) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := m.ShutdownAll(ctx); err != nil {
		m.logger.Warn("plugin shutdown finished with errors", zap.Error(err))
	}
}

// Dispatch forwards an event to the matching plugins.
func (m *PluginManager) Dispatch(ctx context.Context, event types.Event) []Dispatched {
	return m.registry.Dispatch(ctx, event)
}

// Registry returns the underlying PluginRegistry.
func (m *PluginManager) Registry() PluginRegistry {
	return m.registry
}
