package plugins

import (
	"context"

	"github.com/BaSui01/figurebot/types"
)

// PluginState represents the lifecycle state of a plugin.
type PluginState string

const (
	PluginStateRegistered  PluginState = "registered"
	PluginStateInitialized PluginState = "initialized"
	PluginStateFailed      PluginState = "failed"
	PluginStateShutdown    PluginState = "shutdown"
)

// Plugin defines a pluggable extension point for the bot host.
type Plugin interface {
	// Name returns the unique plugin name.
	Name() string
	// Version returns the plugin version string.
	Version() string
	// Init initializes the plugin. Called after registration.
	Init(ctx context.Context) error
	// Shutdown gracefully shuts down the plugin.
	Shutdown(ctx context.Context) error
}

// EventHandler is implemented by plugins that react to inbound chat events.
type EventHandler interface {
	// Match reports whether the event triggers this plugin.
	Match(event types.Event) bool
	// Handle processes a matched event. It always yields exactly one result
	// and never panics out to the caller.
	Handle(ctx context.Context, event types.Event) types.Result
}

// MetadataProvider is implemented by plugins that describe themselves.
type MetadataProvider interface {
	Metadata() PluginMetadata
}

// PluginMetadata holds descriptive information about a plugin.
type PluginMetadata struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Author      string            `json:"author,omitempty"`
	Repository  string            `json:"repository,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PluginInfo bundles a plugin instance with its metadata and current state.
type PluginInfo struct {
	Plugin   Plugin         `json:"-"`
	Metadata PluginMetadata `json:"metadata"`
	State    PluginState    `json:"state"`
}

// ExtractMetadata returns the plugin's own metadata when it implements
// MetadataProvider, otherwise a minimal one derived from Name and Version.
func ExtractMetadata(plugin Plugin) PluginMetadata {
	if mp, ok := plugin.(MetadataProvider); ok {
		meta := mp.Metadata()
		if meta.Name == "" {
			meta.Name = plugin.Name()
		}
		if meta.Version == "" {
			meta.Version = plugin.Version()
		}
		return meta
	}
	return PluginMetadata{
		Name:    plugin.Name(),
		Version: plugin.Version(),
	}
}
