// Package plugins provides the plugin registry that hosts figurebot's chat
// plugins.
//
// It defines the Plugin interface for lifecycle management (Init/Shutdown),
// the EventHandler interface for plugins that answer inbound chat events,
// and the PluginRegistry interface for registration, discovery, search and
// event dispatch. InMemoryPluginRegistry is the default thread-safe
// implementation.
//
// Usage:
//
//	registry := plugins.NewInMemoryPluginRegistry(logger)
//	registry.Register(myPlugin, plugins.PluginMetadata{Name: "my-plugin", Version: "1.0.0"})
//	registry.InitAll(ctx)
//	defer registry.ShutdownAll(ctx)
//	results := registry.Dispatch(ctx, event)
package plugins
