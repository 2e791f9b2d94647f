// Package figurebot provides a top-level convenience entry point for creating
// the figurine plugin with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/figurebot"
//
//	p, err := figurebot.New(logger)
//	if err != nil { ... }
//	if err := p.Init(ctx); err != nil { ... }
//	defer p.Shutdown(ctx)
//	res := p.Handle(ctx, &types.Message{Text: "手办化", ImageURLs: urls})
//
// This is a thin wrapper around [figurine.New] with [config.DefaultFigurineConfig].
// Use the figurine package directly when the deployment config comes from a file.
package figurebot

import (
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/figurine"
)

// Option configures the plugin created by [New].
type Option = figurine.Option

// New creates a pattern-mode figurine plugin with default deployment config.
// Settings are resolved at Init from the environment and figurine.json.
func New(logger *zap.Logger, opts ...Option) (*figurine.Plugin, error) {
	return figurine.New(config.DefaultFigurineConfig(), logger, opts...)
}

// NewCommand creates a command-mode plugin answering "/draw <prompt>".
func NewCommand(logger *zap.Logger, opts ...Option) (*figurine.Plugin, error) {
	cfg := config.DefaultFigurineConfig()
	cfg.TriggerMode = config.TriggerModeCommand
	return figurine.New(cfg, logger, opts...)
}

// Re-export option shortcuts so callers rarely need to import figurine/.

// WithGenerator replaces the HTTP image client.
var WithGenerator = figurine.WithGenerator

// WithSources replaces the settings resolution chain.
var WithSources = figurine.WithSources

// WithClientOptions passes options to the HTTP image client.
var WithClientOptions = figurine.WithClientOptions
