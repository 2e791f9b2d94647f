package config

import (
	"go.uber.org/zap"
)

// Resolution is the outcome of walking the settings chain.
type Resolution struct {
	Settings Settings
	// Source is the name of the source that won.
	Source string
}

// Resolver walks an ordered list of sources and keeps the first one that
// has settings. Missing or invalid dimensions fall back to DefaultSettings;
// a failing source is logged and skipped.
type Resolver struct {
	sources []Source
	logger  *zap.Logger
}

// NewResolver creates a resolver over sources in priority order.
func NewResolver(logger *zap.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		sources: sources,
		logger:  logger.With(zap.String("component", "settings_resolver")),
	}
}

// StandardSources builds the explicit → env → file → default chain from the
// plugin deployment config.
func StandardSources(cfg FigurineConfig) []Source {
	return []Source{
		NewExplicitSource(cfg.Settings),
		NewEnvSource(cfg.SettingsEnvPrefix, cfg.DotEnvFiles...),
		NewFileSource(cfg.SettingsFile),
		DefaultSource{},
	}
}

// Resolve never fails: with no usable source it returns the defaults.
func (r *Resolver) Resolve() Resolution {
	for _, src := range r.sources {
		settings, found, err := src.Load()
		if err != nil {
			r.logger.Warn("settings source unusable, skipping",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}
		if !found {
			r.logger.Debug("settings source empty", zap.String("source", src.Name()))
			continue
		}
		settings, replaced := settings.withDefaults()
		if len(replaced) > 0 {
			r.logger.Warn("invalid dimensions replaced with defaults",
				zap.String("source", src.Name()),
				zap.Strings("values", replaced))
		}
		r.logger.Info("settings resolved",
			zap.String("source", src.Name()),
			zap.String("width", settings.Width.String()),
			zap.String("height", settings.Height.String()),
			zap.Bool("apikey_set", settings.APIKey != ""))
		return Resolution{Settings: settings, Source: src.Name()}
	}

	r.logger.Info("no settings source available, using defaults")
	return Resolution{Settings: DefaultSettings(), Source: SourceDefault}
}
