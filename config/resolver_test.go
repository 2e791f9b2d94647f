package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestResolver_NoSourceUsesDefaults(t *testing.T) {
	r := NewResolver(nil,
		NewExplicitSource(nil),
		NewLookupSource("FIGUREBOT", lookupMap(nil)),
		NewFileSource(filepath.Join(t.TempDir(), "missing.json")),
	)

	res := r.Resolve()
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, "1024", res.Settings.Width.String())
	assert.Equal(t, "1024", res.Settings.Height.String())
	assert.Equal(t, "", res.Settings.APIKey)
}

func TestResolver_PriorityOrder(t *testing.T) {
	file := writeFile(t, "figurine.json", `{"apikey":"from-file","width":640}`)
	env := lookupMap(map[string]string{"FIGUREBOT_APIKEY": "from-env"})

	tests := []struct {
		name       string
		sources    []Source
		wantSource string
		wantKey    string
		wantWidth  string
	}{
		{
			name: "explicit wins",
			sources: []Source{
				NewExplicitSource(map[string]any{"apikey": "from-explicit"}),
				NewLookupSource("FIGUREBOT", env),
				NewFileSource(file),
			},
			wantSource: SourceExplicit,
			wantKey:    "from-explicit",
			wantWidth:  "1024",
		},
		{
			name: "env when explicit is empty",
			sources: []Source{
				NewExplicitSource(map[string]any{}),
				NewLookupSource("FIGUREBOT", env),
				NewFileSource(file),
			},
			wantSource: SourceEnv,
			wantKey:    "from-env",
			wantWidth:  "1024",
		},
		{
			name: "file when env has nothing",
			sources: []Source{
				NewExplicitSource(nil),
				NewLookupSource("FIGUREBOT", lookupMap(nil)),
				NewFileSource(file),
			},
			wantSource: SourceFile,
			wantKey:    "from-file",
			wantWidth:  "640",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResolver(zap.NewNop(), tt.sources...).Resolve()
			assert.Equal(t, tt.wantSource, res.Source)
			assert.Equal(t, tt.wantKey, res.Settings.APIKey)
			assert.Equal(t, tt.wantWidth, res.Settings.Width.String())
			// 未提供的键回落到默认值
			assert.Equal(t, DefaultDimension, res.Settings.Height.String())
		})
	}
}

func TestResolver_BrokenJSONIsLoggedAndSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	file := writeFile(t, "figurine.json", `{"apikey": "k",`)

	res := NewResolver(zap.New(core),
		NewFileSource(file),
	).Resolve()

	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, DefaultSettings(), res.Settings)

	entries := logs.FilterMessage("settings source unusable, skipping").All()
	require.Len(t, entries, 1)
	assert.Equal(t, SourceFile, entries[0].ContextMap()["source"])
}

func TestResolver_FloatDimensionsFromFile(t *testing.T) {
	file := writeFile(t, "figurine.json", `{"apikey":"k","width":1024.0,"height":768.0}`)

	res := NewResolver(nil, NewFileSource(file)).Resolve()

	assert.Equal(t, SourceFile, res.Source)
	assert.Equal(t, Dimension("1024"), res.Settings.Width)
	assert.Equal(t, Dimension("768"), res.Settings.Height)
	assert.NoError(t, res.Settings.Validate())
}

func TestResolver_InvalidDimensionFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	file := writeFile(t, "figurine.json", `{"apikey":"k","width":"huge","height":-5}`)

	res := NewResolver(zap.New(core), NewFileSource(file)).Resolve()

	assert.Equal(t, SourceFile, res.Source)
	assert.Equal(t, "k", res.Settings.APIKey)
	assert.Equal(t, Dimension(DefaultDimension), res.Settings.Width)
	assert.Equal(t, Dimension(DefaultDimension), res.Settings.Height)
	assert.NoError(t, res.Settings.Validate())
	assert.Equal(t, 1, logs.FilterMessage("invalid dimensions replaced with defaults").Len())
}

func TestResolver_BrokenFileFallsThroughToDefaultSource(t *testing.T) {
	file := writeFile(t, "figurine.json", `not json`)
	res := NewResolver(nil, NewFileSource(file), DefaultSource{}).Resolve()
	assert.Equal(t, SourceDefault, res.Source)
}

func TestFileSource_YAML(t *testing.T) {
	file := writeFile(t, "figurine.yaml", "apikey: yaml-key\nheight: 2048\n")

	s, found, err := NewFileSource(file).Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "yaml-key", s.APIKey)
	assert.Equal(t, Dimension("2048"), s.Height)
	assert.Equal(t, Dimension(""), s.Width)
}

func TestFileSource_EmptyPath(t *testing.T) {
	_, found, err := NewFileSource("").Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExplicitSource_Types(t *testing.T) {
	s, found, err := NewExplicitSource(map[string]any{
		"API_KEY": " k ",
		"width":   float64(768),
		"height":  512,
		"ignored": "x",
	}).Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Settings{APIKey: "k", Width: "768", Height: "512"}, s)

	_, _, err = NewExplicitSource(map[string]any{"width": []int{1}}).Load()
	assert.Error(t, err)
}

func TestEnvSource_DotEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("FIGUREBOT_APIKEY=dotenv-key\nFIGUREBOT_WIDTH=800\n"), 0o600))

	t.Setenv("FIGUREBOT_WIDTH", "900")

	src := NewEnvSource("FIGUREBOT", filepath.Join(dir, "missing.env"), dotenv)
	s, found, err := src.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "dotenv-key", s.APIKey)
	// 进程环境变量优先于 .env
	assert.Equal(t, Dimension("900"), s.Width)
	assert.Equal(t, Dimension(""), s.Height)
}

func TestStandardSources(t *testing.T) {
	cfg := DefaultFigurineConfig()
	sources := StandardSources(cfg)
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{SourceExplicit, SourceEnv, SourceFile, SourceDefault}, names)
}

// Property: whatever prefix the env accessor uses, a chain without any
// populated source resolves to the documented defaults.
func TestProperty_EmptyChainResolvesToDefaults(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	missing := filepath.Join(t.TempDir(), "nope.json")

	properties.Property("defaults when nothing is configured", prop.ForAll(
		func(prefix string) bool {
			res := NewResolver(nil,
				NewExplicitSource(map[string]any{}),
				NewLookupSource(prefix, lookupMap(nil)),
				NewFileSource(missing),
			).Resolve()
			return res.Source == SourceDefault &&
				res.Settings.Width == "1024" &&
				res.Settings.Height == "1024" &&
				res.Settings.APIKey == ""
		},
		gen.Identifier(),
	))

	properties.Property("partial settings are completed with defaults", prop.ForAll(
		func(key string) bool {
			res := NewResolver(nil,
				NewExplicitSource(map[string]any{"apikey": "sk-" + key}),
			).Resolve()
			return res.Settings.APIKey == "sk-"+key &&
				res.Settings.Width == DefaultDimension &&
				res.Settings.Height == DefaultDimension &&
				res.Settings.Validate() == nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
