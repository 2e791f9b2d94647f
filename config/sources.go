package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source names
const (
	SourceExplicit = "explicit"
	SourceEnv      = "env"
	SourceFile     = "file"
	SourceDefault  = "default"
)

// Source is one link of the settings chain. Load reports found=false when
// the source has nothing to offer; an error means the source was present but
// unusable and the chain moves on.
type Source interface {
	Name() string
	Load() (settings Settings, found bool, err error)
}

// =============================================================================
// explicit: 宿主直接传入的配置对象
// =============================================================================

// ExplicitSource wraps a host-provided config object.
type ExplicitSource struct {
	values map[string]any
}

// NewExplicitSource creates a source over the given mapping.
func NewExplicitSource(values map[string]any) *ExplicitSource {
	return &ExplicitSource{values: values}
}

func (s *ExplicitSource) Name() string { return SourceExplicit }

func (s *ExplicitSource) Load() (Settings, bool, error) {
	if len(s.values) == 0 {
		return Settings{}, false, nil
	}
	var out Settings
	for key, raw := range s.values {
		v, err := scalarString(raw)
		if err != nil {
			return Settings{}, false, fmt.Errorf("key %q: %w", key, err)
		}
		switch strings.ToLower(key) {
		case "apikey", "api_key":
			out.APIKey = v
		case "width":
			out.Width = Dimension(v)
		case "height":
			out.Height = Dimension(v)
		}
	}
	return out, true, nil
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// =============================================================================
// env: 宿主 key/value 访问器（默认是进程环境变量 + 可选 .env 文件）
// =============================================================================

// LookupFunc resolves a single key, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvSource reads <PREFIX>_APIKEY, <PREFIX>_WIDTH and <PREFIX>_HEIGHT.
type EnvSource struct {
	prefix      string
	lookup      LookupFunc
	dotenvFiles []string
}

// NewEnvSource creates a source over the process environment. Values in the
// given .env files are used for keys the environment does not set.
func NewEnvSource(prefix string, dotenvFiles ...string) *EnvSource {
	return &EnvSource{prefix: prefix, lookup: os.LookupEnv, dotenvFiles: dotenvFiles}
}

// NewLookupSource creates an env source over an arbitrary accessor.
func NewLookupSource(prefix string, lookup LookupFunc) *EnvSource {
	return &EnvSource{prefix: prefix, lookup: lookup}
}

func (s *EnvSource) Name() string { return SourceEnv }

func (s *EnvSource) Load() (Settings, bool, error) {
	dotenv, err := s.readDotEnv()
	if err != nil {
		return Settings{}, false, err
	}

	get := func(suffix string) (string, bool) {
		key := suffix
		if s.prefix != "" {
			key = s.prefix + "_" + suffix
		}
		if v, ok := s.lookup(key); ok {
			return strings.TrimSpace(v), true
		}
		v, ok := dotenv[key]
		return strings.TrimSpace(v), ok
	}

	var out Settings
	found := false
	if v, ok := get("APIKEY"); ok {
		out.APIKey, found = v, true
	}
	if v, ok := get("WIDTH"); ok {
		out.Width, found = Dimension(v), true
	}
	if v, ok := get("HEIGHT"); ok {
		out.Height, found = Dimension(v), true
	}
	return out, found, nil
}

func (s *EnvSource) readDotEnv() (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range s.dotenvFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read dotenv %s: %w", path, err)
		}
		for k, v := range values {
			// 先出现的文件优先，与 godotenv.Load 语义一致
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// =============================================================================
// file: 磁盘上的 JSON（或 YAML）设置文件
// =============================================================================

// FileSource reads settings from a JSON file; .yaml/.yml files are parsed as
// YAML.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return SourceFile }

func (s *FileSource) Load() (Settings, bool, error) {
	if s.path == "" {
		return Settings{}, false, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, false, nil
		}
		return Settings{}, false, fmt.Errorf("read settings file: %w", err)
	}

	var out Settings
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("parse settings file %s: %w", s.path, err)
	}
	return out, true, nil
}

// =============================================================================
// default: 兜底
// =============================================================================

// DefaultSource always answers with DefaultSettings.
type DefaultSource struct{}

func (DefaultSource) Name() string { return SourceDefault }

func (DefaultSource) Load() (Settings, bool, error) {
	return DefaultSettings(), true, nil
}
