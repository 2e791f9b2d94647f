package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPlaceholderAPIKey is returned when the apikey is a template literal
// rather than a real secret.
var ErrPlaceholderAPIKey = errors.New("apikey looks like a placeholder")

// Settings 是插件的运行参数，Init 时解析一次，之后只读。
type Settings struct {
	APIKey string    `json:"apikey" yaml:"apikey"`
	Width  Dimension `json:"width" yaml:"width"`
	Height Dimension `json:"height" yaml:"height"`
}

// Dimension is an image edge length. Sources may write it as a string or a
// number; it is always carried as the decimal string sent upstream.
type Dimension string

// UnmarshalJSON accepts both "1024" and 1024.
func (d *Dimension) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = normalizeDimension(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("dimension must be a string or number: %w", err)
	}
	*d = normalizeDimension(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (d *Dimension) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("dimension must be a scalar, got yaml kind %d", node.Kind)
	}
	*d = normalizeDimension(node.Value)
	return nil
}

// normalizeDimension writes integral numbers such as "1024.0" or "1e3" in
// integer form. Anything else is kept as given and left to Validate.
func normalizeDimension(v string) Dimension {
	v = strings.TrimSpace(v)
	if _, err := strconv.Atoi(v); err == nil {
		return Dimension(v)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return Dimension(v)
	}
	return Dimension(strconv.FormatInt(int64(f), 10))
}

// Valid reports whether d is a positive integer.
func (d Dimension) Valid() bool {
	n, err := strconv.Atoi(string(d))
	return err == nil && n > 0
}

// String returns the dimension as sent upstream.
func (d Dimension) String() string { return string(d) }

// withDefaults fills the keys a source left unset and replaces dimensions
// that are not positive integers. The names of replaced keys are returned.
func (s Settings) withDefaults() (Settings, []string) {
	def := DefaultSettings()
	var replaced []string
	s.Width = normalizeDimension(string(s.Width))
	s.Height = normalizeDimension(string(s.Height))
	if s.Width == "" {
		s.Width = def.Width
	} else if !s.Width.Valid() {
		replaced = append(replaced, "width="+string(s.Width))
		s.Width = def.Width
	}
	if s.Height == "" {
		s.Height = def.Height
	} else if !s.Height.Valid() {
		replaced = append(replaced, "height="+string(s.Height))
		s.Height = def.Height
	}
	return s, replaced
}

// placeholderAPIKey matches template values shipped in sample configs.
var placeholderAPIKey = regexp.MustCompile(
	`(?i)^(<[^>]*>|\{\{?[^}]*\}?\}|\$\{[^}]*\}|your[-_ ]?(api)?[-_ ]?key.*|api[-_ ]?key|changeme|change[-_ ]me|replace[-_ ]?me|placeholder|todo|x{3,}|\*{3,}|请?填写.*|替换.*)$`,
)

// Validate 校验参数：占位符 apikey 视为配置错误，宽高必须是正整数。
// 空 apikey 是合法的（调用方自行告警）。
func (s Settings) Validate() error {
	if key := strings.TrimSpace(s.APIKey); key != "" && placeholderAPIKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrPlaceholderAPIKey, key)
	}
	if err := validDimension("width", s.Width); err != nil {
		return err
	}
	return validDimension("height", s.Height)
}

func validDimension(name string, v Dimension) error {
	if !v.Valid() {
		return fmt.Errorf("%s must be a positive integer, got %q", name, v)
	}
	return nil
}

// Redacted returns a copy safe for logging.
func (s Settings) Redacted() Settings {
	if s.APIKey != "" {
		s.APIKey = "***"
	}
	return s
}
