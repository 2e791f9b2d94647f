package imagegen

import (
	"fmt"
	"net/url"
	"strings"
)

// Mode 是上游接口的 type 参数。
type Mode string

const (
	// ModeImageToImage 图生图，需要 Request.ImageURL。
	ModeImageToImage Mode = "tu"
	// ModeTextToImage 文生图。
	ModeTextToImage Mode = "wen"
)

// String returns the wire value.
func (m Mode) String() string { return string(m) }

// Label returns a metric-friendly name for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeImageToImage:
		return "image_to_image"
	case ModeTextToImage:
		return "text_to_image"
	default:
		return "unknown"
	}
}

// Request 描述一次生成调用。
type Request struct {
	Prompt   string `json:"prompt"`
	Mode     Mode   `json:"mode"`
	ImageURL string `json:"image_url,omitempty"`
	Width    string `json:"width"`
	Height   string `json:"height"`
	APIKey   string `json:"-"`
}

// Validate checks the fields the upstream cannot do without.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	switch r.Mode {
	case ModeImageToImage:
		if strings.TrimSpace(r.ImageURL) == "" {
			return fmt.Errorf("image url is required for mode %q", r.Mode)
		}
	case ModeTextToImage:
	default:
		return fmt.Errorf("unsupported mode %q", r.Mode)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

// Param is one query key/value.
type Param struct {
	Key   string
	Value string
}

// Params 是按上游要求顺序排列的 query 参数。
type Params []Param

// ParamsFor builds text, width, height, type, url, tc, enhance, apikey in that
// order. url is only present for image-to-image.
func ParamsFor(r *Request) Params {
	p := Params{
		{"text", r.Prompt},
		{"width", r.Width},
		{"height", r.Height},
		{"type", r.Mode.String()},
	}
	if r.Mode == ModeImageToImage {
		p = append(p, Param{"url", r.ImageURL})
	}
	return append(p,
		Param{"tc", "no"},
		Param{"enhance", "false"},
		Param{"apikey", r.APIKey},
	)
}

// Encode form-encodes the params without reordering them (url.Values.Encode
// sorts by key). Spaces become '+'.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}
