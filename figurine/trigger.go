package figurine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/imagegen"
	"github.com/BaSui01/figurebot/types"
)

// Input is what a trigger extracted from an accepted event.
type Input struct {
	Prompt   string
	ImageURL string
}

// Rejection names why an event carried no usable input.
type Rejection int

const (
	Accepted Rejection = iota
	RejectNoImage
	RejectEmptyPrompt
)

// Trigger decides whether an event is for this plugin and pulls the request
// input out of it.
type Trigger interface {
	Mode() imagegen.Mode
	Match(event types.Event) bool
	Extract(event types.Event) (Input, Rejection)
}

// NewTrigger builds the trigger selected by cfg.TriggerMode.
func NewTrigger(cfg config.FigurineConfig, prompt string) (Trigger, error) {
	switch cfg.TriggerMode {
	case "", config.TriggerModePattern:
		return NewPatternTrigger(cfg.Keyword, prompt)
	case config.TriggerModeCommand:
		return NewCommandTrigger(cfg.Command)
	default:
		return nil, fmt.Errorf("unknown trigger mode %q", cfg.TriggerMode)
	}
}

// =============================================================================
// pattern: 关键词正则 + 图片 → 图生图
// =============================================================================

// PatternTrigger matches message text against a regular expression and
// requires an attached image.
type PatternTrigger struct {
	re     *regexp.Regexp
	prompt string
}

// NewPatternTrigger compiles pattern. An empty prompt means FigurinePrompt.
func NewPatternTrigger(pattern, prompt string) (*PatternTrigger, error) {
	if pattern == "" {
		pattern = config.DefaultKeyword
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile trigger pattern: %w", err)
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = FigurinePrompt
	}
	return &PatternTrigger{re: re, prompt: prompt}, nil
}

func (t *PatternTrigger) Mode() imagegen.Mode { return imagegen.ModeImageToImage }

// Pattern returns the source of the compiled expression.
func (t *PatternTrigger) Pattern() string { return t.re.String() }

func (t *PatternTrigger) Match(event types.Event) bool {
	return event != nil && t.re.MatchString(event.Content())
}

// Extract uses the first non-blank image URL.
func (t *PatternTrigger) Extract(event types.Event) (Input, Rejection) {
	for _, img := range event.Images() {
		if img = strings.TrimSpace(img); img != "" {
			return Input{Prompt: t.prompt, ImageURL: img}, Accepted
		}
	}
	return Input{}, RejectNoImage
}

// =============================================================================
// command: /draw <prompt> → 文生图
// =============================================================================

// CommandTrigger matches "/name" or "name" at the start of the message,
// followed by whitespace or the end of the text.
type CommandTrigger struct {
	name string
	re   *regexp.Regexp
}

// NewCommandTrigger creates a trigger for the given command name.
func NewCommandTrigger(name string) (*CommandTrigger, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		name = config.DefaultCommand
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return nil, fmt.Errorf("command name %q must not contain whitespace", name)
	}
	re := regexp.MustCompile(`(?s)^\s*/?` + regexp.QuoteMeta(name) + `(?:\s+(.*))?$`)
	return &CommandTrigger{name: name, re: re}, nil
}

func (t *CommandTrigger) Mode() imagegen.Mode { return imagegen.ModeTextToImage }

// Name returns the command without the leading slash.
func (t *CommandTrigger) Name() string { return t.name }

func (t *CommandTrigger) Match(event types.Event) bool {
	return event != nil && t.re.MatchString(event.Content())
}

// Extract returns the trimmed text after the command.
func (t *CommandTrigger) Extract(event types.Event) (Input, Rejection) {
	m := t.re.FindStringSubmatch(event.Content())
	if m == nil {
		return Input{}, RejectEmptyPrompt
	}
	prompt := strings.TrimSpace(m[1])
	if prompt == "" {
		return Input{}, RejectEmptyPrompt
	}
	return Input{Prompt: prompt}, Accepted
}
