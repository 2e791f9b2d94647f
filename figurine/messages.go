package figurine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BaSui01/figurebot/imagegen"
)

// Messages 是插件回给用户的文本。StatusFailure 用一个 %d 放状态码，没有时状态码追加在末尾。
type Messages struct {
	MissingImage   string `yaml:"missing_image" json:"missing_image"`
	MissingPrompt  string `yaml:"missing_prompt" json:"missing_prompt"`
	StatusFailure  string `yaml:"status_failure" json:"status_failure"`
	GenericFailure string `yaml:"generic_failure" json:"generic_failure"`
}

// DefaultMessages returns the replies for a trigger. keyword is the pattern
// users are told to include; command is the slash command name.
func DefaultMessages(mode imagegen.Mode, keyword, command string) Messages {
	if mode == imagegen.ModeTextToImage {
		return Messages{
			MissingImage:   fmt.Sprintf("请在 /%s 后面写上要画的内容", command),
			MissingPrompt:  fmt.Sprintf("请在 /%s 后面写上要画的内容", command),
			StatusFailure:  "绘图失败，状态码: %d",
			GenericFailure: "绘图失败，请稍后重试。",
		}
	}
	return Messages{
		MissingImage:   fmt.Sprintf("请发送一张图片，并在文字里加上 '%s'", keyword),
		MissingPrompt:  fmt.Sprintf("请发送一张图片，并在文字里加上 '%s'", keyword),
		StatusFailure:  "手办化失败，状态码: %d",
		GenericFailure: "手办化失败，请稍后重试。",
	}
}

func (m Messages) merge(def Messages) Messages {
	if m.MissingImage == "" {
		m.MissingImage = def.MissingImage
	}
	if m.MissingPrompt == "" {
		m.MissingPrompt = def.MissingPrompt
	}
	if m.StatusFailure == "" {
		m.StatusFailure = def.StatusFailure
	}
	if m.GenericFailure == "" {
		m.GenericFailure = def.GenericFailure
	}
	return m
}

// statusFailure formats the status reply. A template that is not exactly one
// %d and no other verbs is used as literal text with the code appended.
func (m Messages) statusFailure(code int) string {
	if strings.Count(m.StatusFailure, "%") == 1 && strings.Count(m.StatusFailure, "%d") == 1 {
		return fmt.Sprintf(m.StatusFailure, code)
	}
	return m.StatusFailure + " " + strconv.Itoa(code)
}
