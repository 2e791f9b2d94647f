// Package fixtures 提供测试用的图片字节与消息样例。
package fixtures

import (
	"github.com/BaSui01/figurebot/types"
)

// PNGHeader 是一个最小的 PNG 文件头，足以让调用方识别为图片
var PNGHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// SampleImageURL 是事件里附带的图片地址
const SampleImageURL = "https://cdn.example.com/uploads/cat.png"

// FigurineEvent 返回带图的 "手办化" 消息
func FigurineEvent() *types.Message {
	return &types.Message{Text: "帮我手办化一下", ImageURLs: []string{SampleImageURL}}
}

// FigurineEventWithoutImage 返回不带图的 "手办化" 消息
func FigurineEventWithoutImage() *types.Message {
	return &types.Message{Text: "手办化"}
}

// DrawEvent 返回 "/draw <prompt>" 消息
func DrawEvent(prompt string) *types.Message {
	return &types.Message{Text: "/draw " + prompt}
}
