package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultConstructors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n")

	img := ImageResult(png)
	assert.True(t, img.IsImage())
	assert.Equal(t, png, img.Image)
	assert.Empty(t, img.Text)

	txt := PlainResult("hello")
	assert.False(t, txt.IsImage())
	assert.Equal(t, ResultPlain, txt.Kind)
	assert.Equal(t, "hello", txt.Text)
	assert.Nil(t, txt.Image)
}

func TestMessage_ImplementsEvent(t *testing.T) {
	var ev Event = &Message{Text: "手办化", ImageURLs: []string{"https://a/1.png"}}
	assert.Equal(t, "手办化", ev.Content())
	assert.Equal(t, []string{"https://a/1.png"}, ev.Images())

	empty := &Message{}
	assert.Empty(t, empty.Images())
	assert.Empty(t, empty.Content())
}
