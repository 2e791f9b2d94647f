package types

// ResultKind tells the host how to render a Result.
type ResultKind string

const (
	ResultPlain ResultKind = "plain"
	ResultImage ResultKind = "image"
)

// Result is the single reply a plugin produces for one invocation.
type Result struct {
	Kind  ResultKind `json:"type"`
	Text  string     `json:"text,omitempty"`
	Image []byte     `json:"image,omitempty"`
}

// PlainResult builds a text reply.
func PlainResult(text string) Result {
	return Result{Kind: ResultPlain, Text: text}
}

// ImageResult builds an image reply. The bytes are kept as-is.
func ImageResult(data []byte) Result {
	return Result{Kind: ResultImage, Image: data}
}

// IsImage reports whether the result carries image bytes.
func (r Result) IsImage() bool { return r.Kind == ResultImage }
