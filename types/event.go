package types

// Event is the read-only view of an inbound chat message handed over by the
// host framework.
type Event interface {
	// Images returns the image references attached to the message, in order.
	Images() []string
	// Content returns the plain text of the message.
	Content() string
}

// Message is the default Event implementation used by the bundled host and
// by tests.
type Message struct {
	Text      string   `json:"content"`
	ImageURLs []string `json:"images,omitempty"`
	Sender    string   `json:"sender,omitempty"`
}

// Compile-time interface compliance check.
var _ Event = (*Message)(nil)

// Images implements Event.
func (m *Message) Images() []string { return m.ImageURLs }

// Content implements Event.
func (m *Message) Content() string { return m.Text }
