package core

// BlockType distinguishes the display blocks a notification is built from.
type BlockType string

const (
	BlockHeader  BlockType = "header"
	BlockSection BlockType = "section"
)

// Block is one display block of a rendered notification.
type Block struct {
	Type BlockType
	Text string
}

// Notification is the platform-agnostic rendered form of an event: an
// ordered sequence of display blocks the delivery client translates into
// the chat platform's wire format.
type Notification struct {
	Blocks []Block
}

// Header appends a header block and returns the notification for chaining.
func (n *Notification) Header(text string) *Notification {
	n.Blocks = append(n.Blocks, Block{Type: BlockHeader, Text: text})
	return n
}

// Section appends a section block and returns the notification for chaining.
func (n *Notification) Section(text string) *Notification {
	n.Blocks = append(n.Blocks, Block{Type: BlockSection, Text: text})
	return n
}
