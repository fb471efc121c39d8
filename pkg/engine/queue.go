package engine

// Intro is printed before the recipe messages of a batch
var Intro = []string{
	"",
	"<info>Some files may have been created or updated to configure your new packages.</>",
	"Please <comment>review</>, <comment>edit</> and <comment>commit</> them: these files are <comment>yours</>.",
	"",
}

// MessageQueue holds operator lines until the end of a batch
type MessageQueue struct {
	lines []string
}

// NewMessageQueue creates an empty queue
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{}
}

// Enqueue adds the lines of one recipe followed by a blank line. Nothing is
// added for an empty block.
func (q *MessageQueue) Enqueue(lines ...string) {
	if len(lines) == 0 {
		return
	}
	q.lines = append(q.lines, lines...)
	q.lines = append(q.lines, "")
}

// Lines returns a copy of the queued lines
func (q *MessageQueue) Lines() []string {
	out := make([]string, len(q.lines))
	copy(out, q.lines)
	return out
}

// Len returns the number of queued lines
func (q *MessageQueue) Len() int {
	return len(q.lines)
}

// Reset empties the queue
func (q *MessageQueue) Reset() {
	q.lines = nil
}
