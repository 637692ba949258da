package events

// Clipboard owns a zero-based copy of some entries. It shares nothing with
// the collection the entries came from.
type Clipboard[T any] struct {
	data *EventData[T]
}

func NewClipboard[T any]() *Clipboard[T] {
	return &Clipboard[T]{data: New[T]()}
}

// Set stores a copy of data, renormalized so its first key is zero.
func (c *Clipboard[T]) Set(data *EventData[T]) {
	if data.Len() == 0 {
		c.data = New[T]()
		return
	}
	c.data = data.Shifted(-data.First())
}

// SetRelative stores a copy of data with origin moved to zero. Clipboards
// filled from several collections share an origin this way.
func (c *Clipboard[T]) SetRelative(data *EventData[T], origin Tick) {
	c.data = data.Shifted(-origin)
}

// Data returns a copy of the clipboard contents.
func (c *Clipboard[T]) Data() *EventData[T] {
	return c.data.Clone()
}

func (c *Clipboard[T]) Len() int {
	return c.data.Len()
}

func (c *Clipboard[T]) Empty() bool {
	return c.data.Len() == 0
}

// Span is the largest key. A paste at tick t clears [t, t+Span()].
func (c *Clipboard[T]) Span() Tick {
	if c.data.Len() == 0 {
		return 0
	}
	return c.data.Last()
}

func (c *Clipboard[T]) Clear() {
	c.data = New[T]()
}
