package bramble

// CompEvent is broadcast when a component is attached to or detached from a
// live object. ID is empty for anonymous components.
type CompEvent struct {
	Object *GameObject
	ID     string
}

// TagEvent is broadcast when a live object gains or loses a tag.
type TagEvent struct {
	Object *GameObject
	Tag    string
}

// Bus is the lifecycle broadcast channel shared by every object of one Tree.
// It is created with the Tree and torn down by Tree.Close; there is no
// package-level instance.
type Bus struct {
	Add     Registry[*GameObject]
	Destroy Registry[*GameObject]
	Use     Registry[CompEvent]
	Unuse   Registry[CompEvent]
	Tag     Registry[TagEvent]
	Untag   Registry[TagEvent]
	Error   Registry[error]

	closed bool
}

// Close cancels every subscription. Broadcasts after Close are dropped.
func (b *Bus) Close() {
	b.closed = true
	b.Add.Clear()
	b.Destroy.Clear()
	b.Use.Clear()
	b.Unuse.Clear()
	b.Tag.Clear()
	b.Untag.Clear()
	b.Error.Clear()
}

// Closed reports whether Close has been called.
func (b *Bus) Closed() bool {
	return b.closed
}

// NumListeners returns the total number of live lifecycle subscriptions.
func (b *Bus) NumListeners() int {
	return b.Add.Len() + b.Destroy.Len() + b.Use.Len() + b.Unuse.Len() +
		b.Tag.Len() + b.Untag.Len() + b.Error.Len()
}
