package bramble

// EventController is the cancel handle returned by every subscription.
// Cancel is idempotent and takes effect immediately, including for a
// trigger that is currently running.
type EventController struct {
	cancelled bool
	paused    bool
	cancel    func()
	joined    []*EventController
}

// Cancel removes the subscription. Safe to call more than once and from
// inside the handler itself.
func (c *EventController) Cancel() {
	if c == nil || c.cancelled {
		return
	}
	c.cancelled = true
	for _, j := range c.joined {
		j.Cancel()
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Cancelled reports whether Cancel has been called.
func (c *EventController) Cancelled() bool {
	return c.cancelled
}

// SetPaused suspends or resumes the subscription without removing it.
func (c *EventController) SetPaused(paused bool) {
	c.paused = paused
	for _, j := range c.joined {
		j.SetPaused(paused)
	}
}

// Paused reports whether the subscription is suspended.
func (c *EventController) Paused() bool {
	return c.paused
}

// JoinEventControllers aggregates several subscriptions behind one cancel
// handle and one pause flag.
func JoinEventControllers(ctrls ...*EventController) *EventController {
	joined := make([]*EventController, 0, len(ctrls))
	for _, c := range ctrls {
		if c != nil {
			joined = append(joined, c)
		}
	}
	return &EventController{joined: joined}
}

// --- Registry ---

type registryEntry[T any] struct {
	fn   func(T)
	ctrl *EventController
}

// Registry is a single-channel, ordered list of handlers. The zero value is
// ready to use.
//
// Handlers run in registration order. A handler cancelled while a trigger is
// in progress is never called again; a handler added while a trigger is in
// progress is first called by the next trigger.
type Registry[T any] struct {
	entries    []*registryEntry[T]
	triggering int
	dirty      bool
}

// Add registers fn and returns its cancel handle.
func (r *Registry[T]) Add(fn func(T)) *EventController {
	e := &registryEntry[T]{fn: fn}
	e.ctrl = &EventController{}
	e.ctrl.cancel = func() { r.remove(e) }
	r.entries = append(r.entries, e)
	return e.ctrl
}

// AddOnce registers fn so that it is cancelled before its first invocation.
func (r *Registry[T]) AddOnce(fn func(T)) *EventController {
	var ctrl *EventController
	ctrl = r.Add(func(v T) {
		ctrl.Cancel()
		fn(v)
	})
	return ctrl
}

// Trigger calls every live, unpaused handler with v. A panicking handler
// propagates to the caller; registry bookkeeping is still restored.
func (r *Registry[T]) Trigger(v T) {
	n := len(r.entries)
	if n == 0 {
		return
	}
	r.triggering++
	defer r.endTrigger()
	for i := 0; i < n && i < len(r.entries); i++ {
		e := r.entries[i]
		if e.ctrl.cancelled || e.ctrl.paused {
			continue
		}
		e.fn(v)
	}
}

// Len returns the number of live handlers.
func (r *Registry[T]) Len() int {
	n := 0
	for _, e := range r.entries {
		if !e.ctrl.cancelled {
			n++
		}
	}
	return n
}

// Clear cancels every handler.
func (r *Registry[T]) Clear() {
	entries := r.entries
	for _, e := range entries {
		e.ctrl.cancelled = true
		e.ctrl.cancel = nil
	}
	if r.triggering > 0 {
		r.dirty = true
		return
	}
	clear(r.entries)
	r.entries = r.entries[:0]
}

func (r *Registry[T]) remove(e *registryEntry[T]) {
	if r.triggering > 0 {
		// Indices must stay stable while a trigger walks the slice.
		r.dirty = true
		return
	}
	for i, c := range r.entries {
		if c == e {
			copy(r.entries[i:], r.entries[i+1:])
			r.entries[len(r.entries)-1] = nil
			r.entries = r.entries[:len(r.entries)-1]
			return
		}
	}
}

func (r *Registry[T]) endTrigger() {
	r.triggering--
	if r.triggering > 0 || !r.dirty {
		return
	}
	r.dirty = false
	live := r.entries[:0]
	for _, e := range r.entries {
		if !e.ctrl.cancelled {
			live = append(live, e)
		}
	}
	clear(r.entries[len(live):])
	r.entries = live
}

// --- EventHandler ---

// EventHandler is a set of named channels whose handlers receive a variadic
// argument list. The zero value is ready to use.
type EventHandler struct {
	channels map[string]*Registry[[]any]
}

func (h *EventHandler) channel(name string) *Registry[[]any] {
	if h.channels == nil {
		h.channels = make(map[string]*Registry[[]any])
	}
	reg := h.channels[name]
	if reg == nil {
		reg = &Registry[[]any]{}
		h.channels[name] = reg
	}
	return reg
}

// On registers fn on the named channel.
func (h *EventHandler) On(name string, fn func(args ...any)) *EventController {
	return h.channel(name).Add(func(args []any) { fn(args...) })
}

// OnOnce registers fn on the named channel for a single invocation.
func (h *EventHandler) OnOnce(name string, fn func(args ...any)) *EventController {
	return h.channel(name).AddOnce(func(args []any) { fn(args...) })
}

// Trigger calls every handler registered on the named channel. Triggering a
// channel with no handlers is a no-op.
func (h *EventHandler) Trigger(name string, args ...any) {
	if reg := h.channels[name]; reg != nil {
		reg.Trigger(args)
	}
}

// NumListeners returns the number of live handlers on the named channel.
func (h *EventHandler) NumListeners(name string) int {
	if reg := h.channels[name]; reg != nil {
		return reg.Len()
	}
	return 0
}

// Remove cancels every handler on the named channel.
func (h *EventHandler) Remove(name string) {
	if reg := h.channels[name]; reg != nil {
		reg.Clear()
		delete(h.channels, name)
	}
}

// Clear cancels every handler on every channel.
func (h *EventHandler) Clear() {
	for name, reg := range h.channels {
		reg.Clear()
		delete(h.channels, name)
	}
}
