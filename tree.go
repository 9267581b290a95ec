package bramble

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Tree is the top-level object that owns the root, the lifecycle bus, the
// configuration, and the traversal buffers.
type Tree struct {
	root   *GameObject
	cfg    Config
	bus    *Bus
	log    *zap.Logger
	layers map[string]int

	// Scheduler state
	accumulator float64
	walkBufs    [][]*GameObject
	drawBufs    [][]drawEntry
	sortBuf     []drawEntry
	dc          DrawContext
	stats       debugStats

	queries     []*LiveQuery
	closed      bool
}

// TreeOption configures a Tree in NewTree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for hook errors and debug output.
func WithLogger(l *zap.Logger) TreeOption {
	return func(t *Tree) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTree creates a tree with a live root (ID 0) and its own lifecycle bus.
// A zero FixedDT or MaxFixedSteps takes the DefaultConfig value.
func NewTree(cfg Config, opts ...TreeOption) *Tree {
	cfg = cfg.withDefaults()
	t := &Tree{
		cfg: cfg,
		bus: &Bus{},
		log: zap.NewNop(),
	}
	if len(cfg.Layers) > 0 {
		t.layers = make(map[string]int, len(cfg.Layers))
		for i, name := range cfg.Layers {
			t.layers[name] = i
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	root := &GameObject{
		id:        0,
		Name:      "root",
		Scale:     Vec2{1, 1},
		transform: identityTransform,
		tree:      t,
		live:      true,
	}
	t.root = root
	return t
}

// Root returns the tree's root object.
func (t *Tree) Root() *GameObject {
	return t.root
}

// Config returns the tree's configuration.
func (t *Tree) Config() Config {
	return t.cfg
}

// Logger returns the tree's logger.
func (t *Tree) Logger() *zap.Logger {
	return t.log
}

// Bus returns the tree's lifecycle broadcast channel.
func (t *Tree) Bus() *Bus {
	return t.bus
}

// LayerIndex resolves a named layer.
func (t *Tree) LayerIndex(name string) (int, bool) {
	i, ok := t.layers[name]
	return i, ok
}

// Close destroys every object under the root and tears down the bus.
func (t *Tree) Close() {
	if t.closed {
		return
	}
	t.root.DestroyChildren()
	t.bus.Close()
	clear(t.queries)
	t.queries = nil
	t.closed = true
}

// --- Global lifecycle subscriptions ---

// OnAdd registers fn for every object that enters the tree.
func (t *Tree) OnAdd(fn func(*GameObject)) *EventController { return t.bus.Add.Add(fn) }

// OnDestroy registers fn for every object destroyed in the tree.
func (t *Tree) OnDestroy(fn func(*GameObject)) *EventController { return t.bus.Destroy.Add(fn) }

// OnUse registers fn for every component attached to a live object.
func (t *Tree) OnUse(fn func(CompEvent)) *EventController { return t.bus.Use.Add(fn) }

// OnUnuse registers fn for every component detached from a live object.
func (t *Tree) OnUnuse(fn func(CompEvent)) *EventController { return t.bus.Unuse.Add(fn) }

// OnTag registers fn for every tag added to a live object.
func (t *Tree) OnTag(fn func(TagEvent)) *EventController { return t.bus.Tag.Add(fn) }

// OnUntag registers fn for every tag removed from a live object.
func (t *Tree) OnUntag(fn func(TagEvent)) *EventController { return t.bus.Untag.Add(fn) }

// OnError registers fn on the error-reporting channel.
func (t *Tree) OnError(fn func(error)) *EventController { return t.bus.Error.Add(fn) }

// --- Error isolation ---

// guard runs fn, converting a panic into a HookError on the error channel.
// A nil tree means the object was never attached; panics then propagate.
func (t *Tree) guard(o *GameObject, hook string, fn func()) {
	if t == nil {
		fn()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.report(&HookError{ObjectID: o.id, Name: o.Name, Hook: hook, Value: r})
		}
	}()
	fn()
}

// report logs err and forwards it to the error channel. A panicking error
// handler is logged and swallowed so reporting cannot fail the frame.
func (t *Tree) report(err error) {
	fields := []zap.Field{zap.Error(err)}
	var he *HookError
	if errors.As(err, &he) {
		fields = append(fields,
			zap.Uint64("id", he.ObjectID),
			zap.String("name", he.Name),
			zap.String("hook", he.Hook))
	}
	t.log.Error("lifecycle hook failed", fields...)
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("error handler panicked", zap.Any("panic", r))
		}
	}()
	t.bus.Error.Trigger(err)
}

// --- Tree manipulation ---

// Add makes an object from args and attaches it as a child.
func (o *GameObject) Add(args ...any) (*GameObject, error) {
	child, err := Make(args...)
	if err != nil {
		return nil, err
	}
	if err := o.AddChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// MustAdd is like Add but panics on error.
func (o *GameObject) MustAdd(args ...any) *GameObject {
	child, err := o.Add(args...)
	if err != nil {
		panic(err)
	}
	return child
}

// AddChild appends child to this object's children. If child already has a
// parent it is moved atomically. Attaching to a live object makes the
// child's subtree live: deferred dependency checks run, then Add hooks and
// the add broadcasts fire for each object, parents first.
func (o *GameObject) AddChild(child *GameObject) error {
	if child == nil {
		return fmt.Errorf("%w: nil child", ErrInvalidComponent)
	}
	if o.destroyed || child.destroyed {
		return ErrDestroyed
	}
	if child.isRoot() || child == o || child.IsAncestorOf(o) {
		return ErrCycle
	}
	if child.live && !o.live {
		return ErrDetachedParent
	}
	entering := o.live && !child.live
	moving := o.live && child.live
	if entering {
		if err := o.tree.validateSubtree(child); err != nil {
			return err
		}
	}

	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = o
	o.children = append(o.children, child)
	child.setTree(o.tree)

	if o.tree != nil && o.tree.cfg.Debug {
		o.tree.debugCheckTreeDepth(child)
		o.tree.debugCheckChildCount(o)
	}
	if entering {
		o.tree.enter(child)
	}
	if moving {
		o.tree.resyncQueries(child)
	}
	return nil
}

// Remove detaches child and destroys its subtree. Every object of the
// subtree fires its destroy lifecycle exactly once, parents first, after
// the detachment is complete.
func (o *GameObject) Remove(child *GameObject) error {
	if child == nil || child.parent != o {
		return ErrNotChild
	}
	o.removeChildByPtr(child)
	child.parent = nil
	child.destroyTree()
	return nil
}

// RemoveAll destroys every direct child carrying tag.
func (o *GameObject) RemoveAll(tag string) {
	for _, c := range append([]*GameObject(nil), o.children...) {
		if c.parent == o && c.Is(tag) {
			_ = o.Remove(c)
		}
	}
}

// DestroyChildren destroys every child of the object.
func (o *GameObject) DestroyChildren() {
	for _, c := range append([]*GameObject(nil), o.children...) {
		if c.parent == o {
			_ = o.Remove(c)
		}
	}
}

// Destroy removes the object from its parent and destroys its subtree.
// Roots cannot be destroyed; use Tree.Close.
func (o *GameObject) Destroy() {
	if o.destroyed || o.isRoot() {
		return
	}
	if o.parent != nil {
		_ = o.parent.Remove(o)
		return
	}
	o.destroyTree()
}

// ParentOpts controls which world-space properties SetParent preserves.
type ParentOpts struct {
	KeepPosition bool
	KeepAngle    bool
	KeepScale    bool
}

// SetParent moves the object under parent, optionally compensating its local
// transform so that its world position, angle, or scale is unchanged.
func (o *GameObject) SetParent(parent *GameObject, opts ParentOpts) error {
	if parent == nil {
		return fmt.Errorf("%w: nil parent", ErrInvalidComponent)
	}
	if o.parent == parent {
		return nil
	}
	oldWorld := o.worldTransform()
	if err := parent.AddChild(o); err != nil {
		return err
	}
	newParentWorld := parent.worldTransform()
	if opts.KeepPosition {
		x, y := transformPoint(invertAffine(newParentWorld), oldWorld[4], oldWorld[5])
		o.Pos = Vec2{x, y}
	}
	if opts.KeepAngle {
		o.Angle = affineAngle(oldWorld) - affineAngle(newParentWorld)
	}
	if opts.KeepScale {
		osx, osy := affineScale(oldWorld)
		psx, psy := affineScale(newParentWorld)
		if psx != 0 && psy != 0 {
			o.Scale = Vec2{osx / psx, osy / psy}
		}
	}
	return nil
}

// IsAncestorOf reports whether o is a strict ancestor of other.
func (o *GameObject) IsAncestorOf(other *GameObject) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == o {
			return true
		}
	}
	return false
}

// --- Helpers ---

func (o *GameObject) isRoot() bool {
	return o.tree != nil && o.tree.root == o
}

// removeChildByPtr removes child from o.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (o *GameObject) removeChildByPtr(child *GameObject) {
	for i, c := range o.children {
		if c == child {
			copy(o.children[i:], o.children[i+1:])
			o.children[len(o.children)-1] = nil
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}

func (o *GameObject) setTree(t *Tree) {
	o.tree = t
	for _, c := range o.children {
		c.setTree(t)
	}
}

// validateSubtree runs the dependency and layer checks deferred by Make.
func (t *Tree) validateSubtree(o *GameObject) error {
	for _, st := range o.allComps() {
		if err := o.checkRequires(st.id, st.value); err != nil {
			return err
		}
	}
	if o.layerName != "" {
		if _, ok := t.layers[o.layerName]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLayer, o.layerName)
		}
	}
	for _, c := range o.children {
		if err := t.validateSubtree(c); err != nil {
			return err
		}
	}
	return nil
}

// enter makes o's subtree live, parents first.
func (t *Tree) enter(o *GameObject) {
	if o.destroyed || o.live {
		return
	}
	o.live = true
	if o.layerName != "" {
		o.layer = t.layers[o.layerName]
	}
	for _, st := range o.allComps() {
		o.runAddHook(st)
		if !o.live {
			return
		}
	}
	t.guard(o, "add", func() { o.events.Trigger(EventAdd) })
	if !o.live {
		return
	}
	t.bus.Add.Trigger(o)
	for _, c := range append([]*GameObject(nil), o.children...) {
		if c.parent == o {
			t.enter(c)
		}
	}
}

// destroyTree fires the destroy lifecycle for o, then detaches and destroys
// each child in turn.
func (o *GameObject) destroyTree() {
	if o.destroyed {
		return
	}
	t := o.tree
	wasLive := o.live
	o.destroyed = true
	o.live = false

	t.guard(o, "destroy", func() { o.events.Trigger(EventDestroy) })
	for _, st := range o.allComps() {
		if d, ok := st.value.(Destroyer); ok {
			t.guard(o, "destroy", func() { d.Destroy(o) })
		}
	}
	if wasLive && t != nil {
		t.bus.Destroy.Trigger(o)
	}

	children := o.children
	o.children = nil
	for _, c := range children {
		if c.parent != o {
			continue
		}
		c.parent = nil
		c.destroyTree()
	}
	o.runCleanups()
}

// runCleanups cancels every subscription and property owned by components.
func (o *GameObject) runCleanups() {
	for _, st := range o.comps {
		fns := o.cleanups[st.id]
		delete(o.cleanups, st.id)
		for _, fn := range fns {
			fn()
		}
	}
	for _, fn := range o.anonCleanups {
		fn()
	}
	o.anonCleanups = nil
	o.events.Clear()
	o.onUpdate.Clear()
	o.onFixedUpdate.Clear()
	o.onDraw.Clear()
}
