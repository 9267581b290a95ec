package bramble

import (
	"fmt"
	"sort"
	"strings"
)

// --- ID counter ---

// objectIDCounter is a plain counter (no atomic; bramble is single-threaded).
// ID 0 is reserved for tree roots.
var objectIDCounter uint64

func nextObjectID() uint64 {
	objectIDCounter++
	return objectIDCounter
}

// compState is one attached component instance.
type compState struct {
	id    string
	value any
	props []string
}

// GameObject is the entity of the scene graph. It owns its tags, its
// components, and its children; its parent link is a non-owning back
// reference.
type GameObject struct {
	// Identity
	id   uint64
	Name string

	// Hierarchy
	tree     *Tree
	parent   *GameObject
	children []*GameObject

	// Transform (local)
	Pos   Vec2
	Angle float64 // degrees
	Scale Vec2

	// Ordering
	Z         int
	layer     int
	layerName string
	layerSet  bool

	// Computed during traversal
	transform [6]float64
	drawLayer int

	// Composition
	tags         map[string]struct{}
	comps        []*compState
	compIndex    map[string]*compState
	anon         []*compState
	props        map[string]string // property -> owning component identity
	cleanups     map[string][]func()
	anonCleanups []func()
	curComp      *compState // component whose Add hook is running

	// Events
	events        EventHandler
	onUpdate      Registry[float64]
	onFixedUpdate Registry[float64]
	onDraw        Registry[*DrawContext]

	// Flags
	paused    bool
	hidden    bool
	live      bool
	destroyed bool

	// Drawing
	mask   MaskMode
	target *RenderTarget
}

// Option configures a GameObject during Make or Add.
type Option func(*GameObject)

// WithName sets the object's debug name.
func WithName(name string) Option {
	return func(o *GameObject) { o.Name = name }
}

// WithPos sets the object's local position.
func WithPos(x, y float64) Option {
	return func(o *GameObject) { o.Pos = Vec2{x, y} }
}

// WithAngle sets the object's local rotation in degrees.
func WithAngle(deg float64) Option {
	return func(o *GameObject) { o.Angle = deg }
}

// WithScale sets the object's local scale.
func WithScale(sx, sy float64) Option {
	return func(o *GameObject) { o.Scale = Vec2{sx, sy} }
}

// WithZ sets the object's z order within its layer.
func WithZ(z int) Option {
	return func(o *GameObject) { o.Z = z }
}

// WithLayer sets an explicit draw layer index, inherited by descendants.
func WithLayer(index int) Option {
	return func(o *GameObject) { o.SetLayer(index) }
}

// WithLayerName sets an explicit draw layer by name. The name is resolved
// against the tree's named layers when the object enters the tree.
func WithLayerName(name string) Option {
	return func(o *GameObject) {
		o.layerName = name
		o.layerSet = true
	}
}

// WithMask makes the object mask its subtree. Make fails for unknown modes.
func WithMask(mode MaskMode) Option {
	return func(o *GameObject) { o.mask = mode }
}

// WithRenderTarget redirects the object's subtree into target.
func WithRenderTarget(target *RenderTarget) Option {
	return func(o *GameObject) { o.target = target }
}

// newObject sets the common default field values.
func newObject() *GameObject {
	return &GameObject{
		id:        nextObjectID(),
		Scale:     Vec2{1, 1},
		transform: identityTransform,
	}
}

// Make resolves a list of components, tags, and options into one object.
// The object is not part of any tree; dependency checks run when it is
// first attached to a live parent.
func Make(args ...any) (*GameObject, error) {
	o := newObject()
	for _, arg := range args {
		switch v := arg.(type) {
		case Tag:
			o.addTags([]string{string(v)})
		case Tags:
			o.addTags(v)
		case []string:
			o.addTags(v)
		case Option:
			v(o)
		default:
			if err := o.Use(v); err != nil {
				return nil, err
			}
		}
	}
	if !validMaskMode(o.mask) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMaskMode, o.mask)
	}
	return o, nil
}

// MustMake is like Make but panics on error.
func MustMake(args ...any) *GameObject {
	o, err := Make(args...)
	if err != nil {
		panic(err)
	}
	return o
}

// --- Accessors ---

// ID returns the object's process-unique identity. Roots have ID 0.
func (o *GameObject) ID() uint64 {
	return o.id
}

// Tree returns the tree the object belongs to, or nil if it was never attached.
func (o *GameObject) Tree() *Tree {
	return o.tree
}

// Parent returns the owning object, or nil for roots and detached objects.
func (o *GameObject) Parent() *GameObject {
	return o.parent
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (o *GameObject) Children() []*GameObject {
	return o.children
}

// NumChildren returns the number of children.
func (o *GameObject) NumChildren() int {
	return len(o.children)
}

// Exists reports whether the object has not been destroyed.
func (o *GameObject) Exists() bool {
	return !o.destroyed
}

// Live reports whether the object is attached to a tree root and so takes
// part in traversal, queries, and lifecycle broadcasts.
func (o *GameObject) Live() bool {
	return o.live
}

// SetPaused suspends the object's own update and fixed update channels.
// Children keep updating unless they are paused themselves.
func (o *GameObject) SetPaused(paused bool) {
	o.paused = paused
}

// SetPausedTree pauses or resumes the object and every descendant.
func (o *GameObject) SetPausedTree(paused bool) {
	o.paused = paused
	for _, c := range o.children {
		c.SetPausedTree(paused)
	}
}

// Paused reports whether the object's own update channels are suspended.
func (o *GameObject) Paused() bool {
	return o.paused
}

// SetHidden excludes the object and its subtree from the draw pass.
func (o *GameObject) SetHidden(hidden bool) {
	o.hidden = hidden
}

// Hidden reports whether the object is excluded from drawing.
func (o *GameObject) Hidden() bool {
	return o.hidden
}

// SetLayer sets an explicit draw layer index, inherited by descendants.
func (o *GameObject) SetLayer(index int) {
	o.layer = index
	o.layerName = ""
	o.layerSet = true
}

// ClearLayer makes the object inherit its draw layer again.
func (o *GameObject) ClearLayer() {
	o.layer = 0
	o.layerName = ""
	o.layerSet = false
}

// Layer returns the draw layer index computed by the last traversal.
func (o *GameObject) Layer() int {
	return o.drawLayer
}

// SetZ sets the object's z order within its layer.
func (o *GameObject) SetZ(z int) {
	o.Z = z
}

// --- Tags ---

func (o *GameObject) addTags(tags []string) []string {
	var added []string
	for _, t := range tags {
		if o.tags == nil {
			o.tags = make(map[string]struct{})
		}
		if _, ok := o.tags[t]; ok {
			continue
		}
		o.tags[t] = struct{}{}
		added = append(added, t)
	}
	return added
}

// Tag adds tags to the object. Live objects broadcast each new tag.
func (o *GameObject) Tag(tags ...string) {
	added := o.addTags(tags)
	if !o.live {
		return
	}
	for _, t := range added {
		o.events.Trigger(EventTag, t)
		o.tree.bus.Tag.Trigger(TagEvent{Object: o, Tag: t})
	}
}

// Untag removes tags from the object. Live objects broadcast each removal.
func (o *GameObject) Untag(tags ...string) {
	for _, t := range tags {
		if _, ok := o.tags[t]; !ok {
			continue
		}
		delete(o.tags, t)
		if o.live {
			o.events.Trigger(EventUntag, t)
			o.tree.bus.Untag.Trigger(TagEvent{Object: o, Tag: t})
		}
	}
}

// HasTag reports whether the object carries the tag itself, ignoring
// component identities.
func (o *GameObject) HasTag(tag string) bool {
	_, ok := o.tags[tag]
	return ok
}

// Tags returns the object's tags in sorted order.
func (o *GameObject) Tags() []string {
	out := make([]string, 0, len(o.tags))
	for t := range o.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Is reports whether the object carries every given tag. When the tree is
// configured with ComponentIDsAsTags, component identities also match.
func (o *GameObject) Is(tags ...string) bool {
	return o.IsOp(OpAnd, tags...)
}

// IsOp is Is with an explicit AND/OR combination.
func (o *GameObject) IsOp(op Op, tags ...string) bool {
	compsAsTags := o.tree != nil && o.tree.cfg.ComponentIDsAsTags
	for _, t := range tags {
		ok := o.HasTag(t) || (compsAsTags && o.compIndex[t] != nil)
		if op == OpOr && ok {
			return true
		}
		if op == OpAnd && !ok {
			return false
		}
	}
	return op == OpAnd
}

// --- Local events ---

// Names of the built-in local channels.
const (
	EventAdd     = "add"
	EventDestroy = "destroy"
	EventUse     = "use"
	EventUnuse   = "unuse"
	EventTag     = "tag"
	EventUntag   = "untag"
)

// record files a subscription under the component whose Add hook is
// running, so it is cancelled when that component is detached.
func (o *GameObject) record(ctrl *EventController) *EventController {
	if st := o.curComp; st != nil {
		o.addCleanup(st, ctrl.Cancel)
	}
	return ctrl
}

func (o *GameObject) addCleanup(st *compState, fn func()) {
	if st.id == "" {
		o.anonCleanups = append(o.anonCleanups, fn)
		return
	}
	if o.cleanups == nil {
		o.cleanups = make(map[string][]func())
	}
	o.cleanups[st.id] = append(o.cleanups[st.id], fn)
}

// On registers fn on the object's named channel.
func (o *GameObject) On(name string, fn func(args ...any)) *EventController {
	return o.record(o.events.On(name, fn))
}

// OnOnce registers fn on the object's named channel for a single call.
func (o *GameObject) OnOnce(name string, fn func(args ...any)) *EventController {
	return o.record(o.events.OnOnce(name, fn))
}

// Trigger calls the handlers of the object's named channel.
func (o *GameObject) Trigger(name string, args ...any) {
	o.events.Trigger(name, args...)
}

// NumListeners returns the number of live handlers on a named channel.
func (o *GameObject) NumListeners(name string) int {
	return o.events.NumListeners(name)
}

// OnUpdate registers fn on the dedicated update channel.
func (o *GameObject) OnUpdate(fn func(dt float64)) *EventController {
	return o.record(o.onUpdate.Add(fn))
}

// OnFixedUpdate registers fn on the dedicated fixed update channel.
func (o *GameObject) OnFixedUpdate(fn func(dt float64)) *EventController {
	return o.record(o.onFixedUpdate.Add(fn))
}

// OnDraw registers fn on the dedicated draw channel.
func (o *GameObject) OnDraw(fn func(dc *DrawContext)) *EventController {
	return o.record(o.onDraw.Add(fn))
}

// OnAdd registers fn to run when the object enters a live tree.
func (o *GameObject) OnAdd(fn func()) *EventController {
	return o.On(EventAdd, func(...any) { fn() })
}

// OnDestroy registers fn to run when the object is destroyed.
func (o *GameObject) OnDestroy(fn func()) *EventController {
	return o.On(EventDestroy, func(...any) { fn() })
}

// OnUse registers fn to run when a component is attached to the live object.
func (o *GameObject) OnUse(fn func(id string)) *EventController {
	return o.On(EventUse, func(args ...any) { fn(args[0].(string)) })
}

// OnUnuse registers fn to run when a component is detached from the live object.
func (o *GameObject) OnUnuse(fn func(id string)) *EventController {
	return o.On(EventUnuse, func(args ...any) { fn(args[0].(string)) })
}

// OnTag registers fn to run when the live object gains a tag.
func (o *GameObject) OnTag(fn func(tag string)) *EventController {
	return o.On(EventTag, func(args ...any) { fn(args[0].(string)) })
}

// OnUntag registers fn to run when the live object loses a tag.
func (o *GameObject) OnUntag(fn func(tag string)) *EventController {
	return o.On(EventUntag, func(args ...any) { fn(args[0].(string)) })
}

// --- Debug ---

// Inspect describes every attached component that implements Inspector,
// one "id: description" line per component, sorted.
func (o *GameObject) Inspect() string {
	var lines []string
	for _, st := range o.comps {
		if in, ok := st.value.(Inspector); ok {
			lines = append(lines, st.id+": "+in.Inspect())
		}
	}
	for _, st := range o.anon {
		if in, ok := st.value.(Inspector); ok {
			lines = append(lines, anonymousOwner+": "+in.Inspect())
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func (o *GameObject) String() string {
	return fmt.Sprintf("GameObject(%d %q)", o.id, o.Name)
}
