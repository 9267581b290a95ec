package bramble

// Only restricts what a Get name may match.
type Only uint8

const (
	OnlyBoth  Only = iota // tags or component identities
	OnlyTags              // tags only
	OnlyComps             // component identities only
)

// GetOpts configures Get and GetLive.
type GetOpts struct {
	// Recursive searches every descendant instead of direct children.
	Recursive bool
	Only      Only
}

// matchName reports whether o carries name as selected by only.
func matchName(o *GameObject, name string, only Only) bool {
	switch only {
	case OnlyTags:
		return o.HasTag(name)
	case OnlyComps:
		return o.compIndex[name] != nil
	default:
		return o.HasTag(name) || o.compIndex[name] != nil
	}
}

// matchNames reports whether o matches names combined with op. An empty
// list matches everything.
func matchNames(o *GameObject, names []string, only Only, op Op) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		ok := matchName(o, n, only)
		if op == OpOr && ok {
			return true
		}
		if op == OpAnd && !ok {
			return false
		}
	}
	return op == OpAnd
}

// Get returns a snapshot of the children (or descendants) that carry every
// name in names, in depth-first pre-order. An empty names list matches
// every object.
func (o *GameObject) Get(names []string, opts GetOpts) []*GameObject {
	var out []*GameObject
	o.collectMatches(names, opts, &out)
	return out
}

func (o *GameObject) collectMatches(names []string, opts GetOpts, out *[]*GameObject) {
	for _, c := range o.children {
		if matchNames(c, names, opts.Only, OpAnd) {
			*out = append(*out, c)
		}
		if opts.Recursive {
			c.collectMatches(names, opts, out)
		}
	}
}

// LiveQuery is a Get result kept in sync with the tree through the
// lifecycle broadcasts and through moves between live parents. It is
// cancelled automatically when the object that created it is destroyed.
type LiveQuery struct {
	owner *GameObject
	names []string
	opts  GetOpts
	items []*GameObject
	ctrl  *EventController
}

// GetLive is Get whose result keeps tracking objects that enter or leave
// the queried scope, are destroyed, or gain or lose a matching tag or
// component. The owner must belong to a tree.
func (o *GameObject) GetLive(names []string, opts GetOpts) *LiveQuery {
	t := o.tree
	if t == nil {
		panic("bramble: GetLive on an object that does not belong to a tree")
	}
	q := &LiveQuery{
		owner: o,
		names: append([]string(nil), names...),
		opts:  opts,
		items: o.Get(names, opts),
	}
	b := t.bus
	ctrl := JoinEventControllers(
		b.Add.Add(func(obj *GameObject) { q.sync(obj) }),
		b.Destroy.Add(func(obj *GameObject) { q.drop(obj) }),
		b.Use.Add(func(e CompEvent) { q.sync(e.Object) }),
		b.Unuse.Add(func(e CompEvent) { q.sync(e.Object) }),
		b.Tag.Add(func(e TagEvent) { q.sync(e.Object) }),
		b.Untag.Add(func(e TagEvent) { q.sync(e.Object) }),
		o.events.On(EventDestroy, func(...any) { q.Cancel() }),
	)
	t.queries = append(t.queries, q)
	ctrl.cancel = func() { t.removeQuery(q) }
	q.ctrl = o.record(ctrl)
	return q
}

// Items returns the current result. The returned slice is updated in place
// and MUST NOT be mutated by the caller.
func (q *LiveQuery) Items() []*GameObject {
	return q.items
}

// Len returns the number of objects in the result.
func (q *LiveQuery) Len() int {
	return len(q.items)
}

// Cancel stops tracking. Items keeps its last contents.
func (q *LiveQuery) Cancel() {
	q.ctrl.Cancel()
}

// Cancelled reports whether the query stopped tracking.
func (q *LiveQuery) Cancelled() bool {
	return q.ctrl.Cancelled()
}

// inScope reports whether obj lies in the queried part of the tree.
func (q *LiveQuery) inScope(obj *GameObject) bool {
	if q.opts.Recursive {
		return q.owner.IsAncestorOf(obj)
	}
	return obj.parent == q.owner
}

func (q *LiveQuery) index(obj *GameObject) int {
	for i, it := range q.items {
		if it == obj {
			return i
		}
	}
	return -1
}

// sync adds or removes obj after a membership-relevant change.
func (q *LiveQuery) sync(obj *GameObject) {
	want := obj.live && q.inScope(obj) && matchNames(obj, q.names, q.opts.Only, OpAnd)
	i := q.index(obj)
	switch {
	case want && i < 0:
		q.items = append(q.items, obj)
	case !want && i >= 0:
		q.removeAt(i)
	}
}

// resyncQueries re-evaluates every live query for o and its descendants
// after o moved between live parents. Moves fire no broadcast.
func (t *Tree) resyncQueries(o *GameObject) {
	if len(t.queries) == 0 {
		return
	}
	var walk func(n *GameObject)
	walk = func(n *GameObject) {
		for _, q := range t.queries {
			q.sync(n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(o)
}

func (t *Tree) removeQuery(q *LiveQuery) {
	for i, it := range t.queries {
		if it == q {
			copy(t.queries[i:], t.queries[i+1:])
			t.queries[len(t.queries)-1] = nil
			t.queries = t.queries[:len(t.queries)-1]
			return
		}
	}
}

func (q *LiveQuery) drop(obj *GameObject) {
	if i := q.index(obj); i >= 0 {
		q.removeAt(i)
	}
}

func (q *LiveQuery) removeAt(i int) {
	copy(q.items[i:], q.items[i+1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
}

// --- Query ---

// Hierarchy selects the objects Query considers.
type Hierarchy uint8

const (
	HierarchyChildren    Hierarchy = iota // direct children
	HierarchySiblings                     // other children of the parent
	HierarchyAncestors                    // parent first, up to the root
	HierarchyDescendants                  // depth-first pre-order
)

// DistanceOp selects how QueryOpts.Distance is compared.
type DistanceOp uint8

const (
	DistanceNear DistanceOp = iota // within Distance
	DistanceFar                    // at least Distance away
)

// QueryOpts configures Query. Include and Exclude are combined with
// IncludeOp and ExcludeOp, both OpAnd by default: an object is excluded
// only when it carries every Exclude name.
type QueryOpts struct {
	Include   []string
	IncludeOp Op
	Exclude   []string
	ExcludeOp Op
	Hierarchy Hierarchy
	// Visible keeps only objects that are not hidden themselves or through
	// an ancestor.
	Visible bool
	// Distance, when positive, keeps objects whose world position is within
	// (or, with DistanceFar, beyond) Distance of this object's.
	Distance   float64
	DistanceOp DistanceOp
}

// Query returns a one-shot filtered selection relative to o.
func (o *GameObject) Query(opts QueryOpts) []*GameObject {
	var candidates []*GameObject
	switch opts.Hierarchy {
	case HierarchySiblings:
		if o.parent != nil {
			for _, c := range o.parent.children {
				if c != o {
					candidates = append(candidates, c)
				}
			}
		}
	case HierarchyAncestors:
		for p := o.parent; p != nil; p = p.parent {
			candidates = append(candidates, p)
		}
	case HierarchyDescendants:
		candidates = o.Get(nil, GetOpts{Recursive: true})
	default:
		candidates = append(candidates, o.children...)
	}

	var self Vec2
	if opts.Distance > 0 {
		self = o.WorldPos()
	}
	out := candidates[:0]
	for _, c := range candidates {
		if !matchNames(c, opts.Include, OnlyBoth, opts.IncludeOp) {
			continue
		}
		if len(opts.Exclude) > 0 && matchNames(c, opts.Exclude, OnlyBoth, opts.ExcludeOp) {
			continue
		}
		if opts.Visible && !c.Visible() {
			continue
		}
		if opts.Distance > 0 {
			d := self.Dist(c.WorldPos())
			if opts.DistanceOp == DistanceFar && d < opts.Distance {
				continue
			}
			if opts.DistanceOp == DistanceNear && d > opts.Distance {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Visible reports whether neither the object nor any ancestor is hidden.
func (o *GameObject) Visible() bool {
	for p := o; p != nil; p = p.parent {
		if p.hidden {
			return false
		}
	}
	return true
}
