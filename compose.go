package bramble

// Use attaches a component. A component whose identity is already attached
// replaces the previous instance, which is torn down first. On error the
// object is left exactly as it was.
//
// On a live object the component's requirements are checked immediately
// and its Add hook runs before the local and global use broadcast. On an
// object outside a tree the checks wait until it is attached.
func (o *GameObject) Use(c any) error {
	if o.destroyed {
		return ErrDestroyed
	}
	if err := validComponent(c); err != nil {
		return err
	}
	id := componentID(c)
	props := componentProps(c)

	for _, p := range props {
		owner, ok := o.props[p]
		if !ok || (id != "" && owner == id) {
			continue
		}
		return &ConflictError{Property: p, Existing: owner, Incoming: ownerName(id)}
	}
	if o.live {
		if err := o.checkRequires(id, c); err != nil {
			return err
		}
	}

	if old := o.compIndex[id]; id != "" && old != nil {
		o.detach(old)
	}

	st := &compState{id: id, value: c, props: props}
	if id != "" {
		if o.compIndex == nil {
			o.compIndex = make(map[string]*compState)
		}
		o.compIndex[id] = st
		o.comps = append(o.comps, st)
	} else {
		o.anon = append(o.anon, st)
	}
	if len(props) > 0 && o.props == nil {
		o.props = make(map[string]string)
	}
	owner := ownerName(id)
	for _, p := range props {
		o.props[p] = owner
	}
	o.addCleanup(st, func() {
		for _, p := range st.props {
			if o.props[p] == owner {
				delete(o.props, p)
			}
		}
	})
	o.bindHooks(st)

	if o.live {
		o.runAddHook(st)
		if !o.live {
			return nil
		}
		o.events.Trigger(EventUse, id)
		o.tree.bus.Use.Trigger(CompEvent{Object: o, ID: id})
	}
	return nil
}

// MustUse is like Use but panics on error.
func (o *GameObject) MustUse(c any) {
	if err := o.Use(c); err != nil {
		panic(err)
	}
}

// bindHooks registers the component's per-frame hooks on the dedicated
// channels and files their cancel handles as cleanups.
func (o *GameObject) bindHooks(st *compState) {
	c := st.value
	if u, ok := c.(Updater); ok {
		ctrl := o.onUpdate.Add(func(dt float64) { u.Update(o, dt) })
		o.addCleanup(st, ctrl.Cancel)
	}
	if u, ok := c.(FixedUpdater); ok {
		ctrl := o.onFixedUpdate.Add(func(dt float64) { u.FixedUpdate(o, dt) })
		o.addCleanup(st, ctrl.Cancel)
	}
	if d, ok := c.(Drawer); ok {
		ctrl := o.onDraw.Add(func(dc *DrawContext) { d.Draw(o, dc) })
		o.addCleanup(st, ctrl.Cancel)
	}
}

// runAddHook calls the component's Add hook with subscriptions it makes
// filed under the component.
func (o *GameObject) runAddHook(st *compState) {
	a, ok := st.value.(Adder)
	if !ok {
		return
	}
	prev := o.curComp
	o.curComp = st
	defer func() { o.curComp = prev }()
	o.tree.guard(o, "add", func() { a.Add(o) })
}

// checkRequires validates c's requirements against the attached identities.
func (o *GameObject) checkRequires(id string, c any) error {
	for _, req := range componentRequires(c) {
		if req == id {
			continue
		}
		if o.compIndex[req] == nil {
			return &DependencyError{Component: ownerName(id), Requires: req}
		}
	}
	return nil
}

// Unuse detaches the component with the given identity. It fails if another
// attached component requires it, and is a no-op if nothing is attached
// under id.
func (o *GameObject) Unuse(id string) error {
	st := o.compIndex[id]
	if st == nil {
		return nil
	}
	for _, other := range o.allComps() {
		if other == st {
			continue
		}
		for _, req := range componentRequires(other.value) {
			if req == id {
				return &DependencyError{Component: ownerName(other.id), Requires: id, removal: true}
			}
		}
	}
	o.detach(st)
	return nil
}

// detach removes a named component, broadcasts unuse, then runs its
// Destroy hook and cleanups.
func (o *GameObject) detach(st *compState) {
	delete(o.compIndex, st.id)
	for i, c := range o.comps {
		if c == st {
			copy(o.comps[i:], o.comps[i+1:])
			o.comps[len(o.comps)-1] = nil
			o.comps = o.comps[:len(o.comps)-1]
			break
		}
	}
	if o.live {
		o.events.Trigger(EventUnuse, st.id)
		o.tree.bus.Unuse.Trigger(CompEvent{Object: o, ID: st.id})
		if d, ok := st.value.(Destroyer); ok {
			o.tree.guard(o, "destroy", func() { d.Destroy(o) })
		}
	}
	fns := o.cleanups[st.id]
	delete(o.cleanups, st.id)
	for _, fn := range fns {
		fn()
	}
}

// allComps returns named components followed by anonymous ones.
func (o *GameObject) allComps() []*compState {
	out := make([]*compState, 0, len(o.comps)+len(o.anon))
	out = append(out, o.comps...)
	return append(out, o.anon...)
}

// Has reports whether every given identity is attached.
func (o *GameObject) Has(ids ...string) bool {
	return o.HasOp(OpAnd, ids...)
}

// HasAny reports whether at least one given identity is attached.
func (o *GameObject) HasAny(ids ...string) bool {
	return o.HasOp(OpOr, ids...)
}

// HasOp is Has with an explicit AND/OR combination.
func (o *GameObject) HasOp(op Op, ids ...string) bool {
	for _, id := range ids {
		ok := o.compIndex[id] != nil
		if op == OpOr && ok {
			return true
		}
		if op == OpAnd && !ok {
			return false
		}
	}
	return op == OpAnd
}

// CompIDs returns the identities of the attached components in attach order.
func (o *GameObject) CompIDs() []string {
	out := make([]string, len(o.comps))
	for i, st := range o.comps {
		out[i] = st.id
	}
	return out
}

// NumComps returns the number of attached components, named and anonymous.
func (o *GameObject) NumComps() int {
	return len(o.comps) + len(o.anon)
}

// PropOwner returns the identity of the component that contributed prop.
// Anonymous owners are reported as "<anonymous>".
func (o *GameObject) PropOwner(prop string) (string, bool) {
	owner, ok := o.props[prop]
	return owner, ok
}
