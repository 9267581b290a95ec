package bramble

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// assertSingleParent checks that o appears in exactly one parent's child
// list, consistent with o.Parent(), or in none when detached.
func assertSingleParent(t *testing.T, root *GameObject, o *GameObject) {
	t.Helper()
	count := 0
	var walk func(n *GameObject)
	walk = func(n *GameObject) {
		for _, c := range n.children {
			if c == o {
				count++
				if n != o.parent {
					t.Errorf("%v listed under %v but Parent() = %v", o, n, o.parent)
				}
			}
			walk(c)
		}
	}
	walk(root)
	want := 0
	if o.parent != nil {
		want = 1
	}
	if count != want {
		t.Errorf("%v appears in %d child lists, want %d", o, count, want)
	}
}

func TestNewTreeRoot(t *testing.T) {
	tree := newTestTree()
	root := tree.Root()
	if root.ID() != 0 || root.Name != "root" {
		t.Errorf("root = %v", root)
	}
	if !root.Live() || root.Tree() != tree {
		t.Error("root should be live and belong to the tree")
	}
	root.Destroy()
	if !root.Exists() {
		t.Error("roots cannot be destroyed")
	}
}

func TestSingleParentInvariant(t *testing.T) {
	tree := newTestTree()
	root := tree.Root()
	a := root.MustAdd(WithName("a"))
	b := root.MustAdd(WithName("b"))
	c := a.MustAdd(WithName("c"))

	assertSingleParent(t, root, c)

	if err := b.AddChild(c); err != nil {
		t.Fatal(err)
	}
	assertSingleParent(t, root, c)
	if a.NumChildren() != 0 || c.Parent() != b {
		t.Error("AddChild should move c from a to b")
	}

	if err := c.SetParent(a, ParentOpts{}); err != nil {
		t.Fatal(err)
	}
	assertSingleParent(t, root, c)

	if err := a.Remove(c); err != nil {
		t.Fatal(err)
	}
	assertSingleParent(t, root, c)
	if c.Exists() {
		t.Error("Remove should destroy the child")
	}
}

func TestReparentCycleRejected(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd()
	b := a.MustAdd()
	c := b.MustAdd()

	for _, tc := range []struct {
		name          string
		parent, child *GameObject
	}{
		{"self", a, a},
		{"grandparent under grandchild", c, a},
		{"parent under child", b, a},
		{"root", a, tree.Root()},
	} {
		if err := tc.parent.AddChild(tc.child); !errors.Is(err, ErrCycle) {
			t.Errorf("%s: err = %v, want ErrCycle", tc.name, err)
		}
	}
	if c.Parent() != b || b.Parent() != a || a.Parent() != tree.Root() {
		t.Error("rejected reparent should not mutate the tree")
	}
}

func TestRemoveNotChild(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd()
	b := tree.Root().MustAdd()
	if err := a.Remove(b); !errors.Is(err, ErrNotChild) {
		t.Errorf("err = %v, want ErrNotChild", err)
	}
	if !b.Exists() {
		t.Error("b should not be destroyed")
	}
}

func TestDestroyCascade(t *testing.T) {
	tree := newTestTree()
	top := tree.Root().MustAdd(WithName("top"), Tag("x"))
	for i := 0; i < 3; i++ {
		child := top.MustAdd(Tag("x"))
		child.MustAdd(Tag("x"))
	}
	live := tree.Root().GetLive([]string{"x"}, GetOpts{Recursive: true})
	if live.Len() != 7 {
		t.Fatalf("live query has %d objects, want 7", live.Len())
	}

	local := 0
	for _, o := range tree.Root().Get(nil, GetOpts{Recursive: true}) {
		o.OnDestroy(func() { local++ })
	}
	global := 0
	tree.OnDestroy(func(*GameObject) { global++ })

	top.Destroy()

	if local != 7 || global != 7 {
		t.Errorf("destroy events local=%d global=%d, want 7 each", local, global)
	}
	if live.Len() != 0 {
		t.Errorf("live query still has %d objects", live.Len())
	}
	if tree.Root().NumChildren() != 0 {
		t.Error("root should have no children")
	}
}

func TestDestroyScenario(t *testing.T) {
	tree := newTestTree()
	root := tree.Root()
	a := root.MustAdd(Tag("a"))
	b := a.MustAdd(Tag("b"))

	var order []string
	a.OnDestroy(func() { order = append(order, "a") })
	b.OnDestroy(func() {
		order = append(order, "b")
		if b.Parent() != nil {
			t.Error("b should be detached before its destroy fires")
		}
	})

	a.Destroy()

	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Errorf("destroy order = %v, want [a b]", order)
	}
	if got := root.Get([]string{"a"}, GetOpts{Recursive: true}); len(got) != 0 {
		t.Errorf("Get(a) after destroy = %v", got)
	}
	if a.Exists() || b.Exists() {
		t.Error("a and b should no longer exist")
	}
	a.Destroy() // second destroy is a no-op
	if len(order) != 2 {
		t.Errorf("second destroy fired events: %v", order)
	}
}

func TestEnterTreeOrder(t *testing.T) {
	var events []string
	parent := MustMake(WithName("p"), &lifecycle{name: "p", events: &events})
	child := MustMake(WithName("c"), &lifecycle{name: "c", events: &events})
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 || parent.Live() {
		t.Fatal("detached subtree should not run Add hooks")
	}

	tree := newTestTree()
	tree.OnAdd(func(o *GameObject) { events = append(events, "global:"+o.Name) })
	parent.OnAdd(func() { events = append(events, "local:p") })
	if err := tree.Root().AddChild(parent); err != nil {
		t.Fatal(err)
	}
	want := []string{"p:add", "local:p", "global:p", "c:add", "global:c"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if !child.Live() || child.Tree() != tree {
		t.Error("child should be live in the tree")
	}
}

// selfDestruct destroys its host as soon as it is added.
type selfDestruct struct{}

func (s *selfDestruct) ID() string { return "selfdestruct" }

func (s *selfDestruct) Add(obj *GameObject) { obj.Destroy() }

func TestDestroyedInAddHookIsNotAdded(t *testing.T) {
	tree := newTestTree()
	var events []string
	tree.OnAdd(func(o *GameObject) { events = append(events, "add:"+o.Name) })
	tree.OnDestroy(func(o *GameObject) { events = append(events, "destroy:"+o.Name) })

	parent := MustMake(WithName("p"), &selfDestruct{})
	parent.MustAdd(WithName("c"))
	localAdd := false
	parent.OnAdd(func() { localAdd = true })
	if err := tree.Root().AddChild(parent); err != nil {
		t.Fatal(err)
	}

	// c never became live, so it broadcasts nothing.
	want := []string{"destroy:p"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if localAdd {
		t.Error("local add fired for a destroyed object")
	}
	if parent.Exists() || tree.Root().NumChildren() != 0 {
		t.Error("object should be gone from the tree")
	}
}

func TestDestroyedInLocalAddIsNotBroadcast(t *testing.T) {
	tree := newTestTree()
	added := 0
	tree.OnAdd(func(*GameObject) { added++ })
	o := MustMake()
	o.OnAdd(func() { o.Destroy() })
	if err := tree.Root().AddChild(o); err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("add broadcast fired %d times for a destroyed object", added)
	}
}

func TestDestroyedInUseHookIsNotBroadcast(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	var events []string
	tree.OnUse(func(e CompEvent) { events = append(events, "use:"+e.ID) })
	tree.OnDestroy(func(*GameObject) { events = append(events, "destroy") })

	if err := o.Use(&selfDestruct{}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(events, []string{"destroy"}) {
		t.Errorf("events = %v, want [destroy]", events)
	}
}

func TestEnterTreeValidatesWholeSubtree(t *testing.T) {
	parent := MustMake(&posComp{})
	child := MustMake(&areaComp{}) // requires pos, which the child lacks
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	tree := newTestTree()
	added := 0
	tree.OnAdd(func(*GameObject) { added++ })
	if err := tree.Root().AddChild(parent); !errors.Is(err, ErrDependency) {
		t.Fatalf("err = %v, want ErrDependency", err)
	}
	if added != 0 || parent.Live() || tree.Root().NumChildren() != 0 {
		t.Error("failed attach should not mutate anything")
	}
}

func TestMoveLiveUnderDetached(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	detached := MustMake()
	if err := detached.AddChild(o); !errors.Is(err, ErrDetachedParent) {
		t.Errorf("err = %v, want ErrDetachedParent", err)
	}
}

func TestReparentLiveFiresNoLifecycle(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd()
	b := tree.Root().MustAdd()
	c := a.MustAdd()
	events := 0
	tree.OnAdd(func(*GameObject) { events++ })
	tree.OnDestroy(func(*GameObject) { events++ })
	if err := b.AddChild(c); err != nil {
		t.Fatal(err)
	}
	if events != 0 {
		t.Errorf("reparent fired %d lifecycle events", events)
	}
}

func TestSetParentKeepPosition(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd(WithPos(100, 0))
	b := tree.Root().MustAdd(WithPos(0, 50), WithAngle(90), WithScale(2, 2))
	c := a.MustAdd(WithPos(10, 10), WithAngle(30))

	before := c.WorldPos()
	beforeAngle := affineAngle(c.Transform())
	if err := c.SetParent(b, ParentOpts{KeepPosition: true, KeepAngle: true, KeepScale: true}); err != nil {
		t.Fatal(err)
	}
	after := c.WorldPos()
	if math.Abs(after.X-before.X) > epsilon || math.Abs(after.Y-before.Y) > epsilon {
		t.Errorf("world pos moved from %v to %v", before, after)
	}
	if got := affineAngle(c.Transform()); math.Abs(got-beforeAngle) > epsilon {
		t.Errorf("world angle = %v, want %v", got, beforeAngle)
	}
	sx, sy := affineScale(c.Transform())
	if math.Abs(sx-1) > epsilon || math.Abs(sy-1) > epsilon {
		t.Errorf("world scale = (%v, %v), want (1, 1)", sx, sy)
	}
}

func TestSetParentWithoutKeep(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd()
	b := tree.Root().MustAdd(WithPos(40, 0))
	c := a.MustAdd(WithPos(5, 0))
	if err := c.SetParent(b, ParentOpts{}); err != nil {
		t.Fatal(err)
	}
	if c.Pos != (Vec2{5, 0}) {
		t.Errorf("local Pos = %v, want unchanged", c.Pos)
	}
	if got := c.WorldPos(); got != (Vec2{45, 0}) {
		t.Errorf("WorldPos = %v, want {45 0}", got)
	}
}

func TestRemoveAllAndDestroyChildren(t *testing.T) {
	tree := newTestTree()
	root := tree.Root()
	root.MustAdd(Tag("bullet"))
	root.MustAdd(Tag("bullet"))
	keep := root.MustAdd(Tag("player"))

	root.RemoveAll("bullet")
	if root.NumChildren() != 1 || root.Children()[0] != keep {
		t.Errorf("children after RemoveAll = %v", root.Children())
	}

	root.DestroyChildren()
	if root.NumChildren() != 0 || keep.Exists() {
		t.Error("DestroyChildren should destroy every child")
	}
}

func TestDestroyDuringDestroyHook(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd()
	b := a.MustAdd()
	c := a.MustAdd()
	fired := 0
	b.OnDestroy(func() {
		fired++
		c.Destroy() // sibling destroyed mid-cascade
	})
	c.OnDestroy(func() { fired++ })
	a.Destroy()
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
}

func TestTreeClose(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	tree.OnAdd(func(*GameObject) {})
	tree.Close()
	if o.Exists() {
		t.Error("Close should destroy every object")
	}
	if !tree.Bus().Closed() || tree.Bus().NumListeners() != 0 {
		t.Error("Close should tear down the bus")
	}
	tree.Close() // idempotent
}

func TestNamedLayers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layers = []string{"bg", "game", "ui"}
	tree := NewTree(cfg)
	if i, ok := tree.LayerIndex("ui"); !ok || i != 2 {
		t.Errorf("LayerIndex(ui) = %d, %v", i, ok)
	}
	o := tree.Root().MustAdd(WithLayerName("game"))
	tree.Update(0)
	if o.Layer() != 1 {
		t.Errorf("Layer = %d, want 1", o.Layer())
	}
	if _, err := tree.Root().Add(WithLayerName("nope")); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("err = %v, want ErrUnknownLayer", err)
	}
}
