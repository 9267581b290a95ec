package bramble

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// --- Test components ---

type posComp struct {
	X, Y float64
}

func (p *posComp) ID() string { return "pos" }

type areaComp struct {
	W, H float64
}

func (a *areaComp) ID() string { return "area" }
func (a *areaComp) Require() []string { return []string{"pos"} }

// otherPos collides with posComp on X and Y.
type otherPos struct {
	X, Y float64
}

func (o *otherPos) ID() string { return "otherpos" }

type lifecycle struct {
	name   string
	events *[]string
}

func (l *lifecycle) ID() string { return l.name }

func (l *lifecycle) Props() []string { return nil }

func (l *lifecycle) Add(obj *GameObject) {
	*l.events = append(*l.events, l.name+":add")
}

func (l *lifecycle) Destroy(obj *GameObject) {
	*l.events = append(*l.events, l.name+":destroy")
}

type inspected struct{}

func (i *inspected) ID() string { return "inspected" }
func (i *inspected) Inspect() string { return "n=1" }

func newTestTree() *Tree {
	return NewTree(DefaultConfig())
}

// --- Make ---

func TestMakeResolvesArguments(t *testing.T) {
	o, err := Make(&posComp{X: 1}, Tag("a"), Tags{"b", "c"}, []string{"d"}, WithName("thing"), WithZ(3))
	if err != nil {
		t.Fatal(err)
	}
	if o.Name != "thing" || o.Z != 3 {
		t.Errorf("options not applied: name=%q z=%d", o.Name, o.Z)
	}
	if !reflect.DeepEqual(o.Tags(), []string{"a", "b", "c", "d"}) {
		t.Errorf("Tags = %v", o.Tags())
	}
	if !o.Has("pos") {
		t.Error("component should be attached")
	}
	if o.ID() == 0 {
		t.Error("made objects should have a non-zero ID")
	}
	if o.Scale != (Vec2{1, 1}) {
		t.Errorf("Scale = %v, want {1 1}", o.Scale)
	}
}

func TestMakeDefersDependencyCheck(t *testing.T) {
	o, err := Make(&areaComp{})
	if err != nil {
		t.Fatalf("Make should not check dependencies: %v", err)
	}
	tree := newTestTree()
	if err := tree.Root().AddChild(o); !errors.Is(err, ErrDependency) {
		t.Fatalf("AddChild err = %v, want ErrDependency", err)
	}
	if o.Parent() != nil || o.Live() {
		t.Error("failed attach should leave the object detached")
	}
}

func TestMakeRejectsInvalidComponents(t *testing.T) {
	for _, c := range []any{nil, func() {}} {
		if _, err := Make(c); !errors.Is(err, ErrInvalidComponent) {
			t.Errorf("Make(%T) err = %v, want ErrInvalidComponent", c, err)
		}
	}
}

func TestMakeUnknownMaskMode(t *testing.T) {
	if _, err := Make(WithMask(MaskMode(42))); !errors.Is(err, ErrUnknownMaskMode) {
		t.Errorf("err = %v, want ErrUnknownMaskMode", err)
	}
}

// --- Use / Unuse ---

func TestUsePropertyConflict(t *testing.T) {
	o := MustMake(&posComp{})
	err := o.Use(&otherPos{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Existing != "pos" || ce.Incoming != "otherpos" {
		t.Errorf("ConflictError = %+v", ce)
	}
	if !reflect.DeepEqual(o.CompIDs(), []string{"pos"}) {
		t.Errorf("CompIDs = %v, want [pos]", o.CompIDs())
	}
	if owner, _ := o.PropOwner("X"); owner != "pos" {
		t.Errorf("PropOwner(X) = %q, want pos", owner)
	}
}

func TestUseDependencyGate(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()

	err := o.Use(&areaComp{})
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("err = %v, want ErrDependency", err)
	}
	if o.Has("area") {
		t.Error("failed Use should not attach")
	}

	o.MustUse(&posComp{})
	if err := o.Use(&areaComp{}); err != nil {
		t.Fatalf("Use after dependency attached: %v", err)
	}
	if !o.Has("pos", "area") {
		t.Error("both components should be attached")
	}
}

func TestUnuseRequired(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd(&posComp{}, &areaComp{})

	err := o.Unuse("pos")
	if !errors.Is(err, ErrRequired) {
		t.Fatalf("err = %v, want ErrRequired", err)
	}
	if !o.Has("pos") {
		t.Error("required component should stay attached")
	}

	if err := o.Unuse("area"); err != nil {
		t.Fatal(err)
	}
	if err := o.Unuse("pos"); err != nil {
		t.Fatal(err)
	}
	if o.NumComps() != 0 {
		t.Errorf("NumComps = %d, want 0", o.NumComps())
	}
	if _, ok := o.PropOwner("X"); ok {
		t.Error("properties should be released on Unuse")
	}
	if err := o.Unuse("missing"); err != nil {
		t.Errorf("Unuse of absent id: %v", err)
	}
}

func TestUseReplacesSameID(t *testing.T) {
	var events []string
	tree := newTestTree()
	o := tree.Root().MustAdd(&lifecycle{name: "life", events: &events})
	o.MustUse(&lifecycle{name: "life", events: &events})

	want := []string{"life:add", "life:destroy", "life:add"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if o.NumComps() != 1 {
		t.Errorf("NumComps = %d, want 1", o.NumComps())
	}
}

func TestUseReplacementKeepsOwnProperties(t *testing.T) {
	o := MustMake(&posComp{X: 1})
	if err := o.Use(&posComp{X: 2}); err != nil {
		t.Fatalf("replacing pos with pos should not conflict: %v", err)
	}
	p := MustComp[*posComp](o)
	if p.X != 2 {
		t.Errorf("X = %v, want 2", p.X)
	}
	if owner, _ := o.PropOwner("Y"); owner != "pos" {
		t.Errorf("PropOwner(Y) = %q, want pos", owner)
	}
}

func TestUseLiveBroadcasts(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()

	var local, global []string
	o.OnUse(func(id string) { local = append(local, "use:"+id) })
	o.OnUnuse(func(id string) { local = append(local, "unuse:"+id) })
	tree.OnUse(func(e CompEvent) { global = append(global, "use:"+e.ID) })
	tree.OnUnuse(func(e CompEvent) { global = append(global, "unuse:"+e.ID) })

	o.MustUse(&posComp{})
	if err := o.Unuse("pos"); err != nil {
		t.Fatal(err)
	}
	want := []string{"use:pos", "unuse:pos"}
	if !reflect.DeepEqual(local, want) {
		t.Errorf("local = %v, want %v", local, want)
	}
	if !reflect.DeepEqual(global, want) {
		t.Errorf("global = %v, want %v", global, want)
	}
}

func TestAnonymousComponents(t *testing.T) {
	type blob struct{ Data int }
	o := MustMake(&blob{Data: 1})
	if o.NumComps() != 1 || len(o.CompIDs()) != 0 {
		t.Errorf("NumComps = %d CompIDs = %v", o.NumComps(), o.CompIDs())
	}
	if owner, _ := o.PropOwner("Data"); owner != anonymousOwner {
		t.Errorf("PropOwner(Data) = %q, want %q", owner, anonymousOwner)
	}
	b, ok := Comp[*blob](o)
	if !ok || b.Data != 1 {
		t.Error("Comp should find anonymous components by type")
	}
	err := o.Use(&blob{})
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Existing != anonymousOwner {
		t.Errorf("second anonymous blob: err = %v", err)
	}
}

func TestSubscriptionsInAddHookAreCleanedUp(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	calls := 0
	c := &hookComp{add: func(obj *GameObject) {
		obj.On("ping", func(...any) { calls++ })
	}}
	o.MustUse(c)
	o.Trigger("ping")
	if err := o.Unuse("hook"); err != nil {
		t.Fatal(err)
	}
	o.Trigger("ping")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if o.NumListeners("ping") != 0 {
		t.Error("subscription made in Add should be cancelled on Unuse")
	}
}

type hookComp struct {
	add func(*GameObject)
}

func (h *hookComp) ID() string { return "hook" }
func (h *hookComp) Props() []string { return nil }
func (h *hookComp) Add(obj *GameObject) { h.add(obj) }

func TestHasVariants(t *testing.T) {
	o := MustMake(&posComp{})
	if !o.Has("pos") || o.Has("pos", "area") {
		t.Error("Has should require every id")
	}
	if !o.HasAny("area", "pos") || o.HasAny("area") {
		t.Error("HasAny should require one id")
	}
	if !o.HasOp(OpOr, "x", "pos") {
		t.Error("HasOp(OpOr) should match one id")
	}
}

func TestCompAccessors(t *testing.T) {
	o := MustMake(&posComp{X: 4})
	if v, ok := CompByID(o, "pos"); !ok || v.(*posComp).X != 4 {
		t.Error("CompByID should return the attached instance")
	}
	if _, ok := CompByID(o, "area"); ok {
		t.Error("CompByID should miss absent ids")
	}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustComp should panic when absent")
		}
		if !strings.Contains(r.(string), "areaComp") {
			t.Errorf("panic %q should name the type", r)
		}
	}()
	MustComp[*areaComp](o)
}

func TestInspect(t *testing.T) {
	o := MustMake(&inspected{}, &posComp{})
	if got := o.Inspect(); got != "inspected: n=1" {
		t.Errorf("Inspect = %q", got)
	}
}

func TestUseOnDestroyed(t *testing.T) {
	o := MustMake()
	o.Destroy()
	if err := o.Use(&posComp{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

// --- Tags ---

func TestTagBroadcasts(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	var got []string
	o.OnTag(func(tag string) { got = append(got, "tag:"+tag) })
	o.OnUntag(func(tag string) { got = append(got, "untag:"+tag) })
	tree.OnTag(func(e TagEvent) { got = append(got, "global:"+e.Tag) })

	o.Tag("a", "a", "b")
	o.Untag("a", "zzz")

	want := []string{"tag:a", "global:a", "tag:b", "global:b", "untag:a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIsWithComponentIDsAsTags(t *testing.T) {
	o := MustMake(&posComp{}, Tag("hero"))
	if o.Is("pos") {
		t.Error("detached object should not treat component ids as tags")
	}

	cfg := DefaultConfig()
	cfg.ComponentIDsAsTags = true
	tree := NewTree(cfg)
	if err := tree.Root().AddChild(o); err != nil {
		t.Fatal(err)
	}
	if !o.Is("pos", "hero") {
		t.Error("component ids should match as tags")
	}
	if !o.IsOp(OpOr, "missing", "pos") {
		t.Error("IsOp(OpOr) should match one name")
	}
	if o.HasTag("pos") {
		t.Error("HasTag should ignore component ids")
	}
}
