package bramble

import (
	"fmt"
	"reflect"
	"sync"
)

// A component is any non-nil Go value, usually a pointer to a struct. It
// opts into identity, dependencies, and lifecycle hooks by implementing the
// interfaces below. The exported fields and exported methods of its type,
// minus the hook methods, are the properties it contributes to its host;
// no two components on one object may contribute the same property.

// Identified components are addressable by ID and replaced on re-attach.
type Identified interface {
	ID() string
}

// Requirer components list the identities that must already be attached.
type Requirer interface {
	Require() []string
}

// PropertyProvider components declare their properties explicitly instead
// of having them derived from their type.
type PropertyProvider interface {
	Props() []string
}

// Adder components run Add when their host enters a live tree, or
// immediately when attached to a live host.
type Adder interface {
	Add(obj *GameObject)
}

// Updater components run every Update pass while the host is not paused.
type Updater interface {
	Update(obj *GameObject, dt float64)
}

// FixedUpdater components run every fixed step while the host is not paused.
type FixedUpdater interface {
	FixedUpdate(obj *GameObject, dt float64)
}

// Drawer components draw their host during the draw pass.
type Drawer interface {
	Draw(obj *GameObject, dc *DrawContext)
}

// Destroyer components run Destroy when detached or when the host is destroyed.
type Destroyer interface {
	Destroy(obj *GameObject)
}

// Inspector components describe their state for debugging.
type Inspector interface {
	Inspect() string
}

// reservedProps are hook and metadata method names that never count as
// contributed properties.
var reservedProps = map[string]bool{
	"ID":          true,
	"Require":     true,
	"Props":       true,
	"Add":         true,
	"Update":      true,
	"FixedUpdate": true,
	"Draw":        true,
	"Destroy":     true,
	"Inspect":     true,
}

// propCache memoizes the derived property list per dynamic type.
var propCache sync.Map // reflect.Type -> []string

func componentID(c any) string {
	if i, ok := c.(Identified); ok {
		return i.ID()
	}
	return ""
}

func componentRequires(c any) []string {
	if r, ok := c.(Requirer); ok {
		return r.Require()
	}
	return nil
}

func ownerName(id string) string {
	if id == "" {
		return anonymousOwner
	}
	return id
}

// componentProps returns the property names a component contributes.
func componentProps(c any) []string {
	if p, ok := c.(PropertyProvider); ok {
		return p.Props()
	}
	t := reflect.TypeOf(c)
	if cached, ok := propCache.Load(t); ok {
		return cached.([]string)
	}

	var props []string
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !reservedProps[m.Name] {
			props = append(props, m.Name)
		}
	}
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(st) {
			if f.Anonymous || !f.IsExported() || reservedProps[f.Name] {
				continue
			}
			props = append(props, f.Name)
		}
	}
	propCache.Store(t, props)
	return props
}

// validComponent rejects values that are obviously not components.
func validComponent(c any) error {
	switch c.(type) {
	case nil:
		return fmt.Errorf("%w: nil", ErrInvalidComponent)
	case string, Tag, Tags, []string, Option:
		return fmt.Errorf("%w: %T is not a component", ErrInvalidComponent, c)
	}
	if reflect.TypeOf(c).Kind() == reflect.Func {
		return fmt.Errorf("%w: %T is not a component", ErrInvalidComponent, c)
	}
	return nil
}

// --- Typed accessors ---

// Comp returns the first attached component whose dynamic type is T.
func Comp[T any](o *GameObject) (T, bool) {
	for _, st := range o.comps {
		if v, ok := st.value.(T); ok {
			return v, true
		}
	}
	for _, st := range o.anon {
		if v, ok := st.value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// MustComp is like Comp but panics when no component of type T is attached.
func MustComp[T any](o *GameObject) T {
	v, ok := Comp[T](o)
	if !ok {
		panic(fmt.Sprintf("bramble: object %d (%q) has no component of type %v", o.id, o.Name, reflect.TypeFor[T]()))
	}
	return v
}

// CompByID returns the component attached under id.
func CompByID(o *GameObject, id string) (any, bool) {
	st := o.compIndex[id]
	if st == nil {
		return nil, false
	}
	return st.value, true
}
