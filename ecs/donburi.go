package ecs

import (
	"github.com/phanxgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Kind identifies the lifecycle broadcast a LifecycleEvent came from.
type Kind uint8

const (
	KindAdd Kind = iota
	KindDestroy
	KindUse
	KindUnuse
	KindTag
	KindUntag
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindDestroy:
		return "destroy"
	case KindUse:
		return "use"
	case KindUnuse:
		return "unuse"
	case KindTag:
		return "tag"
	case KindUntag:
		return "untag"
	}
	return "unknown"
}

// LifecycleEvent is a tree lifecycle broadcast copied into a Donburi world.
// Name is the component identity for use/unuse and the tag for tag/untag.
type LifecycleEvent struct {
	Kind     Kind
	ObjectID uint64
	Object   *bramble.GameObject
	Name     string
}

// LifecycleEventType is the Donburi event type for bramble lifecycle events.
// Subscribe to this in your ECS systems and drain it with ProcessEvents.
var LifecycleEventType = events.NewEventType[LifecycleEvent]()

// ObjectData mirrors one live bramble object.
type ObjectData struct {
	Object *bramble.GameObject
	Tags   []string
	Comps  []string
}

// ObjectComponent is the Donburi component carrying ObjectData.
var ObjectComponent = donburi.NewComponentType[ObjectData]()

// DonburiSink forwards a tree's lifecycle into a Donburi world.
type DonburiSink struct {
	world    donburi.World
	entities map[uint64]donburi.Entity
	ctrl     *bramble.EventController
}

// NewDonburiSink mirrors the objects already under the tree's root and
// subscribes to its lifecycle broadcasts.
func NewDonburiSink(tree *bramble.Tree, world donburi.World) *DonburiSink {
	s := &DonburiSink{
		world:    world,
		entities: make(map[uint64]donburi.Entity),
	}
	for _, o := range tree.Root().Get(nil, bramble.GetOpts{Recursive: true}) {
		if o.Live() {
			s.track(o)
		}
	}
	s.ctrl = bramble.JoinEventControllers(
		tree.OnAdd(func(o *bramble.GameObject) {
			s.track(o)
			s.publish(KindAdd, o, "")
		}),
		tree.OnDestroy(func(o *bramble.GameObject) {
			s.untrack(o)
			s.publish(KindDestroy, o, "")
		}),
		tree.OnUse(func(e bramble.CompEvent) {
			s.refresh(e.Object)
			s.publish(KindUse, e.Object, e.ID)
		}),
		tree.OnUnuse(func(e bramble.CompEvent) {
			s.refresh(e.Object)
			s.publish(KindUnuse, e.Object, e.ID)
		}),
		tree.OnTag(func(e bramble.TagEvent) {
			s.refresh(e.Object)
			s.publish(KindTag, e.Object, e.Tag)
		}),
		tree.OnUntag(func(e bramble.TagEvent) {
			s.refresh(e.Object)
			s.publish(KindUntag, e.Object, e.Tag)
		}),
	)
	return s
}

// Close stops forwarding. Mirrored entities are left in the world.
func (s *DonburiSink) Close() {
	s.ctrl.Cancel()
}

// Entity returns the entity mirroring the object with the given ID.
func (s *DonburiSink) Entity(objectID uint64) (donburi.Entity, bool) {
	e, ok := s.entities[objectID]
	return e, ok
}

// Len returns the number of mirrored objects.
func (s *DonburiSink) Len() int {
	return len(s.entities)
}

func (s *DonburiSink) publish(kind Kind, o *bramble.GameObject, name string) {
	LifecycleEventType.Publish(s.world, LifecycleEvent{
		Kind:     kind,
		ObjectID: o.ID(),
		Object:   o,
		Name:     name,
	})
}

func (s *DonburiSink) track(o *bramble.GameObject) {
	if _, ok := s.entities[o.ID()]; ok {
		return
	}
	e := s.world.Create(ObjectComponent)
	s.entities[o.ID()] = e
	s.refresh(o)
}

func (s *DonburiSink) untrack(o *bramble.GameObject) {
	e, ok := s.entities[o.ID()]
	if !ok {
		return
	}
	delete(s.entities, o.ID())
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
}

func (s *DonburiSink) refresh(o *bramble.GameObject) {
	e, ok := s.entities[o.ID()]
	if !ok || !s.world.Valid(e) {
		return
	}
	ObjectComponent.SetValue(s.world.Entry(e), ObjectData{
		Object: o,
		Tags:   o.Tags(),
		Comps:  o.CompIDs(),
	})
}
