// Package ecs bridges a bramble tree into a [Donburi] world.
//
// [NewDonburiSink] subscribes to the tree's lifecycle broadcasts. Every
// broadcast is published as a [LifecycleEvent] on [LifecycleEventType], and
// every live object is mirrored by a Donburi entity carrying an
// [ObjectData] component that tracks its tags and component identities.
// ECS systems can then query objects without walking the scene graph.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(tree, world)
//	defer sink.Close()
//	ecs.LifecycleEventType.Subscribe(world, onLifecycle)
//	// each frame, after tree.Step:
//	ecs.LifecycleEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
