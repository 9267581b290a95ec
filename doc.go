// Package bramble is the runtime core of a component-based 2D game
// framework for [Ebitengine].
//
// Bramble provides game objects composed from plain Go components, a scene
// tree with lifecycle broadcasts, tag and component queries that can stay
// live, and an update/draw scheduler with layer and z ordering, masks, and
// render targets.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	tree := bramble.NewTree(bramble.DefaultConfig())
//	// ... add objects ...
//	bramble.Run(tree, bramble.RunConfig{
//		Title: "My Game", Width: 640, Height: 480,
//	})
//
// For full control, drive the tree yourself: call [Tree.Step] (or
// [Tree.Update] and [Tree.FixedUpdate]) once per tick and [Tree.Draw] with
// any [Renderer] once per frame. [Picture] records a frame without a GPU,
// which is how the tests and the headless profiler run.
//
// # Game objects and components
//
// A [GameObject] is built from components, tags, and options:
//
//	hero := tree.Root().MustAdd(
//		bramble.WithName("hero"), bramble.WithPos(100, 50),
//		bramble.Tag("player"),
//		bramble.NewSprite(img),
//		&Health{HP: 10},
//	)
//
// A component is any value, usually a pointer to a struct. It opts into
// behavior by implementing small interfaces: [Identified] gives it an
// identity, [Requirer] lists identities it depends on, and [Adder],
// [Updater], [FixedUpdater], [Drawer], and [Destroyer] hook it into the
// lifecycle. The exported fields and methods of a component are its
// properties; two components on one object may not share a property.
// Retrieve components with [Comp] or [CompByID].
//
// # Scene tree
//
// Objects form a tree rooted at [Tree.Root]. Attaching to a live object
// runs Add hooks and the add broadcasts for the whole entering subtree,
// parents first. Destroying an object destroys its subtree, parents first,
// after detaching it. Children inherit their parent's transform and draw
// layer.
//
// Global lifecycle events (add, destroy, use, unuse, tag, untag) are
// delivered through [Tree.OnAdd] and friends. Panics inside hooks are
// recovered per object, logged, and delivered to [Tree.OnError] as a
// [*HookError]; one bad object never stops a frame.
//
// # Queries
//
// [GameObject.Get] returns a snapshot of matching children or descendants.
// [GameObject.GetLive] returns a [LiveQuery] kept in sync with the lifecycle
// broadcasts until its owner is destroyed. [GameObject.Query] filters by
// hierarchy, include and exclude lists, visibility, and distance.
//
// # Drawing
//
// The draw pass flattens each subtree and sorts it by (layer, z), stable in
// tree order. An object with a mask ([MaskIntersect], [MaskSubtract]) draws
// itself as the stencil for its subtree; an object with a [RenderTarget]
// redirects its subtree into a [Target] such as a [Picture] or an
// [ImageTarget]. [EbitenRenderer] turns the resulting commands into pixels.
//
// Tweens use [gween]; the [ecs] sub-package mirrors the tree into a
// [Donburi] world and the script sub-package defines components in Lua.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
// [ecs]: https://pkg.go.dev/github.com/phanxgames/bramble/ecs
package bramble
