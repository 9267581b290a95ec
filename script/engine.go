// Package script runs Lua-defined components on bramble objects.
//
// A script registers components with the global component function:
//
//	component("spin", {
//	    require = { "timer" },
//	    add     = function(obj) obj:tag("spinning") end,
//	    update  = function(obj, dt) obj:move(10 * dt, 0) end,
//	    destroy = function(obj) end,
//	})
//
// Engine.Component then returns a value that can be attached with Use.
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phanxgames/bramble"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	defs    map[string]*lua.LTable
	objects map[*bramble.GameObject]*lua.LUserData
}

// NewEngine creates a Lua engine with the bramble API installed.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:      vm,
		log:     log,
		defs:    make(map[string]*lua.LTable),
		objects: make(map[*bramble.GameObject]*lua.LUserData),
	}
	vm.SetGlobal("component", vm.NewFunction(e.luaComponent))
	registerObjectType(vm)
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run lua: %w", err)
	}
	return nil
}

// DoFile runs a Lua file.
func (e *Engine) DoFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// LoadDir loads all .lua files in a directory. A missing directory is not an error.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := e.DoFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Defined reports whether a script registered a component called name.
func (e *Engine) Defined(name string) bool {
	_, ok := e.defs[name]
	return ok
}

// Component returns a new instance of the scripted component called name.
func (e *Engine) Component(name string) (*Component, error) {
	def, ok := e.defs[name]
	if !ok {
		return nil, fmt.Errorf("script: component %q is not defined", name)
	}
	c := &Component{engine: e, id: name, def: def}
	if req, ok := def.RawGetString("require").(*lua.LTable); ok {
		req.ForEach(func(_, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				c.requires = append(c.requires, string(s))
			}
		})
	}
	return c, nil
}

// luaComponent implements component(name, def).
func (e *Engine) luaComponent(L *lua.LState) int {
	name := L.CheckString(1)
	def := L.CheckTable(2)
	if _, dup := e.defs[name]; dup {
		e.log.Warn("lua component redefined", zap.String("component", name))
	}
	e.defs[name] = def
	return 0
}

// call runs a hook of def if present. Errors panic so the tree reports
// them on its error channel.
func (e *Engine) call(c *Component, hook string, args ...lua.LValue) {
	fn, ok := c.def.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		panic(fmt.Errorf("lua %s.%s: %w", c.id, hook, err))
	}
}

// object returns the cached userdata wrapping o.
func (e *Engine) object(o *bramble.GameObject) *lua.LUserData {
	if ud, ok := e.objects[o]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = o
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(objectTypeName))
	e.objects[o] = ud
	return ud
}

// Component is a bramble component whose hooks are Lua functions.
type Component struct {
	engine   *Engine
	id       string
	def      *lua.LTable
	requires []string
}

func (c *Component) ID() string { return c.id }

func (c *Component) Require() []string { return c.requires }

// Props implements bramble.PropertyProvider. Scripted state lives in Lua,
// so nothing is merged into the host.
func (c *Component) Props() []string { return nil }

func (c *Component) Add(obj *bramble.GameObject) {
	c.engine.call(c, "add", c.engine.object(obj))
}

func (c *Component) Update(obj *bramble.GameObject, dt float64) {
	c.engine.call(c, "update", c.engine.object(obj), lua.LNumber(dt))
}

func (c *Component) Destroy(obj *bramble.GameObject) {
	defer func() {
		if !obj.Exists() {
			delete(c.engine.objects, obj)
		}
	}()
	c.engine.call(c, "destroy", c.engine.object(obj))
}

func (c *Component) Inspect() string {
	return "lua " + c.id
}
