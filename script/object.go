package script

import (
	"github.com/phanxgames/bramble"
	lua "github.com/yuin/gopher-lua"
)

const objectTypeName = "bramble.object"

var objectMethods = map[string]lua.LGFunction{
	"id":      objID,
	"name":    objName,
	"pos":     objPos,
	"set_pos": objSetPos,
	"move":    objMove,
	"tag":     objTag,
	"untag":   objUntag,
	"is":      objIs,
	"has":     objHas,
	"destroy": objDestroy,
	"exists":  objExists,
	"trigger": objTrigger,
	"on":      objOn,
}

func registerObjectType(L *lua.LState) {
	mt := L.NewTypeMetatable(objectTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), objectMethods))
}

func checkObject(L *lua.LState) *bramble.GameObject {
	ud := L.CheckUserData(1)
	if o, ok := ud.Value.(*bramble.GameObject); ok {
		return o
	}
	L.ArgError(1, "object expected")
	return nil
}

func objID(L *lua.LState) int {
	L.Push(lua.LNumber(checkObject(L).ID()))
	return 1
}

func objName(L *lua.LState) int {
	L.Push(lua.LString(checkObject(L).Name))
	return 1
}

func objPos(L *lua.LState) int {
	o := checkObject(L)
	L.Push(lua.LNumber(o.Pos.X))
	L.Push(lua.LNumber(o.Pos.Y))
	return 2
}

func objSetPos(L *lua.LState) int {
	checkObject(L).SetPos(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
	return 0
}

func objMove(L *lua.LState) int {
	checkObject(L).Move(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
	return 0
}

func objTag(L *lua.LState) int {
	checkObject(L).Tag(L.CheckString(2))
	return 0
}

func objUntag(L *lua.LState) int {
	checkObject(L).Untag(L.CheckString(2))
	return 0
}

func objIs(L *lua.LState) int {
	L.Push(lua.LBool(checkObject(L).Is(L.CheckString(2))))
	return 1
}

func objHas(L *lua.LState) int {
	L.Push(lua.LBool(checkObject(L).Has(L.CheckString(2))))
	return 1
}

func objDestroy(L *lua.LState) int {
	checkObject(L).Destroy()
	return 0
}

func objExists(L *lua.LState) int {
	L.Push(lua.LBool(checkObject(L).Exists()))
	return 1
}

// objTrigger implements obj:trigger(name, ...). Arguments are converted to
// Go strings, float64s, and bools.
func objTrigger(L *lua.LState) int {
	o := checkObject(L)
	name := L.CheckString(2)
	var args []any
	for i := 3; i <= L.GetTop(); i++ {
		args = append(args, fromLua(L.Get(i)))
	}
	o.Trigger(name, args...)
	return 0
}

// objOn implements obj:on(name, fn). Subscriptions made inside a component's
// add hook are cancelled when that component is detached.
func objOn(L *lua.LState) int {
	o := checkObject(L)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)
	o.On(name, func(args ...any) {
		lv := make([]lua.LValue, len(args))
		for i, a := range args {
			lv[i] = toLua(a)
		}
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lv...); err != nil {
			panic(err)
		}
	})
	return 0
}

func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case lua.LBool:
		return bool(v)
	case *lua.LUserData:
		return v.Value
	}
	return nil
}

func toLua(v any) lua.LValue {
	switch v := v.(type) {
	case string:
		return lua.LString(v)
	case float64:
		return lua.LNumber(v)
	case int:
		return lua.LNumber(v)
	case bool:
		return lua.LBool(v)
	}
	return lua.LNil
}
