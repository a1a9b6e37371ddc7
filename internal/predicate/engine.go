// Package predicate compiles Lua snippets into the grouping predicates
// Registry.GroupEntities takes (spec §4.E "group"), so an operator can
// change which entities a pool gets reorganized around without a
// recompile.
package predicate

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/orrery-systems/ecsdb/internal/ecs"
)

// Engine wraps a single gopher-lua VM holding every loaded predicate
// function, mirroring the teacher's scripting.Engine: one VM per engine,
// loaded once from a directory of .lua files, called many times.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a predicate engine and loads every *.lua file
// directly under scriptsDir (no subdirectories — predicates are a flat
// namespace of boolean functions, unlike the teacher's categorized
// combat/item/skill script tree).
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load predicate scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded predicate script", zap.String("file", path))
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() { e.vm.Close() }

// Predicate is a compiled Lua predicate: given an entity id and the
// entity's component value (passed to Lua as a table of its exported
// fields), it reports whether the entity should be selected.
type Predicate func(entity ecs.Entity, value any) bool

// errPredicateNotFound is returned by Compile when fnName isn't a global
// Lua function in the loaded scripts.
var errPredicateNotFound = fmt.Errorf("predicate: function not found")

// Compile looks up a global Lua function named fnName and returns a Go
// Predicate that calls it once per invocation, passing (entity, value)
// as (number, table). The Lua function must return a boolean.
func (e *Engine) Compile(fnName string) (Predicate, error) {
	fn := e.vm.GetGlobal(fnName)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s", errPredicateNotFound, fnName)
	}
	return func(entity ecs.Entity, value any) bool {
		args := []lua.LValue{lua.LNumber(entity.ID()), toLuaTable(e.vm, value)}
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			e.log.Error("predicate call error", zap.String("fn", fnName), zap.Error(err))
			return false
		}
		result := e.vm.Get(-1)
		e.vm.Pop(1)
		return result == lua.LTrue
	}, nil
}

// toLuaTable reflects a component value's exported fields into a flat
// Lua table keyed by lower-cased field name. Non-struct values (or a nil
// pointer) are passed through as an empty table.
func toLuaTable(vm *lua.LState, value any) lua.LValue {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return vm.NewTable()
		}
		rv = rv.Elem()
	}
	t := vm.NewTable()
	if rv.Kind() != reflect.Struct {
		return t
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		key := strings.ToLower(field.Name)
		switch fv := rv.Field(i); fv.Kind() {
		case reflect.String:
			t.RawSetString(key, lua.LString(fv.String()))
		case reflect.Bool:
			t.RawSetString(key, lua.LBool(fv.Bool()))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			t.RawSetString(key, lua.LNumber(fv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			t.RawSetString(key, lua.LNumber(fv.Uint()))
		case reflect.Float32, reflect.Float64:
			t.RawSetString(key, lua.LNumber(fv.Float()))
		}
	}
	return t
}

// Bind adapts a compiled Predicate into the func(ecs.Entity, *T) bool
// shape ecs.GroupEntities and ecs.GroupEntitiesShared expect.
func Bind[T any](p Predicate) func(e ecs.Entity, v *T) bool {
	return func(e ecs.Entity, v *T) bool { return p(e, v) }
}
