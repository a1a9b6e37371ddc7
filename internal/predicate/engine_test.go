package predicate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/orrery-systems/ecsdb/internal/ecs"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("writeScript: %v", err)
	}
}

func TestEngine_CompileAndCall(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "alive.lua", `
function is_low_health(entity, value)
  return value.hp < 10
end
`)

	eng, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	pred, err := eng.Compile("is_low_health")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	type health struct{ HP int }
	if !pred(ecs.EntityFromID(1), &health{HP: 5}) {
		t.Fatalf("predicate false for HP below threshold")
	}
	if pred(ecs.EntityFromID(2), &health{HP: 50}) {
		t.Fatalf("predicate true for HP above threshold")
	}
}

func TestEngine_CompileMissingFunction(t *testing.T) {
	dir := t.TempDir()
	eng, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	_, err = eng.Compile("does_not_exist")
	if !errors.Is(err, errPredicateNotFound) {
		t.Fatalf("Compile err = %v, want errPredicateNotFound", err)
	}
}

func TestEngine_NewEngineToleratesMissingDirectory(t *testing.T) {
	eng, err := NewEngine(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err != nil {
		t.Fatalf("NewEngine should tolerate a missing scripts directory: %v", err)
	}
	defer eng.Close()
}

func TestEngine_LoadsMultipleScriptFiles(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", "function pred_a(e, v) return true end")
	writeScript(t, dir, "b.lua", "function pred_b(e, v) return false end")
	// Non-.lua files must be ignored.
	writeScript(t, dir, "notes.txt", "function pred_c(e, v) return true end")

	eng, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	if _, err := eng.Compile("pred_a"); err != nil {
		t.Fatalf("Compile(pred_a): %v", err)
	}
	if _, err := eng.Compile("pred_b"); err != nil {
		t.Fatalf("Compile(pred_b): %v", err)
	}
	if _, err := eng.Compile("pred_c"); !errors.Is(err, errPredicateNotFound) {
		t.Fatalf("Compile(pred_c) should have failed: non-.lua files must not be loaded")
	}
}

func TestBind_AdaptsPredicateToRegistryShape(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "always_true.lua", "function always_true(e, v) return true end")
	eng, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	pred, err := eng.Compile("always_true")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	type widget struct{ N int }
	bound := Bind[widget](pred)
	if !bound(ecs.EntityFromID(1), &widget{N: 1}) {
		t.Fatalf("bound predicate should delegate to the underlying Lua predicate")
	}
}
