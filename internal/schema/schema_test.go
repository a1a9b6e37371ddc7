package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orrery-systems/ecsdb/internal/ecs"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "components.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}
	return path
}

func TestLoad_ParsesComponentList(t *testing.T) {
	path := writeManifest(t, `
components:
  - name: position
    size_hint: 16
    deleter: false
  - name: inventory_slot
    size_hint: 64
    deleter: true
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(m.Components))
	}
	if m.Components[0].Name != "position" || m.Components[0].SizeHint != 16 || m.Components[0].Deleter {
		t.Fatalf("Components[0] = %+v, unexpected", m.Components[0])
	}
	if m.Components[1].Name != "inventory_slot" || !m.Components[1].Deleter {
		t.Fatalf("Components[1] = %+v, unexpected", m.Components[1])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("Load should fail for a nonexistent file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeManifest(t, "components: [this is not: a valid list")
	if _, err := Load(path); err == nil {
		t.Fatalf("Load should fail for malformed YAML")
	}
}

func TestApply_RegistersEveryComponentInOrder(t *testing.T) {
	m := &Manifest{Components: []ComponentSpec{
		{Name: "alpha", SizeHint: 4},
		{Name: "beta", SizeHint: 8},
	}}
	r := ecs.NewRegistry(nil, ecs.RegistryOptions{})

	pools := Apply(r, m, nil)
	if len(pools) != 2 {
		t.Fatalf("Apply returned %d pools, want 2", len(pools))
	}

	got, ok := r.BinaryComponent("alpha")
	if !ok || got != pools[0] {
		t.Fatalf("registry does not expose the pool Apply registered for alpha")
	}
	got, ok = r.BinaryComponent("beta")
	if !ok || got != pools[1] {
		t.Fatalf("registry does not expose the pool Apply registered for beta")
	}
}

func TestApply_BuildsDeleterOnlyWhenRequested(t *testing.T) {
	m := &Manifest{Components: []ComponentSpec{
		{Name: "with-deleter", Deleter: true},
		{Name: "without-deleter", Deleter: false},
	}}
	r := ecs.NewRegistry(nil, ecs.RegistryOptions{})

	var builtFor []string
	build := func(spec ComponentSpec) ecs.BinaryDeleter {
		builtFor = append(builtFor, spec.Name)
		return func(data []byte) {}
	}

	Apply(r, m, build)
	if len(builtFor) != 1 || builtFor[0] != "with-deleter" {
		t.Fatalf("build invoked for %v, want only [with-deleter]", builtFor)
	}
}

func TestApply_NilBuildFuncNeverCalled(t *testing.T) {
	m := &Manifest{Components: []ComponentSpec{{Name: "x", Deleter: true}}}
	r := ecs.NewRegistry(nil, ecs.RegistryOptions{})

	pools := Apply(r, m, nil)
	if len(pools) != 1 {
		t.Fatalf("Apply with nil build should still register the pool: got %d pools", len(pools))
	}
}
