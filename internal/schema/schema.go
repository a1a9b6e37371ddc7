// Package schema loads a YAML manifest describing binary components
// (spec §4.C.1, §6.3) and registers each one against a Registry — a
// human-editable stand-in for calling the C-ABI's
// register_component(handle, name, deleter) once per type.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orrery-systems/ecsdb/internal/ecs"
)

// ComponentSpec describes one binary component entry in a manifest.
type ComponentSpec struct {
	Name string `yaml:"name"`
	// SizeHint documents the expected fixed byte size for readers of the
	// manifest; the pool itself fixes its real size from the first Store
	// call (spec §4.C.1), so this is advisory only and not enforced here.
	SizeHint int  `yaml:"size_hint"`
	Deleter  bool `yaml:"deleter"`
}

// Manifest is the top-level shape of a binary-component YAML file.
type Manifest struct {
	Components []ComponentSpec `yaml:"components"`
}

// Load parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", path, err)
	}
	return &m, nil
}

// DeleterFunc builds the BinaryDeleter to attach to a component, given
// its spec; nil means the manifest didn't request one.
type DeleterFunc func(spec ComponentSpec) ecs.BinaryDeleter

// Apply registers every component in m against r, using build to derive
// each one's deleter (may be nil, in which case deleter-requesting specs
// get no deleter — Apply never fabricates behavior the caller didn't
// supply). Returns the registered pools in manifest order.
func Apply(r *ecs.Registry, m *Manifest, build DeleterFunc) []*ecs.BinaryPool {
	pools := make([]*ecs.BinaryPool, 0, len(m.Components))
	for _, spec := range m.Components {
		var deleter ecs.BinaryDeleter
		if spec.Deleter && build != nil {
			deleter = build(spec)
		}
		pools = append(pools, r.RegisterBinaryComponent(spec.Name, deleter))
	}
	return pools
}
