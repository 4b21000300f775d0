// Package ext implements component G, the Extension ABI: the registration
// contract a native module uses to expose functions, structure templates
// and constants to script code (spec.md §4.G).
//
// A native module itself (serial I/O, array builtins, a concrete C
// extension) is explicitly out of this core's scope (spec.md §1: "Only
// the plugin contract they consume is specified"). What this package
// specifies and implements is that contract: the registration table a
// module's Go init code populates, and the YAML manifest
// (`hybris.module.yaml`) a module ships describing its constants and
// structure templates — the same shape the teacher's own
// `funxy.yaml` config plays for Go-interop dependencies, retargeted here
// at Hybris's native-module surface instead of Go-binding generation.
package ext

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// NativeFunc is the signature every registered native function must have.
// A native function receives the VM handle and the argv vector; the
// calling frame is not passed to it. It checks each argument's Kind itself
// before use and reports failure through its returned error (an
// herror.Error for host failures). VM is declared as `any` here to avoid a
// dependency cycle with internal/vm, which depends on this package to
// register native modules with itself.
type NativeFunc func(vm any, argv []*value.Value) (*value.Value, error)

// Constant is an integer value a module's initializer binds into the
// global frame (spec.md §4.G "constants").
type Constant struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

// StructureTemplate is a named record type with a fixed attribute list
// (spec.md §4.G "structure templates"; spec.md §3 "structure-instance").
type StructureTemplate struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// Manifest is a native module's declared surface: the constants and
// structure templates its initializer registers, plus the list of
// function names the registration table is expected to carry (checked
// against the table actually supplied in code — see NewModule).
//
// This is grounded on stdlib/std/type/array.cc's shape (a name, a flat
// function table, nothing else) while keeping the teacher's
// `gopkg.in/yaml.v3`-based config file as the concrete format.
type Manifest struct {
	Name       string              `yaml:"name"`
	Functions  []string            `yaml:"functions"`
	Constants  []Constant          `yaml:"constants,omitempty"`
	Structures []StructureTemplate `yaml:"structures,omitempty"`
}

// LoadManifest reads and parses a module's hybris.module.yaml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes. path is used only for
// error messages.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate(path string) error {
	if m.Name == "" {
		return fmt.Errorf("%s: name is required", path)
	}
	if len(m.Functions) == 0 && len(m.Constants) == 0 && len(m.Structures) == 0 {
		return fmt.Errorf("%s: module %s declares no functions, constants or structures", path, m.Name)
	}
	seen := make(map[string]bool, len(m.Functions))
	for _, fn := range m.Functions {
		if seen[fn] {
			return fmt.Errorf("%s: module %s declares function %q twice", path, m.Name, fn)
		}
		seen[fn] = true
	}
	return nil
}

// Module is a loaded native module ready for registration: its manifest
// plus the Go-side registration table backing each declared function name
// (spec.md §4.G "(1) a function registration table { name,
// function-pointer } consumed by name from script code").
type Module struct {
	Manifest  *Manifest
	Functions map[string]NativeFunc
}

// NewModule pairs a manifest with its registration table, checking every
// manifest-declared function name has a corresponding Go implementation
// and vice versa — a mismatch here is a packaging bug in the module
// itself, not a runtime condition, so it is reported eagerly at load time
// rather than surfacing as an undefined-identifier error mid-script.
func NewModule(m *Manifest, fns map[string]NativeFunc) (*Module, error) {
	for _, name := range m.Functions {
		if _, ok := fns[name]; !ok {
			return nil, herror.Newf(herror.Generic, "module %s: manifest declares function %q with no implementation", m.Name, name)
		}
	}
	for name := range fns {
		if !containsName(m.Functions, name) {
			return nil, herror.Newf(herror.Generic, "module %s: implementation %q is not declared in the manifest", m.Name, name)
		}
	}
	return &Module{Manifest: m, Functions: fns}, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Call invokes the named function, type-asserting nothing itself — per
// spec.md §4.G, each native function is responsible for asserting its own
// argv's vtable type codes before use.
func (mod *Module) Call(name string, vm any, argv []*value.Value) (*value.Value, error) {
	fn, ok := mod.Functions[name]
	if !ok {
		return nil, herror.Newf(herror.Syntax, "module %s has no function %s", mod.Manifest.Name, name)
	}
	return fn(vm, argv)
}

// ConstantValues returns the global bindings this module's manifest declares,
// as gc-unregistered handles ready for a frame.Insert at module-load time.
func (m *Manifest) ConstantValues() map[string]*value.Value {
	out := make(map[string]*value.Value, len(m.Constants))
	for _, c := range m.Constants {
		out[c.Name] = value.NewInt(c.Value)
	}
	return out
}
