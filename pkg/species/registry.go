package species

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry maps lowercase names to profiles.
type Registry struct {
	profiles map[string]Profile
	order    []string
}

// NewRegistry returns a registry holding the presets.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range Presets() {
		r.put(p)
	}
	return r
}

func (r *Registry) put(p Profile) {
	key := strings.ToLower(p.Name)
	if _, ok := r.profiles[key]; !ok {
		r.order = append(r.order, key)
	}
	r.profiles[key] = p
}

// Register adds or replaces a profile after validating it.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.put(p)
	return nil
}

// Lookup returns the profile with the given name, case-insensitively.
func (r *Registry) Lookup(name string) (Profile, bool) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Get returns the named profile, or the default profile when the name is unknown.
func (r *Registry) Get(name string) Profile {
	if p, ok := r.Lookup(name); ok {
		return p
	}
	if p, ok := r.profiles[DefaultName]; ok {
		return p
	}
	return Presets()[0]
}

// Names returns profile names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.profiles[key].Name)
	}
	return names
}

// SortedNames returns profile names in alphabetical order.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}

// Lookup finds a preset by name, falling back to the default profile.
func Lookup(name string) Profile {
	return NewRegistry().Get(name)
}

// File is the on-disk layout of a species file.
type File struct {
	Species []Profile `yaml:"species"`
}

// Parse decodes and validates profiles from YAML.
func Parse(data []byte) ([]Profile, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing species: %w", err)
	}
	for i := range f.Species {
		if f.Species[i].LeafType == "" {
			f.Species[i].LeafType = LeafQuad
		}
		if err := f.Species[i].Validate(); err != nil {
			return nil, fmt.Errorf("species %d: %w", i, err)
		}
	}
	return f.Species, nil
}

// LoadFile reads profiles from a YAML file.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes profiles in the File layout.
func Marshal(profiles []Profile) ([]byte, error) {
	return yaml.Marshal(File{Species: profiles})
}
