package env

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Resolver supplies EnvironmentConfig values by profile name.
type Resolver struct {
	mu       sync.RWMutex
	source   string
	profiles map[string]EnvironmentConfig
}

// NewResolver returns a Resolver over the given profiles. Keys are profile
// names.
func NewResolver(profiles map[string]EnvironmentConfig) *Resolver {
	r := &Resolver{}
	r.set("", profiles)
	return r
}

// LoadResolver reads a profiles file and returns a Resolver over it.
func LoadResolver(path string) (*Resolver, error) {
	r := &Resolver{}
	if err := r.Load(path); err != nil {
		return nil, err
	}
	return r, nil
}

// Load replaces the known profiles with the contents of path.
func (r *Resolver) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	profiles, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.set(path, profiles)
	return nil
}

// Parse decodes a profiles document. ext selects the format: ".yaml" and
// ".yml" are YAML, anything else is JSON with comments allowed.
func Parse(data []byte, ext string) (map[string]EnvironmentConfig, error) {
	var profiles map[string]EnvironmentConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &profiles); err != nil {
			return nil, fmt.Errorf("parsing profiles: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &profiles); err != nil {
			return nil, fmt.Errorf("parsing profiles: %w", err)
		}
	}

	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	return profiles, nil
}

func (r *Resolver) set(source string, profiles map[string]EnvironmentConfig) {
	named := make(map[string]EnvironmentConfig, len(profiles))
	for name, p := range profiles {
		p.Name = name
		named[name] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = source
	r.profiles = named
}

// Source returns the path the profiles were loaded from, if any.
func (r *Resolver) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Names returns the known profile names in sorted order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Resolve returns a copy of the named profile.
func (r *Resolver) Resolve(name string) (*EnvironmentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.profiles) == 0 {
		return nil, ErrNoProfiles
	}
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return &p, nil
}
