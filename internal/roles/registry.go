// registry.go -- Static role name -> Discord role ID registry.
package roles

import (
	"fmt"
	"sort"
)

// Registry is an immutable mapping from short role names to Discord role
// snowflakes. Built once at startup; lookups are case-sensitive exact
// matches. Safe for concurrent use because it is never mutated after New.
type Registry struct {
	m map[string]string
}

// New validates the mapping and returns a Registry.
// Every value must be a Discord snowflake and every name non-empty;
// a bad entry is a configuration error and should abort startup.
func New(mapping map[string]string) (*Registry, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("role registry requires at least one role")
	}
	m := make(map[string]string, len(mapping))
	for name, id := range mapping {
		if name == "" {
			return nil, fmt.Errorf("role name must not be empty (id %q)", id)
		}
		if !isSnowflake(id) {
			return nil, fmt.Errorf("role %q: %q is not a Discord snowflake", name, id)
		}
		m[name] = id
	}
	return &Registry{m: m}, nil
}

// Lookup returns the Discord role ID for name. Case-sensitive.
func (r *Registry) Lookup(name string) (string, bool) {
	id, ok := r.m[name]
	return id, ok
}

// Names returns the registered role names, sorted. Used for startup logging.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isSnowflake reports whether s is decimal digits at 64-bit scale.
func isSnowflake(s string) bool {
	if len(s) < 5 || len(s) > 20 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
