package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateTable is returned when a table number is registered twice.
var ErrDuplicateTable = errors.New("duplicate table")

// Registry holds the table definitions of one source family. Definitions
// are immutable once registered; a Registry is safe for concurrent use.
type Registry struct {
	name string

	mu     sync.RWMutex
	tables map[int]TableDefinition
}

// NewRegistry creates an empty registry. name labels it in logs and listings.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:   name,
		tables: make(map[int]TableDefinition),
	}
}

// Name returns the registry's display name.
func (r *Registry) Name() string { return r.name }

// Register adds a table definition. The template is checked against its
// strategy here, so a mismatched template never reaches resolution.
func (r *Registry) Register(def TableDefinition) error {
	if def.Info.ID <= 0 {
		return fmt.Errorf("register %q: table number must be positive, got %d", def.Info.Name, def.Info.ID)
	}
	if def.Info.Name == "" {
		return fmt.Errorf("register table %d: name is required", def.Info.ID)
	}
	if err := def.Template.Validate(def.Info.Strategy); err != nil {
		return fmt.Errorf("register table %d (%s): %w", def.Info.ID, def.Info.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tables[def.Info.ID]; ok {
		return fmt.Errorf("%w: table %d already registered as %q", ErrDuplicateTable, def.Info.ID, existing.Info.Name)
	}
	r.tables[def.Info.ID] = def
	return nil
}

// MustRegister is Register for init-time tables. It panics on error.
func (r *Registry) MustRegister(def TableDefinition) {
	if err := r.Register(def); err != nil {
		panic(err.Error())
	}
}

// Get returns a table definition by number.
// Returns false if not found.
func (r *Registry) Get(id int) (TableDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tables[id]
	return def, ok
}

// All returns every definition sorted by table number.
func (r *Registry) All() []TableDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]TableDefinition, 0, len(r.tables))
	for _, def := range r.tables {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.ID < result[j].Info.ID
	})
	return result
}

// Infos returns display information for every table, sorted by number.
func (r *Registry) Infos() []TableInfo {
	defs := r.All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// IDs returns the registered table numbers in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TableCount returns the number of registered tables.
func (r *Registry) TableCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = make(map[int]TableDefinition)
}
