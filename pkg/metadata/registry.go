package metadata

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the in-memory view of all known projects, keyed by name.
// All mutation goes through Put/Remove under a single mutex so that no two
// projects can ever share a port or a path. Reconciliation workers hold a
// shared *Registry; the lock is held only for map/disk updates, never
// across git or bulk file I/O.
type Registry struct {
	mu       sync.Mutex
	store    *Store
	projects map[string]*Record
}

// OpenRegistry loads every record from the store into a new Registry.
func OpenRegistry(store *Store) (*Registry, error) {
	recs, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	reg := &Registry{
		store:    store,
		projects: make(map[string]*Record, len(recs)),
	}
	for _, rec := range recs {
		reg.projects[rec.Name] = rec
	}
	return reg, nil
}

// Get returns a copy of the record for name, if present.
func (r *Registry) Get(name string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.projects[name]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Names returns all project names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns copies of all records, sorted by name.
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := make([]Record, 0, len(r.projects))
	for _, rec := range r.projects {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs
}

// UsedPorts returns the ports currently held by any record, including
// frozen projects, mapped to the owning project name.
func (r *Registry) UsedPorts() map[int]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	used := make(map[int]string, len(r.projects))
	for _, rec := range r.projects {
		used[rec.Port] = rec.Name
	}
	return used
}

// Put validates the record, enforces port and path uniqueness against every
// other project, persists it, and installs it in the registry. An existing
// record with the same name is replaced.
func (r *Registry) Put(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, other := range r.projects {
		if name == rec.Name {
			continue
		}
		if other.Port == rec.Port {
			return fmt.Errorf("port %d already held by project %q", rec.Port, name)
		}
		if other.Path == rec.Path {
			return fmt.Errorf("path %s already held by project %q", rec.Path, name)
		}
	}

	if err := r.store.Save(rec); err != nil {
		return err
	}
	cp := *rec
	r.projects[rec.Name] = &cp
	return nil
}

// Remove deletes the record for name from disk and memory, freeing its
// port and path. Removing an unknown name is an error so callers cannot
// silently release resources they never held.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err := r.store.Delete(name); err != nil {
		return err
	}
	delete(r.projects, name)
	return nil
}
