package form

import (
	"context"
	"fmt"
	"sort"
)

// CommitFunc persists a fully collected record and returns its id.
// A failed commit clears the form instance; the engine never retries.
type CommitFunc func(ctx context.Context, collected Values) (int64, error)

// Definition is an ordered sequence of fields plus a commit callback.
// Definitions are immutable after construction and referenced by Name
// from serialized session state, so the Name must be stable across
// restarts.
//
// INVARIANT: field keys are unique within a definition; field order is
// fixed for the lifetime of every conversation using it.
type Definition struct {
	name   string
	fields []FieldSpec
	commit CommitFunc
}

// New builds a Definition, validating key uniqueness.
// The fields slice is copied to keep the definition immutable.
func New(name string, fields []FieldSpec, commit CommitFunc) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("form: name is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("form %s: at least one field is required", name)
	}
	if commit == nil {
		return nil, fmt.Errorf("form %s: commit callback is required", name)
	}

	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Key == "" {
			return nil, fmt.Errorf("form %s: field[%d] has empty key", name, i)
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("form %s: duplicate field key %q", name, f.Key)
		}
		seen[f.Key] = true
		if f.Kind == KindReference && f.Resolve == nil {
			return nil, fmt.Errorf("form %s: reference field %q has no resolver", name, f.Key)
		}
	}

	copied := make([]FieldSpec, len(fields))
	copy(copied, fields)

	return &Definition{name: name, fields: copied, commit: commit}, nil
}

// Name returns the registry name of the form.
func (d *Definition) Name() string { return d.name }

// Len returns the number of fields.
func (d *Definition) Len() int { return len(d.fields) }

// Field returns the field at step i.
func (d *Definition) Field(i int) *FieldSpec {
	return &d.fields[i]
}

// Commit invokes the commit callback with the collected values.
func (d *Definition) Commit(ctx context.Context, collected Values) (int64, error) {
	return d.commit(ctx, collected)
}

// Registry maps form names to definitions so that a session suspended
// mid-form can be resumed from serialized state. Registration happens at
// startup; the registry is read-only afterwards.
type Registry struct {
	forms map[string]*Definition
}

// NewRegistry builds a registry from the given definitions.
// Duplicate names are rejected.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	forms := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		if _, dup := forms[d.Name()]; dup {
			return nil, fmt.Errorf("registry: duplicate form %q", d.Name())
		}
		forms[d.Name()] = d
	}
	return &Registry{forms: forms}, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.forms[name]
	return d, ok
}

// Names returns the registered form names, sorted for determinism.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.forms))
	for name := range r.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
