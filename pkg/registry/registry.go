// Package registry holds the symbol table for one generation run: reusable
// fragments, generic blueprints, schemas extracted from source, and concrete
// schemas produced by monomorphization.
//
// The registry is created once per run, populated during indexing, mutated
// only by the monomorphizer, and read-only afterwards. It has a single owner
// for the run's duration, so it carries no locking.
package registry

// Blueprint is a generic schema template. Params are ordered and positional,
// e.g. ["T", "U"] extracted from <T, U>; the body references them as $T, $U.
type Blueprint struct {
	Params []string
	Body   string
}

// Fragment is a reusable insertable text template. The body references its
// ordered params as {{param}} placeholders.
type Fragment struct {
	Params []string
	Body   string
}

// Registry stores definitions for fragments, blueprints, schemas, and
// concrete schemas. The four namespaces are independent: a name may exist
// in several of them at once. Insertion overwrites on name collision.
type Registry struct {
	fragments       map[string]Fragment
	blueprints      map[string]Blueprint
	schemas         map[string]string
	concreteSchemas map[string]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		fragments:       make(map[string]Fragment),
		blueprints:      make(map[string]Blueprint),
		schemas:         make(map[string]string),
		concreteSchemas: make(map[string]string),
	}
}

// InsertFragment registers a fragment under name, overwriting any previous one.
func (r *Registry) InsertFragment(name string, params []string, body string) {
	r.fragments[name] = Fragment{Params: params, Body: body}
}

// InsertBlueprint registers a blueprint under name, overwriting any previous one.
func (r *Registry) InsertBlueprint(name string, params []string, body string) {
	r.blueprints[name] = Blueprint{Params: params, Body: body}
}

// InsertSchema registers an extracted schema body under name.
func (r *Registry) InsertSchema(name, body string) {
	r.schemas[name] = body
}

// InsertConcreteSchema registers a monomorphized schema body under its
// mangled name.
func (r *Registry) InsertConcreteSchema(name, body string) {
	r.concreteSchemas[name] = body
}

// Fragment looks up a fragment by name.
func (r *Registry) Fragment(name string) (Fragment, bool) {
	f, ok := r.fragments[name]
	return f, ok
}

// Blueprint looks up a blueprint by name.
func (r *Registry) Blueprint(name string) (Blueprint, bool) {
	b, ok := r.blueprints[name]
	return b, ok
}

// Schema looks up an extracted schema body by name.
func (r *Registry) Schema(name string) (string, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// ConcreteSchema looks up a generated schema body by mangled name.
func (r *Registry) ConcreteSchema(name string) (string, bool) {
	s, ok := r.concreteSchemas[name]
	return s, ok
}

// HasFragment reports whether a fragment exists under name.
func (r *Registry) HasFragment(name string) bool {
	_, ok := r.fragments[name]
	return ok
}

// HasConcreteSchema reports whether a concrete schema exists under the
// mangled name.
func (r *Registry) HasConcreteSchema(name string) bool {
	_, ok := r.concreteSchemas[name]
	return ok
}

// SchemaNames returns the names of all extracted schemas.
func (r *Registry) SchemaNames() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// ConcreteSchemaNames returns the mangled names of all generated schemas.
func (r *Registry) ConcreteSchemaNames() []string {
	names := make([]string, 0, len(r.concreteSchemas))
	for name := range r.concreteSchemas {
		names = append(names, name)
	}
	return names
}
