package langadapter

// Registry maps file extensions to the Adapter that handles them,
// mirroring the teacher's per-extension parser map in
// parser_language_setup.go but keyed on the capability interface instead
// of a raw *tree_sitter.Parser.
type Registry struct {
	byExt map[string]Adapter
}

// DefaultRegistry wires every adapter this module ships against the
// extensions it claims, matching spec.md §1's supported-language list.
func DefaultRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Adapter)}
	for _, a := range []Adapter{
		NewGo(),
		NewPython(),
		NewJavaScript(),
		NewTypeScript(),
		NewRust(),
		NewJava(),
		NewCpp(),
	} {
		r.Register(a)
	}
	return r
}

// Register adds an adapter under every extension it reports, overwriting
// any prior claim on that extension.
func (r *Registry) Register(a Adapter) {
	for _, ext := range a.Extensions() {
		r.byExt[ext] = a
	}
}

// For returns the adapter registered for the given extension, if any.
func (r *Registry) For(ext string) (Adapter, bool) {
	a, ok := r.byExt[ext]
	return a, ok
}

// Extensions returns every extension currently claimed by some adapter.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	return out
}
