package parserorch

import "strings"

// Registry keeps front-ends keyed by extension. Collisions are resolved by
// registration order (§4.1): the first front-end registered for an
// extension wins and later registrations for the same extension are
// recorded but never dispatched to.
type Registry struct {
	byExtension map[string]FrontEnd
	frontEnds   []FrontEnd
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string]FrontEnd)}
}

// Register adds a front-end for every extension it declares that isn't
// already claimed. It always appends to the ordered front-end list so
// Registry.FrontEnds() reflects registration order even for extensions
// that lost the collision.
func (r *Registry) Register(fe FrontEnd) {
	r.frontEnds = append(r.frontEnds, fe)
	for _, ext := range fe.Extensions() {
		ext = normalizeExt(ext)
		if _, exists := r.byExtension[ext]; exists {
			continue
		}
		r.byExtension[ext] = fe
	}
}

// Lookup returns the front-end registered for file's extension, if any.
func (r *Registry) Lookup(file string) (FrontEnd, bool) {
	ext := extensionOf(file)
	fe, ok := r.byExtension[ext]
	return fe, ok
}

// FrontEnds returns every registered front-end in registration order.
func (r *Registry) FrontEnds() []FrontEnd {
	out := make([]FrontEnd, len(r.frontEnds))
	copy(out, r.frontEnds)
	return out
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

func extensionOf(file string) string {
	idx := strings.LastIndex(file, ".")
	slash := strings.LastIndexAny(file, "/\\")
	if idx == -1 || idx < slash {
		return ""
	}
	return file[idx:]
}
