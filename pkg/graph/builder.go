package graph

// Builder registers nodes under one component. Node IDs are the component
// ID and a local name joined by '/'. The first error stops all further
// registration and is reported by Err.
type Builder struct {
	g         *Graph
	component string
	err       error
}

// Under returns a Builder for an already registered component.
func (g *Graph) Under(component string) *Builder {
	return &Builder{g: g, component: component}
}

// ID returns the node ID a local name maps to.
func (b *Builder) ID(name string) string {
	return b.component + "/" + name
}

// Add registers a node and returns a reference to it. providerName is the
// name the provider knows the object by and may be empty for grants.
func (b *Builder) Add(name, providerName, kind string, spec any, deps ...string) Ref {
	ref := Ref{ID: b.ID(name), Name: providerName}
	if b.err != nil {
		return ref
	}
	b.err = b.g.Add(Node{
		ID:        ref.ID,
		Kind:      kind,
		Parent:    b.component,
		Spec:      spec,
		DependsOn: deps,
	})
	return ref
}

// Err returns the first registration error.
func (b *Builder) Err() error {
	return b.err
}
