// Package graph holds the declarative resource graph the provisioning units
// write into.
//
// A graph is a set of nodes (resource descriptors) and "must exist before"
// edges. Nodes are grouped under components, one per provisioning unit, and a
// node may depend on a whole component, meaning every node registered under
// that component (recursively).
//
// Nodes can only depend on nodes and components that were registered before
// them, so a grant can never be emitted ahead of the role or object it
// references.
//
// # Basic Usage
//
//	g := graph.New()
//	_ = g.AddComponent("core", "pkg:index:SnowflakeCore", "")
//	_ = g.Add(graph.Node{ID: "core/role", Kind: "role", Parent: "core", Spec: role})
//	_ = g.Add(graph.Node{ID: "core/grant", Kind: "grant", Parent: "core", DependsOn: []string{"core/role"}})
//
//	ordered, err := g.Sort()
//	if err != nil {
//	    log.Fatal(err)
//	}
package graph
