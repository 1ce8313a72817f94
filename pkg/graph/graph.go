package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicate is returned when a node or component ID is registered twice.
	ErrDuplicate = errors.New("duplicate id")
	// ErrUnknownDependency is returned when a node depends on an ID that was not registered before it.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrUnknownParent is returned when a node or component names a parent component that does not exist.
	ErrUnknownParent = errors.New("unknown parent component")
	// ErrCycle is returned by Sort when component dependencies close a cycle.
	ErrCycle = errors.New("dependency cycle")
)

// Ref points at a created object: the graph node that creates it and the
// name the provider knows it by.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Node is a single resource descriptor in the graph.
type Node struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Parent    string   `json:"parent,omitempty"`
	Spec      any      `json:"spec,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// Validator is implemented by node specs that can check themselves. Add
// rejects a node whose spec fails validation.
type Validator interface {
	Validate() error
}

// Component groups the nodes created by one provisioning unit.
type Component struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Parent string `json:"parent,omitempty"`
}

// Graph is an append-only resource dependency graph.
type Graph struct {
	nodes      []Node
	nodeIndex  map[string]int
	components []Component
	compIndex  map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		compIndex: make(map[string]int),
	}
}

// AddComponent registers a component. An empty parent makes it top-level.
func (g *Graph) AddComponent(id, typ, parent string) error {
	if id == "" {
		return fmt.Errorf("component id is required")
	}
	if g.exists(id) {
		return fmt.Errorf("component %q: %w", id, ErrDuplicate)
	}
	if parent != "" {
		if _, ok := g.compIndex[parent]; !ok {
			return fmt.Errorf("component %q: %w %q", id, ErrUnknownParent, parent)
		}
	}
	g.compIndex[id] = len(g.components)
	g.components = append(g.components, Component{ID: id, Type: typ, Parent: parent})
	return nil
}

// Add registers a node. Every dependency must name a node or component that
// is already part of the graph.
func (g *Graph) Add(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if g.exists(n.ID) {
		return fmt.Errorf("node %q: %w", n.ID, ErrDuplicate)
	}
	if n.Parent != "" {
		if _, ok := g.compIndex[n.Parent]; !ok {
			return fmt.Errorf("node %q: %w %q", n.ID, ErrUnknownParent, n.Parent)
		}
	}
	if v, ok := n.Spec.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	seen := make(map[string]bool, len(n.DependsOn))
	deps := make([]string, 0, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if !g.exists(dep) {
			return fmt.Errorf("node %q: %w %q", n.ID, ErrUnknownDependency, dep)
		}
		if seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}
	n.DependsOn = deps

	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

func (g *Graph) exists(id string) bool {
	if _, ok := g.nodeIndex[id]; ok {
		return true
	}
	_, ok := g.compIndex[id]
	return ok
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in registration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Components returns all components in registration order.
func (g *Graph) Components() []Component {
	out := make([]Component, len(g.components))
	copy(out, g.components)
	return out
}

// Children returns the nodes registered under a component or any of its
// descendant components, in registration order.
func (g *Graph) Children(component string) []Node {
	var out []Node
	for _, n := range g.nodes {
		if g.within(n.Parent, component) {
			out = append(out, n)
		}
	}
	return out
}

// within reports whether component c is root or one of its descendants.
func (g *Graph) within(c, root string) bool {
	for c != "" {
		if c == root {
			return true
		}
		i, ok := g.compIndex[c]
		if !ok {
			return false
		}
		c = g.components[i].Parent
	}
	return false
}

// edges expands component dependencies into node indices.
// edges[i] holds the indices of the nodes node i must wait for.
func (g *Graph) edges() [][]int {
	out := make([][]int, len(g.nodes))
	for i, n := range g.nodes {
		seen := make(map[int]bool)
		for _, dep := range n.DependsOn {
			if j, ok := g.nodeIndex[dep]; ok {
				if !seen[j] {
					seen[j] = true
					out[i] = append(out[i], j)
				}
				continue
			}
			for j, m := range g.nodes {
				if g.within(m.Parent, dep) && !seen[j] {
					seen[j] = true
					out[i] = append(out[i], j)
				}
			}
		}
	}
	return out
}

// Sort returns the nodes in a deterministic topological order. Among nodes
// that are ready at the same time, registration order wins.
func (g *Graph) Sort() ([]Node, error) {
	// Rejects cycles before Kahn's algorithm would silently drop nodes.
	if _, err := g.layerIndices(); err != nil {
		return nil, err
	}
	edges := g.edges()
	indegree := make([]int, len(g.nodes))
	dependents := make([][]int, len(g.nodes))
	for i, deps := range edges {
		indegree[i] = len(deps)
		for _, j := range deps {
			dependents[j] = append(dependents[j], i)
		}
	}

	// ready is kept sorted by registration index.
	var ready []int
	for i := range g.nodes {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	out := make([]Node, 0, len(g.nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		out = append(out, g.nodes[i])
		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}
	return out, nil
}

func insertSorted(s []int, v int) []int {
	i := 0
	for i < len(s) && s[i] < v {
		i++
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Layers groups nodes by dependency depth. Nodes in layer N depend only on
// nodes in earlier layers, so an executor may create a whole layer at once.
func (g *Graph) Layers() ([][]Node, error) {
	idx, err := g.layerIndices()
	if err != nil {
		return nil, err
	}
	out := make([][]Node, len(idx))
	for l, layer := range idx {
		for _, i := range layer {
			out[l] = append(out[l], g.nodes[i])
		}
	}
	return out, nil
}

// LayerOf returns the layer index of every node, keyed by node ID.
func (g *Graph) LayerOf() (map[string]int, error) {
	idx, err := g.layerIndices()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(g.nodes))
	for l, layer := range idx {
		for _, i := range layer {
			out[g.nodes[i].ID] = l
		}
	}
	return out, nil
}

func (g *Graph) layerIndices() ([][]int, error) {
	edges := g.edges()
	depth := make([]int, len(g.nodes))
	state := make([]int, len(g.nodes)) // 0 new, 1 visiting, 2 done

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch state[i] {
		case 1:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(path, g.nodes[i].ID), " -> "))
		case 2:
			return nil
		}
		state[i] = 1
		d := 0
		for _, j := range edges[i] {
			if err := visit(j, append(path, g.nodes[i].ID)); err != nil {
				return err
			}
			if depth[j]+1 > d {
				d = depth[j] + 1
			}
		}
		depth[i] = d
		state[i] = 2
		return nil
	}

	maxDepth := -1
	for i := range g.nodes {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
		if depth[i] > maxDepth {
			maxDepth = depth[i]
		}
	}
	layers := make([][]int, maxDepth+1)
	for i, d := range depth {
		layers[d] = append(layers[d], i)
	}
	return layers, nil
}

// DependsOn reports whether node a transitively depends on node b.
func (g *Graph) DependsOn(a, b string) bool {
	ai, ok := g.nodeIndex[a]
	if !ok {
		return false
	}
	bi, ok := g.nodeIndex[b]
	if !ok {
		return false
	}
	edges := g.edges()
	visited := make([]bool, len(g.nodes))
	stack := []int{ai}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, j := range edges[i] {
			if j == bi {
				return true
			}
			if !visited[j] {
				visited[j] = true
				stack = append(stack, j)
			}
		}
	}
	return false
}
