// Package metrics exposes the shape of a built stack as Prometheus gauges.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

const namespace = "dataport"

// StackMetrics holds the gauges of one stack on their own registry.
type StackMetrics struct {
	registry *prometheus.Registry

	Nodes      *prometheus.GaugeVec
	Components *prometheus.GaugeVec
	Grants     *prometheus.GaugeVec
	Layers     *prometheus.GaugeVec
	Recorded   *prometheus.GaugeVec
}

// New creates and registers the gauges.
func New() *StackMetrics {
	reg := prometheus.NewRegistry()
	m := &StackMetrics{
		registry: reg,
		Nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stack",
			Name:      "nodes",
			Help:      "Number of resources declared, by kind.",
		}, []string{"tenant", "env", "kind"}),
		Components: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stack",
			Name:      "component_nodes",
			Help:      "Number of resources declared, by component.",
		}, []string{"tenant", "env", "component", "type"}),
		Grants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stack",
			Name:      "grants",
			Help:      "Number of privilege grants, by grantee role.",
		}, []string{"tenant", "env", "role"}),
		Layers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stack",
			Name:      "layers",
			Help:      "Number of dependency layers.",
		}, []string{"tenant", "env"}),
		Recorded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "version",
			Help:      "Latest ledger version recorded for the tenant.",
		}, []string{"tenant", "env"}),
	}
	reg.MustRegister(m.Nodes, m.Components, m.Grants, m.Layers, m.Recorded)
	return m
}

// Registry returns the registry holding the gauges.
func (m *StackMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets the gauges from s. Previous values for the same tenant are
// replaced.
func (m *StackMetrics) Observe(s *stack.Stack) error {
	sum, err := s.Summary()
	if err != nil {
		return err
	}
	tenant, env := s.App.Name, string(s.App.Env)
	labels := prometheus.Labels{"tenant": tenant, "env": env}
	m.Nodes.DeletePartialMatch(labels)
	m.Components.DeletePartialMatch(labels)
	m.Grants.DeletePartialMatch(labels)

	for kind, n := range sum.ByKind {
		m.Nodes.WithLabelValues(tenant, env, kind).Set(float64(n))
	}
	for _, c := range s.Graph.Components() {
		m.Components.WithLabelValues(tenant, env, c.ID, c.Type).Set(float64(len(s.Graph.Children(c.ID))))
	}
	for _, t := range s.Triples() {
		m.Grants.WithLabelValues(tenant, env, t.Role).Inc()
	}
	m.Layers.WithLabelValues(tenant, env).Set(float64(sum.Layers))
	return nil
}

// ObserveVersion records the ledger version written for a tenant.
func (m *StackMetrics) ObserveVersion(tenant, env string, version int) {
	m.Recorded.WithLabelValues(tenant, env).Set(float64(version))
}

// WriteTextfile writes the gauges in the text exposition format for a
// node-exporter textfile collector.
func (m *StackMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
