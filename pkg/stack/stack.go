// Package stack assembles a full deployment from an App configuration: the
// tenant core, one output port per declared port and, when enabled, the
// governance consumer.
package stack

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/datahub"
	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/outputport"
	"github.com/doodlesbykumbi/dataport/pkg/secret"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/tenant"
)

// Stack is a built deployment.
type Stack struct {
	App     *config.App
	Graph   *graph.Graph
	Core    *tenant.Core
	Ports   []*outputport.Port
	Datahub *datahub.Consumer
}

type options struct {
	secrets        secret.Source
	deploymentRole string
	governanceRole string
	secretLength   int
	logger         *zap.Logger
}

// Option configures Build.
type Option func(*options)

// WithSecretSource sets the source of the service user password.
func WithSecretSource(s secret.Source) Option {
	return func(o *options) { o.secrets = s }
}

// WithDeploymentRole sets the external deployment role.
func WithDeploymentRole(name string) Option {
	return func(o *options) { o.deploymentRole = name }
}

// WithGovernanceRole sets the external governance role.
func WithGovernanceRole(name string) Option {
	return func(o *options) { o.governanceRole = name }
}

// WithSecretLength sets the service user password length.
func WithSecretLength(n int) Option {
	return func(o *options) { o.secretLength = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSettings applies the role names and secret length from settings.
func WithSettings(s *config.Settings) Option {
	return func(o *options) {
		o.deploymentRole = s.DeploymentRole
		o.governanceRole = s.GovernanceRole
		o.secretLength = s.SecretLength
	}
}

// TenantArgs converts the tenant part of an App.
func TenantArgs(app *config.App) tenant.Args {
	args := tenant.Args{Name: app.Name, Env: string(app.Env)}
	for _, w := range app.Snowflake.Warehouses {
		args.Warehouses = append(args.Warehouses, tenant.WarehouseArgs{
			Name:    w.Name,
			Default: w.Default,
			Params:  w.Params,
		})
	}
	return args
}

// Validate checks an App completely without building anything.
func Validate(app *config.App) error {
	if app == nil {
		return fmt.Errorf("%w: no app", config.ErrInvalidConfig)
	}
	if err := app.Validate(); err != nil {
		return err
	}
	return tenant.ValidateArgs(TenantArgs(app))
}

// Build validates app and builds its stack. Configuration errors are
// returned before any node is registered.
func Build(app *config.App, opts ...Option) (*Stack, error) {
	o := options{
		secrets:        secret.NewRandom(),
		deploymentRole: tenant.DefaultDeploymentRole,
		governanceRole: datahub.DefaultRole,
		secretLength:   tenant.DefaultSecretLength,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := Validate(app); err != nil {
		return nil, err
	}
	log := o.logger.With(zap.String("tenant", app.Name), zap.String("env", string(app.Env)))

	s := &Stack{App: app, Graph: graph.New()}

	core, err := tenant.New(s.Graph, TenantArgs(app),
		tenant.WithSecretSource(o.secrets),
		tenant.WithDeploymentRole(o.deploymentRole),
		tenant.WithSecretLength(o.secretLength),
	)
	if err != nil {
		return nil, err
	}
	s.Core = core
	log.Debug("built tenant core", zap.Int("warehouses", len(core.Warehouses)))

	for _, p := range app.OutputPorts {
		port, err := outputport.New(s.Graph, core, outputport.Args{App: app.Name, Name: p.Name})
		if err != nil {
			return nil, err
		}
		s.Ports = append(s.Ports, port)
		log.Debug("built output port", zap.String("port", port.Output), zap.String("role", port.Role.Name))
	}

	if app.Datahub {
		consumer, err := datahub.New(s.Graph, core, s.Ports, datahub.WithRole(o.governanceRole))
		if err != nil {
			return nil, err
		}
		s.Datahub = consumer
		log.Debug("built governance consumer", zap.String("role", consumer.Role), zap.Int("grants", len(consumer.Grants)))
	}

	log.Info("built stack", zap.Int("nodes", s.Graph.Len()), zap.Int("ports", len(s.Ports)))
	return s, nil
}

// Summary counts what a stack declares.
type Summary struct {
	Nodes      int            `json:"nodes"`
	Components int            `json:"components"`
	Grants     int            `json:"grants"`
	Layers     int            `json:"layers"`
	ByKind     map[string]int `json:"by_kind"`
}

// Summary counts nodes per kind and dependency layers.
func (s *Stack) Summary() (Summary, error) {
	layers, err := s.Graph.Layers()
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Nodes:      s.Graph.Len(),
		Components: len(s.Graph.Components()),
		Layers:     len(layers),
		ByKind:     make(map[string]int),
	}
	for _, n := range s.Graph.Nodes() {
		sum.ByKind[n.Kind]++
		if k, err := snowflake.KindString(n.Kind); err == nil && k.IsGrant() {
			sum.Grants++
		}
	}
	return sum, nil
}

// Triples returns every privilege grant triple, sorted.
func (s *Stack) Triples() []snowflake.Triple {
	var out []snowflake.Triple
	for _, n := range s.Graph.Nodes() {
		if granter, ok := n.Spec.(snowflake.Granter); ok {
			out = append(out, granter.Triples()...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Privileges < out[j].Privileges
	})
	return out
}

// NodesOfKind returns the nodes of one kind in registration order.
func (s *Stack) NodesOfKind(kind snowflake.Kind) []graph.Node {
	var out []graph.Node
	for _, n := range s.Graph.Nodes() {
		if n.Kind == kind.String() {
			out = append(out, n)
		}
	}
	return out
}
