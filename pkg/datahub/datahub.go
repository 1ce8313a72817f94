// Package datahub grants the external governance role read-oriented access
// to a tenant database: usage on the database, its public schema, every
// output port schema and all future schemas, and references on all future
// tables, views and external tables.
package datahub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/outputport"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/tenant"
)

const (
	// ComponentType identifies the governance consumer component.
	ComponentType = "pkg:index:Datahub"
	// ComponentID is the component every governance grant is registered under.
	ComponentID = "datahub"
	// DefaultRole is the governance role name.
	DefaultRole = "DATAHUB"
)

var ErrNoCore = errors.New("governance consumer needs a tenant core")

// Consumer is the record of a built governance consumer.
type Consumer struct {
	Role      string
	Component string
	Grants    []graph.Ref
}

type options struct {
	role string
}

// Option configures New.
type Option func(*options)

// WithRole overrides the governance role name.
func WithRole(name string) Option {
	return func(o *options) {
		o.role = name
	}
}

// ReferencedObjectTypes returns the future object types the governance role
// gets REFERENCES on.
func ReferencedObjectTypes() []string {
	return []string{snowflake.ObjectTypeTables, snowflake.ObjectTypeViews, snowflake.ObjectTypeExternalTables}
}

// PortUsageName returns the local node name of the usage grant on a port's
// schema. Port grants live under "port/" so no port name can collide with
// the fixed grants.
func PortUsageName(port string) string {
	return "port/" + strings.ToLower(port) + "-usage"
}

type portGrant struct {
	port  *outputport.Port
	grant snowflake.GrantPrivilegesToRole
}

func portGrants(role string, core *tenant.Core, ports []*outputport.Port) []portGrant {
	seen := make(map[string]bool, len(ports))
	out := make([]portGrant, 0, len(ports))
	for _, p := range ports {
		if p == nil {
			continue
		}
		schema := snowflake.QualifiedName(core.Database.Name, p.Schema.Name)
		if seen[schema] {
			continue
		}
		seen[schema] = true
		out = append(out, portGrant{
			port: p,
			grant: snowflake.GrantPrivilegesToRole{
				RoleName:   role,
				Privileges: []string{snowflake.PrivilegeUsage},
				OnSchema:   &snowflake.OnSchema{SchemaName: schema},
			},
		})
	}
	return out
}

// PortGrants returns one USAGE grant per output port schema for role, in
// declaration order. A schema listed twice is granted once.
func PortGrants(role string, core *tenant.Core, ports []*outputport.Port) []snowflake.GrantPrivilegesToRole {
	pgs := portGrants(role, core, ports)
	out := make([]snowflake.GrantPrivilegesToRole, len(pgs))
	for i, pg := range pgs {
		out[i] = pg.grant
	}
	return out
}

// New registers the governance consumer in g.
func New(g *graph.Graph, core *tenant.Core, ports []*outputport.Port, opts ...Option) (*Consumer, error) {
	o := options{role: DefaultRole}
	for _, opt := range opts {
		opt(&o)
	}
	if core == nil {
		return nil, ErrNoCore
	}
	if o.role == "" {
		return nil, fmt.Errorf("governance role is required")
	}

	if err := g.AddComponent(ComponentID, ComponentType, ""); err != nil {
		return nil, fmt.Errorf("governance consumer: %w", err)
	}
	c := &Consumer{Role: o.role, Component: ComponentID}
	b := g.Under(ComponentID)
	grant := snowflake.KindGrantPrivilegesToRole.String()
	add := func(name string, spec snowflake.GrantPrivilegesToRole, deps ...string) {
		c.Grants = append(c.Grants, b.Add(name, "", grant, spec, deps...))
	}

	add("db-usage", snowflake.GrantPrivilegesToRole{
		RoleName:   o.role,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnAccountObject: &snowflake.AccountObject{
			ObjectType: snowflake.ObjectTypeDatabase,
			ObjectName: core.Database.Name,
		},
	}, core.Database.ID)

	add("public-schema-usage", snowflake.GrantPrivilegesToRole{
		RoleName:   o.role,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnSchema:   &snowflake.OnSchema{SchemaName: snowflake.QualifiedName(core.Database.Name, snowflake.PublicSchema)},
	}, core.Database.ID)

	for _, pg := range portGrants(o.role, core, ports) {
		add(PortUsageName(pg.port.Output), pg.grant, pg.port.Schema.ID)
	}

	// Ordered after every declared port.
	futureDeps := []string{core.Database.ID}
	for _, p := range ports {
		if p != nil {
			futureDeps = append(futureDeps, p.Component)
		}
	}
	add("future-schema-usage", snowflake.GrantPrivilegesToRole{
		RoleName:   o.role,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnSchema:   &snowflake.OnSchema{FutureSchemasInDatabase: core.Database.Name},
	}, futureDeps...)

	for _, objectType := range ReferencedObjectTypes() {
		name := "reference-future-" + strings.ReplaceAll(strings.ToLower(objectType), " ", "-")
		add(name, snowflake.GrantPrivilegesToRole{
			RoleName:   o.role,
			Privileges: []string{snowflake.PrivilegeReferences},
			OnSchemaObject: &snowflake.OnSchemaObject{Future: &snowflake.FutureObjects{
				ObjectTypePlural: objectType,
				InDatabase:       core.Database.Name,
			}},
		}, core.Database.ID)
	}

	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("governance consumer: %w", err)
	}
	return c, nil
}
