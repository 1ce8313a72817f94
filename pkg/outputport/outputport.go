// Package outputport builds output ports: one managed schema per data
// product with a dedicated consumer role that reads, creates and owns the
// product's tables and views.
package outputport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/tenant"
)

const (
	// ComponentType identifies output port components in the graph.
	ComponentType = "pkg:index:OutputPort"
	// ComponentPrefix prefixes the component ID of every port.
	ComponentPrefix = "output-port/"
)

var (
	ErrNoName = errors.New("output port name is required")
	ErrNoApp  = errors.New("output port app is required")
	ErrNoCore = errors.New("output port needs a tenant core")
)

// Args is the input of New.
type Args struct {
	// App is the owning application (tenant) name.
	App  string
	Name string
}

// Port is the record of a built output port.
type Port struct {
	Output    string
	App       string
	Component string
	Schema    graph.Ref
	Role      graph.Ref
}

// ObjectKinds returns the object kinds a port role may read, create and own.
func ObjectKinds() []string {
	return []string{"table", "view"}
}

// ComponentID returns the component ID of the port named name.
func ComponentID(name string) string {
	return ComponentPrefix + strings.ToLower(name)
}

// New registers an output port in g. The port only references the tenant
// database and role, it never modifies them.
func New(g *graph.Graph, core *tenant.Core, args Args) (*Port, error) {
	switch {
	case core == nil:
		return nil, ErrNoCore
	case args.Name == "":
		return nil, ErrNoName
	case args.App == "":
		return nil, fmt.Errorf("output port %q: %w", args.Name, ErrNoApp)
	}

	port := &Port{
		Output:    args.Name,
		App:       args.App,
		Component: ComponentID(args.Name),
	}
	if err := g.AddComponent(port.Component, ComponentType, ""); err != nil {
		return nil, fmt.Errorf("output port %q: %w", args.Name, err)
	}
	b := g.Under(port.Component)

	schemaName := snowflake.Name(args.Name)
	port.Schema = b.Add("schema", schemaName, snowflake.KindSchema.String(), snowflake.Schema{
		Name:      schemaName,
		Database:  core.Database.Name,
		IsManaged: true,
	}, core.Database.ID)

	roleName := snowflake.Name(args.App, args.Name)
	port.Role = b.Add("role", roleName, snowflake.KindRole.String(), snowflake.Role{Name: roleName})

	b.Add(args.Name+"->role", "", snowflake.KindRoleGrants.String(), snowflake.RoleGrants{
		RoleName: port.Role.Name,
		Roles:    []string{core.Role.Name},
	}, port.Role.ID, core.Role.ID)

	b.Add(args.Name+"-database-usage", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
		RoleName:   port.Role.Name,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnAccountObject: &snowflake.AccountObject{
			ObjectType: snowflake.ObjectTypeDatabase,
			ObjectName: core.Database.Name,
		},
	}, port.Role.ID, core.Database.ID)

	qualified := snowflake.QualifiedName(core.Database.Name, port.Schema.Name)
	b.Add(args.Name+"-schema-usage", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
		RoleName:   port.Role.Name,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnSchema:   &snowflake.OnSchema{SchemaName: qualified},
	}, port.Role.ID, port.Schema.ID)

	for _, kind := range ObjectKinds() {
		future := func() *snowflake.OnSchemaObject {
			return &snowflake.OnSchemaObject{Future: &snowflake.FutureObjects{
				ObjectTypePlural: snowflake.Plural(kind),
				InSchema:         qualified,
			}}
		}

		b.Add(args.Name+"-"+kind+"->select", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
			RoleName:       port.Role.Name,
			Privileges:     []string{snowflake.PrivilegeSelect},
			OnSchemaObject: future(),
		}, port.Role.ID, port.Schema.ID)

		b.Add("role->"+args.Name+"-"+kind+"->create", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
			RoleName:   port.Role.Name,
			Privileges: []string{snowflake.CreatePrivilege(kind)},
			OnSchema:   &snowflake.OnSchema{SchemaName: qualified},
		}, port.Role.ID, port.Schema.ID)

		// Ownership transfer waits for the whole tenant role hierarchy.
		b.Add("role->"+args.Name+"-"+kind+"->ownership", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
			RoleName:       port.Role.Name,
			Privileges:     []string{snowflake.PrivilegeOwnership},
			OnSchemaObject: future(),
		}, port.Role.ID, port.Schema.ID, core.Component)
	}

	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("output port %q: %w", args.Name, err)
	}
	return port, nil
}
