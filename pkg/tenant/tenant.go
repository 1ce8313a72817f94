package tenant

import (
	"fmt"

	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/secret"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
)

const (
	// ComponentType identifies tenant core components in the graph.
	ComponentType = "pkg:index:SnowflakeCore"
	// ComponentID is the component every tenant core node is registered under.
	ComponentID = "snowflake"

	DefaultDeploymentRole = "DEPLOYMENT"
	DefaultSecretLength   = 16
)

// WarehouseArgs declares one warehouse. Params are provider settings passed
// through untouched.
type WarehouseArgs struct {
	Name    string
	Default bool
	Params  map[string]any
}

// Args is the input of New.
type Args struct {
	Name       string
	Env        string
	Warehouses []WarehouseArgs
}

// Warehouse is a created warehouse and whether it is the tenant default.
type Warehouse struct {
	IsDefault bool
	Ref       graph.Ref
}

// Core is the record of a built tenant core. Later units only read it.
type Core struct {
	Name            string
	Env             string
	Component       string
	Database        graph.Ref
	Role            graph.Ref
	Warehouses      []Warehouse
	User            graph.Ref
	Password        graph.Ref
	DeploymentGrant graph.Ref
}

// DefaultWarehouse returns the warehouse flagged default.
func (c *Core) DefaultWarehouse() (graph.Ref, bool) {
	for _, w := range c.Warehouses {
		if w.IsDefault {
			return w.Ref, true
		}
	}
	return graph.Ref{}, false
}

type options struct {
	secrets        secret.Source
	deploymentRole string
	secretLength   int
}

// Option configures New.
type Option func(*options)

// WithSecretSource sets the source of the service user password.
func WithSecretSource(s secret.Source) Option {
	return func(o *options) {
		o.secrets = s
	}
}

// WithDeploymentRole overrides the external role the tenant role is granted to.
func WithDeploymentRole(name string) Option {
	return func(o *options) {
		o.deploymentRole = name
	}
}

// WithSecretLength overrides the service user password length.
func WithSecretLength(n int) Option {
	return func(o *options) {
		o.secretLength = n
	}
}

// DefaultWarehouse looks up the warehouse flagged default. The second
// result is false when none is.
func DefaultWarehouse(specs []WarehouseArgs) (WarehouseArgs, bool) {
	for _, w := range specs {
		if w.Default {
			return w, true
		}
	}
	return WarehouseArgs{}, false
}

// ValidateArgs checks args without touching a graph. Errors are *ConfigError.
func ValidateArgs(args Args) error {
	fail := func(err error) error {
		return &ConfigError{Tenant: args.Name, Warehouses: args.Warehouses, Err: err}
	}

	if args.Name == "" {
		return fail(ErrNoName)
	}
	if len(args.Warehouses) == 0 {
		return fail(ErrNoWarehouses)
	}

	seen := make(map[string]bool, len(args.Warehouses))
	defaults := 0
	for i, w := range args.Warehouses {
		if w.Name == "" {
			return fail(fmt.Errorf("%w: warehouses[%d] has no name", ErrInvalidWarehouse, i))
		}
		key := snowflake.Name(w.Name)
		if seen[key] {
			return fail(fmt.Errorf("%w: duplicate warehouse %q", ErrInvalidWarehouse, w.Name))
		}
		seen[key] = true
		if w.Default {
			defaults++
		}
	}

	if _, ok := DefaultWarehouse(args.Warehouses); !ok {
		return fail(ErrNoDefaultWarehouse)
	}
	if defaults > 1 {
		return fail(ErrMultipleDefaultWarehouses)
	}
	return nil
}

// New validates args and registers the tenant core in g.
func New(g *graph.Graph, args Args, opts ...Option) (*Core, error) {
	o := options{
		secrets:        secret.NewRandom(),
		deploymentRole: DefaultDeploymentRole,
		secretLength:   DefaultSecretLength,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateArgs(args); err != nil {
		return nil, err
	}
	if o.deploymentRole == "" {
		return nil, &ConfigError{Tenant: args.Name, Warehouses: args.Warehouses, Err: fmt.Errorf("deployment role is required")}
	}

	password, err := o.secrets.Generate(o.secretLength)
	if err != nil {
		return nil, fmt.Errorf("tenant %q: failed to generate user password: %w", args.Name, err)
	}

	if err := g.AddComponent(ComponentID, ComponentType, ""); err != nil {
		return nil, fmt.Errorf("tenant %q: %w", args.Name, err)
	}
	b := g.Under(ComponentID)

	core := &Core{Name: args.Name, Env: args.Env, Component: ComponentID}
	name := snowflake.Name(args.Name)

	core.Database = b.Add("database", name, snowflake.KindDatabase.String(), snowflake.Database{Name: name})
	core.Role = b.Add("role", name, snowflake.KindRole.String(), snowflake.Role{Name: name})

	for _, w := range args.Warehouses {
		whName := snowflake.Name(args.Name, w.Name)
		ref := b.Add("warehouse/"+w.Name, whName, snowflake.KindWarehouse.String(), snowflake.Warehouse{Name: whName, Params: w.Params})
		b.Add("role->warehouse/"+w.Name, "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
			RoleName:   core.Role.Name,
			Privileges: snowflake.WarehousePrivileges(),
			OnAccountObject: &snowflake.AccountObject{
				ObjectType: snowflake.ObjectTypeWarehouse,
				ObjectName: ref.Name,
			},
		}, core.Role.ID, ref.ID)
		core.Warehouses = append(core.Warehouses, Warehouse{IsDefault: w.Default, Ref: ref})
	}

	// ValidateArgs guarantees exactly one default.
	defaultWh, _ := core.DefaultWarehouse()

	core.Password = b.Add("user-password", "", snowflake.KindRandomPassword.String(), snowflake.RandomPassword{
		Length: o.secretLength,
		Result: password,
	})

	core.User = b.Add("user", name, snowflake.KindUser.String(), snowflake.User{
		Name:             name,
		DisplayName:      name,
		DefaultWarehouse: defaultWh.Name,
		DefaultRole:      core.Role.Name,
		Password:         core.Password.ID,
	}, core.Role.ID, defaultWh.ID, core.Password.ID)

	core.DeploymentGrant = b.Add("role->deployment", "", snowflake.KindRoleGrants.String(), snowflake.RoleGrants{
		RoleName: core.Role.Name,
		Roles:    []string{o.deploymentRole},
		Users:    []string{core.User.Name},
	}, core.Role.ID, core.User.ID)

	b.Add("role->public-schema-usage", "", snowflake.KindGrantPrivilegesToRole.String(), snowflake.GrantPrivilegesToRole{
		RoleName:   core.Role.Name,
		Privileges: []string{snowflake.PrivilegeUsage},
		OnSchema:   &snowflake.OnSchema{SchemaName: snowflake.QualifiedName(core.Database.Name, snowflake.PublicSchema)},
	}, core.Role.ID, core.Database.ID)

	b.Add("role->public-schema-ownership", "", snowflake.KindSchemaGrant.String(), snowflake.SchemaGrant{
		Roles:        []string{core.Role.Name},
		Privilege:    snowflake.PrivilegeOwnership,
		SchemaName:   snowflake.PublicSchema,
		DatabaseName: core.Database.Name,
	}, core.Role.ID, core.Database.ID)

	// Ownership transfer needs the deployment role membership in place.
	b.Add("role->db-ownership", "", snowflake.KindDatabaseGrant.String(), snowflake.DatabaseGrant{
		Roles:        []string{core.Role.Name},
		Privilege:    snowflake.PrivilegeOwnership,
		DatabaseName: core.Database.Name,
	}, core.Role.ID, core.Database.ID, core.DeploymentGrant.ID)

	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("tenant %q: %w", args.Name, err)
	}
	return core, nil
}
