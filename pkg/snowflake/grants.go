package snowflake

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidGrant is returned by Validate for malformed grant descriptors.
var ErrInvalidGrant = errors.New("invalid grant")

// Scope kinds.
const (
	ScopeAccountObject       = "ACCOUNT_OBJECT"
	ScopeSchema              = "SCHEMA"
	ScopeFutureSchemas       = "FUTURE_SCHEMAS"
	ScopeSchemaObject        = "SCHEMA_OBJECT"
	ScopeFutureSchemaObjects = "FUTURE_SCHEMA_OBJECTS"
	ScopeRole                = "ROLE"
	ScopeUser                = "USER"
)

// AccountObject scopes a grant to a warehouse or database.
type AccountObject struct {
	ObjectType string `json:"object_type" yaml:"object_type"`
	ObjectName string `json:"object_name" yaml:"object_name"`
}

// OnSchema scopes a grant to one schema or to all future schemas of a
// database. Exactly one field is set.
type OnSchema struct {
	SchemaName              string `json:"schema_name,omitempty" yaml:"schema_name,omitempty"`
	FutureSchemasInDatabase string `json:"future_schemas_in_database,omitempty" yaml:"future_schemas_in_database,omitempty"`
}

// FutureObjects selects objects of a type created after the grant, either
// in a schema or anywhere in a database.
type FutureObjects struct {
	ObjectTypePlural string `json:"object_type_plural" yaml:"object_type_plural"`
	InDatabase       string `json:"in_database,omitempty" yaml:"in_database,omitempty"`
	InSchema         string `json:"in_schema,omitempty" yaml:"in_schema,omitempty"`
}

// OnSchemaObject scopes a grant to a single existing object or to future
// objects. Exactly one of Future or ObjectName is set.
type OnSchemaObject struct {
	ObjectType string         `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	ObjectName string         `json:"object_name,omitempty" yaml:"object_name,omitempty"`
	Future     *FutureObjects `json:"future,omitempty" yaml:"future,omitempty"`
}

// GrantPrivilegesToRole grants Privileges to RoleName on exactly one scope.
type GrantPrivilegesToRole struct {
	RoleName        string          `json:"role_name" yaml:"role_name"`
	Privileges      []string        `json:"privileges" yaml:"privileges,flow"`
	OnAccountObject *AccountObject  `json:"on_account_object,omitempty" yaml:"on_account_object,omitempty"`
	OnSchema        *OnSchema       `json:"on_schema,omitempty" yaml:"on_schema,omitempty"`
	OnSchemaObject  *OnSchemaObject `json:"on_schema_object,omitempty" yaml:"on_schema_object,omitempty"`
}

// Validate checks that the grant has a role, at least one privilege and
// exactly one well-formed scope.
func (g GrantPrivilegesToRole) Validate() error {
	if g.RoleName == "" {
		return fmt.Errorf("%w: role name is required", ErrInvalidGrant)
	}
	if len(g.Privileges) == 0 {
		return fmt.Errorf("%w: at least one privilege is required for role %s", ErrInvalidGrant, g.RoleName)
	}
	scopes := 0
	if g.OnAccountObject != nil {
		scopes++
		if g.OnAccountObject.ObjectType == "" || g.OnAccountObject.ObjectName == "" {
			return fmt.Errorf("%w: account object needs a type and a name", ErrInvalidGrant)
		}
	}
	if g.OnSchema != nil {
		scopes++
		if (g.OnSchema.SchemaName == "") == (g.OnSchema.FutureSchemasInDatabase == "") {
			return fmt.Errorf("%w: schema scope needs exactly one of schema name or future schemas in database", ErrInvalidGrant)
		}
	}
	if g.OnSchemaObject != nil {
		scopes++
		o := g.OnSchemaObject
		if (o.Future == nil) == (o.ObjectName == "") {
			return fmt.Errorf("%w: schema object scope needs exactly one of future or object name", ErrInvalidGrant)
		}
		if o.Future != nil {
			if o.Future.ObjectTypePlural == "" {
				return fmt.Errorf("%w: future objects need an object type", ErrInvalidGrant)
			}
			if (o.Future.InDatabase == "") == (o.Future.InSchema == "") {
				return fmt.Errorf("%w: future objects need exactly one of database or schema", ErrInvalidGrant)
			}
		}
	}
	if scopes != 1 {
		return fmt.Errorf("%w: expected exactly one scope for role %s, got %d", ErrInvalidGrant, g.RoleName, scopes)
	}
	return nil
}

// Scope renders the canonical scope string of the grant.
func (g GrantPrivilegesToRole) Scope() string {
	switch {
	case g.OnAccountObject != nil:
		return ScopeAccountObject + ":" + g.OnAccountObject.ObjectType + ":" + g.OnAccountObject.ObjectName
	case g.OnSchema != nil && g.OnSchema.FutureSchemasInDatabase != "":
		return ScopeFutureSchemas + ":" + g.OnSchema.FutureSchemasInDatabase
	case g.OnSchema != nil:
		return ScopeSchema + ":" + g.OnSchema.SchemaName
	case g.OnSchemaObject != nil && g.OnSchemaObject.Future != nil:
		f := g.OnSchemaObject.Future
		if f.InSchema != "" {
			return ScopeFutureSchemaObjects + ":" + f.ObjectTypePlural + ":SCHEMA:" + f.InSchema
		}
		return ScopeFutureSchemaObjects + ":" + f.ObjectTypePlural + ":DATABASE:" + f.InDatabase
	case g.OnSchemaObject != nil:
		return ScopeSchemaObject + ":" + g.OnSchemaObject.ObjectType + ":" + g.OnSchemaObject.ObjectName
	default:
		return ""
	}
}

// Triples returns the single triple of the grant.
func (g GrantPrivilegesToRole) Triples() []Triple {
	return []Triple{NewTriple(g.Privileges, g.RoleName, g.Scope())}
}

// SchemaGrant grants Privilege on a schema addressed by separate schema and
// database names. Used for schema ownership, where the generic grant
// resource fails to revoke cleanly.
type SchemaGrant struct {
	Roles        []string `json:"roles" yaml:"roles,flow"`
	Privilege    string   `json:"privilege" yaml:"privilege"`
	SchemaName   string   `json:"schema_name" yaml:"schema_name"`
	DatabaseName string   `json:"database_name" yaml:"database_name"`
}

// Triples returns one triple per grantee role.
func (g SchemaGrant) Triples() []Triple {
	scope := ScopeSchema + ":" + QualifiedName(g.DatabaseName, g.SchemaName)
	out := make([]Triple, 0, len(g.Roles))
	for _, r := range g.Roles {
		out = append(out, NewTriple([]string{g.Privilege}, r, scope))
	}
	return out
}

// DatabaseGrant grants Privilege on a database.
type DatabaseGrant struct {
	Roles        []string `json:"roles" yaml:"roles,flow"`
	Privilege    string   `json:"privilege" yaml:"privilege"`
	DatabaseName string   `json:"database_name" yaml:"database_name"`
}

// Triples returns one triple per grantee role.
func (g DatabaseGrant) Triples() []Triple {
	scope := ScopeAccountObject + ":" + ObjectTypeDatabase + ":" + g.DatabaseName
	out := make([]Triple, 0, len(g.Roles))
	for _, r := range g.Roles {
		out = append(out, NewTriple([]string{g.Privilege}, r, scope))
	}
	return out
}

// Validate checks that the membership names a role and at least one grantee.
func (g RoleGrants) Validate() error {
	if g.RoleName == "" {
		return fmt.Errorf("%w: role name is required", ErrInvalidGrant)
	}
	if len(g.Roles) == 0 && len(g.Users) == 0 {
		return fmt.Errorf("%w: role %s is granted to nobody", ErrInvalidGrant, g.RoleName)
	}
	return nil
}

// Triples returns one MEMBERSHIP triple per grantee. The triple's role is
// the granted role and its scope names the grantee, so a user and a role
// sharing a name stay distinct.
func (g RoleGrants) Triples() []Triple {
	out := make([]Triple, 0, len(g.Roles)+len(g.Users))
	for _, r := range g.Roles {
		out = append(out, NewTriple([]string{PrivilegeMembership}, g.RoleName, ScopeRole+":"+r))
	}
	for _, u := range g.Users {
		out = append(out, NewTriple([]string{PrivilegeMembership}, g.RoleName, ScopeUser+":"+u))
	}
	return out
}

// Granter is implemented by descriptors that attach privileges to roles.
type Granter interface {
	Triples() []Triple
}

// Triple is the identity of a privilege grant. Two grants with equal
// triples are the same grant.
type Triple struct {
	Privileges string `json:"privileges"`
	Role       string `json:"role"`
	Scope      string `json:"scope"`
}

// NewTriple builds a triple with the privilege set in canonical order.
func NewTriple(privileges []string, role, scope string) Triple {
	p := append([]string(nil), privileges...)
	sort.Strings(p)
	return Triple{
		Privileges: strings.Join(p, ","),
		Role:       role,
		Scope:      scope,
	}
}

func (t Triple) String() string {
	return fmt.Sprintf("%s -> %s @ %s", t.Privileges, t.Role, t.Scope)
}
