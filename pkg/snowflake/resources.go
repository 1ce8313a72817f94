package snowflake

import "github.com/doodlesbykumbi/dataport/pkg/secret"

// Database is a warehouse database.
type Database struct {
	Name string `json:"name" yaml:"name"`
}

// Role is an account role.
type Role struct {
	Name string `json:"name" yaml:"name"`
}

// Warehouse is a compute warehouse. Params holds provider sizing and
// scheduling settings and is passed through untouched.
type Warehouse struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// User is a service user. Password names the random password node holding
// its credential.
type User struct {
	Name             string `json:"name" yaml:"name"`
	DisplayName      string `json:"display_name" yaml:"display_name"`
	DefaultWarehouse string `json:"default_warehouse" yaml:"default_warehouse"`
	DefaultRole      string `json:"default_role" yaml:"default_role"`
	Password         string `json:"password" yaml:"password"`
}

// Schema is a schema inside Database. Managed schemas centralize grant
// management with the schema owner.
type Schema struct {
	Name      string `json:"name" yaml:"name"`
	Database  string `json:"database" yaml:"database"`
	IsManaged bool   `json:"is_managed" yaml:"is_managed"`
}

// RandomPassword is a generated credential.
type RandomPassword struct {
	Length int           `json:"length" yaml:"length"`
	Result secret.Secret `json:"result" yaml:"result"`
}

// RoleGrants grants RoleName to each of Roles and Users.
type RoleGrants struct {
	RoleName string   `json:"role_name" yaml:"role_name"`
	Roles    []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Users    []string `json:"users,omitempty" yaml:"users,omitempty"`
}
