// Package snowflake describes the warehouse-provider resources the
// provisioning units emit: databases, roles, warehouses, users, schemas,
// role memberships and privilege grants.
//
// Descriptors carry no behavior beyond validation and the canonical
// (privileges, role, scope) triple used to compare grants. Applying them is
// the job of an execution engine outside this module.
//
// Schema-qualified names must always be built with QualifiedName so the
// database and schema identifiers are quoted:
//
//	snowflake.QualifiedName("ACME", "ORDERS") // "ACME"."ORDERS"
package snowflake
