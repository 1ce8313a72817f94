package snowflake

import "strings"

// Privileges.
const (
	PrivilegeApplyBudget = "APPLYBUDGET"
	PrivilegeMonitor     = "MONITOR"
	PrivilegeModify      = "MODIFY"
	PrivilegeOperate     = "OPERATE"
	PrivilegeUsage       = "USAGE"
	PrivilegeOwnership   = "OWNERSHIP"
	PrivilegeSelect      = "SELECT"
	PrivilegeReferences  = "REFERENCES"

	// PrivilegeMembership marks a role granted to another role or a user.
	PrivilegeMembership = "MEMBERSHIP"
)

// Account object types.
const (
	ObjectTypeDatabase  = "DATABASE"
	ObjectTypeWarehouse = "WAREHOUSE"
)

// Plural schema object types.
const (
	ObjectTypeTables         = "TABLES"
	ObjectTypeViews          = "VIEWS"
	ObjectTypeExternalTables = "EXTERNAL TABLES"
)

// WarehousePrivileges returns the privileges a tenant role holds on each of
// its warehouses.
func WarehousePrivileges() []string {
	return []string{
		PrivilegeApplyBudget,
		PrivilegeMonitor,
		PrivilegeModify,
		PrivilegeOperate,
		PrivilegeUsage,
	}
}

// CreatePrivilege returns the schema-level create privilege for an object
// kind, e.g. "table" -> "CREATE TABLE".
func CreatePrivilege(kind string) string {
	return "CREATE " + strings.ToUpper(kind)
}
