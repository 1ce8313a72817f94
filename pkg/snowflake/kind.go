package snowflake

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform snake -json -yaml -output kind.gen.go

// Kind is the provider resource type of a graph node.
type Kind int

const (
	KindDatabase Kind = iota
	KindRole
	KindWarehouse
	KindUser
	KindSchema
	KindRandomPassword
	KindRoleGrants
	KindGrantPrivilegesToRole
	KindSchemaGrant
	KindDatabaseGrant
)

// IsGrant reports whether the kind attaches privileges or memberships rather
// than creating an object.
func (k Kind) IsGrant() bool {
	switch k {
	case KindRoleGrants, KindGrantPrivilegesToRole, KindSchemaGrant, KindDatabaseGrant:
		return true
	default:
		return false
	}
}
