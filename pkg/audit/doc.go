// Package audit provides audit logging for dataport operations.
//
// Events are written in RFC5424 syslog format and persisted to the
// audit_messages table when a store is configured: the ledger connection
// passed to SetStore, or a dedicated database from AUDIT_DATABASE_URL.
// Deployment events keep their tenant, env, run ID and version in typed
// columns so audit rows join against the ledger.
//
// # Event Types
//
//   - DeploymentEvent: recording a stack to the ledger (success/failure, dry run)
//   - MigrationEvent: ledger schema migrations
//
// # Usage
//
//	audit.Log(audit.DeploymentEvent{
//	    Actor:   "ci",
//	    Tenant:  "acme",
//	    Version: 3,
//	    Success: true,
//	})
package audit
