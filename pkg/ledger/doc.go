// Package ledger records built stacks.
//
// A recorded deployment is what an execution engine would be handed: every
// graph node in creation order with its dependency layer, every dependency
// edge and every privilege grant triple. Deployments are versioned per
// tenant and carry the sha256 of the configuration they were built from, so
// re-recording an unchanged configuration is detected.
//
// # Basic Usage
//
//	store := ledger.NewGormStore(database)
//	result, err := ledger.NewRecorder(store).
//	    WithActor("ci").
//	    WithDryRun(false).
//	    Record(s, configText)
//
// Recording happens in a single transaction. A dry run performs every write
// and rolls back.
package ledger
