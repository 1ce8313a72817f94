package ledger

import (
	"errors"
	"time"
)

// ErrNoDeployment is returned when a tenant has no recorded deployment.
var ErrNoDeployment = errors.New("no deployment recorded")

// Deployment is a recorded build of a tenant stack.
type Deployment struct {
	Tenant       string
	Version      int
	RunID        string
	Env          string
	Actor        string
	ConfigText   string
	ConfigSHA256 string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Resource is a graph node as recorded.
type Resource struct {
	NodeID       string
	Kind         string
	Component    string
	ProviderName string
	Position     int
	Layer        int
	Spec         []byte
}

// Grant is a privilege grant triple and the node declaring it.
type Grant struct {
	NodeID     string
	Role       string
	Privileges string
	Scope      string
}

// Store abstracts the storage operations of the recorder.
// This allows recording to a database or to memory.
type Store interface {
	// Transaction wraps operations in a transaction.
	// If fn returns an error, every write made through the passed Store is
	// rolled back.
	Transaction(fn func(Store) error) error

	// CreateDeployment creates a deployment record and assigns its Version,
	// one above the tenant's latest.
	CreateDeployment(d *Deployment) error

	// LatestDeployment returns the highest version recorded for a tenant,
	// or ErrNoDeployment.
	LatestDeployment(tenant string) (*Deployment, error)

	// CreateResource records a node. Recording the same node twice is a no-op.
	CreateResource(runID string, r Resource) error

	// CreateDependency records an edge. Recording the same edge twice is a no-op.
	CreateDependency(runID, nodeID, dependsOn string) error

	// CreateGrant records a grant triple. Identical triples are recorded once.
	CreateGrant(runID string, g Grant) error

	// FinishDeployment marks a deployment complete.
	FinishDeployment(runID string, at time.Time) error
}
