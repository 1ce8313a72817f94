package ledger

import (
	"fmt"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryState struct {
	deployments  []Deployment
	resources    map[string][]Resource
	dependencies map[string][][2]string
	grants       map[string][]Grant
}

func newMemoryState() memoryState {
	return memoryState{
		resources:    make(map[string][]Resource),
		dependencies: make(map[string][][2]string),
		grants:       make(map[string][]Grant),
	}
}

func (st memoryState) clone() memoryState {
	out := newMemoryState()
	out.deployments = append(out.deployments, st.deployments...)
	for k, v := range st.resources {
		out.resources[k] = append([]Resource(nil), v...)
	}
	for k, v := range st.dependencies {
		out.dependencies[k] = append([][2]string(nil), v...)
	}
	for k, v := range st.grants {
		out.grants[k] = append([]Grant(nil), v...)
	}
	return out
}

// MemoryStore is an in-process Store. It backs dry runs without a database
// and tests.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memoryState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	st := newMemoryState()
	return &MemoryStore{mu: &sync.Mutex{}, state: &st}
}

// Transaction runs fn against a copy of the state and keeps the copy only
// when fn succeeds.
func (s *MemoryStore) Transaction(fn func(Store) error) error {
	s.mu.Lock()
	working := s.state.clone()
	s.mu.Unlock()

	tx := &MemoryStore{mu: &sync.Mutex{}, state: &working}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	*s.state = working
	return nil
}

func (s *MemoryStore) CreateDeployment(d *Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, existing := range s.state.deployments {
		if existing.RunID == d.RunID {
			return fmt.Errorf("failed to create deployment: duplicate run id %s", d.RunID)
		}
		if existing.Tenant == d.Tenant && existing.Version >= next {
			next = existing.Version + 1
		}
	}
	d.Version = next
	s.state.deployments = append(s.state.deployments, *d)
	return nil
}

func (s *MemoryStore) LatestDeployment(tenant string) (*Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *Deployment
	for i := range s.state.deployments {
		d := s.state.deployments[i]
		if d.Tenant == tenant && (latest == nil || d.Version > latest.Version) {
			latest = &d
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("tenant %q: %w", tenant, ErrNoDeployment)
	}
	return latest, nil
}

func (s *MemoryStore) CreateResource(runID string, r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.resources[runID] {
		if existing.NodeID == r.NodeID {
			return nil
		}
	}
	s.state.resources[runID] = append(s.state.resources[runID], r)
	return nil
}

func (s *MemoryStore) CreateDependency(runID, nodeID, dependsOn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge := [2]string{nodeID, dependsOn}
	for _, existing := range s.state.dependencies[runID] {
		if existing == edge {
			return nil
		}
	}
	s.state.dependencies[runID] = append(s.state.dependencies[runID], edge)
	return nil
}

func (s *MemoryStore) CreateGrant(runID string, g Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.grants[runID] {
		if existing.Role == g.Role && existing.Privileges == g.Privileges && existing.Scope == g.Scope {
			return nil
		}
	}
	s.state.grants[runID] = append(s.state.grants[runID], g)
	return nil
}

func (s *MemoryStore) FinishDeployment(runID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.deployments {
		if s.state.deployments[i].RunID == runID {
			finished := at
			s.state.deployments[i].FinishedAt = &finished
			return nil
		}
	}
	return fmt.Errorf("failed to finish deployment %s: not found", runID)
}

// Deployments returns every recorded deployment.
func (s *MemoryStore) Deployments() []Deployment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Deployment(nil), s.state.deployments...)
}

// Resources returns the resources recorded for a run, in recording order.
func (s *MemoryStore) Resources(runID string) []Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Resource(nil), s.state.resources[runID]...)
}

// Dependencies returns the edges recorded for a run as (node, dependency) pairs.
func (s *MemoryStore) Dependencies(runID string) [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]string(nil), s.state.dependencies[runID]...)
}

// Grants returns the grant triples recorded for a run.
func (s *MemoryStore) Grants(runID string) []Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Grant(nil), s.state.grants[runID]...)
}
