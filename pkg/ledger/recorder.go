package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// errDryRunRollback aborts the transaction of a dry run.
var errDryRunRollback = errors.New("dry run rollback")

// Result contains the results of recording a stack.
type Result struct {
	Version      int    `json:"version"`
	RunID        string `json:"run_id"`
	Resources    int    `json:"resources"`
	Dependencies int    `json:"dependencies"`
	Grants       int    `json:"grants"`
	// Unchanged is true when the configuration hash equals the latest
	// recorded deployment's.
	Unchanged bool `json:"unchanged"`
	DryRun    bool `json:"dry_run"`
}

// Recorder writes built stacks to a Store.
type Recorder struct {
	store  Store
	actor  string
	dryRun bool
	force  bool
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a new recorder.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:  store,
		actor:  "dataport",
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// WithActor sets who is recording, stored with the deployment.
func (r *Recorder) WithActor(actor string) *Recorder {
	r.actor = actor
	return r
}

// WithDryRun sets whether to validate only without keeping any write.
func (r *Recorder) WithDryRun(dryRun bool) *Recorder {
	r.dryRun = dryRun
	return r
}

// WithForce records a new version even when the configuration is unchanged.
func (r *Recorder) WithForce(force bool) *Recorder {
	r.force = force
	return r
}

// WithLogger sets the logger.
func (r *Recorder) WithLogger(logger *zap.Logger) *Recorder {
	r.logger = logger
	return r
}

// Record writes s, built from configText, as a new deployment version.
func (r *Recorder) Record(s *stack.Stack, configText string) (*Result, error) {
	if s == nil || s.App == nil || s.Graph == nil {
		return nil, fmt.Errorf("nothing to record")
	}
	sorted, err := s.Graph.Sort()
	if err != nil {
		return nil, fmt.Errorf("failed to order graph: %w", err)
	}
	layerOf, err := s.Graph.LayerOf()
	if err != nil {
		return nil, fmt.Errorf("failed to layer graph: %w", err)
	}

	hash := sha256.Sum256([]byte(configText))
	deployment := &Deployment{
		Tenant:       s.App.Name,
		RunID:        uuid.NewString(),
		Env:          string(s.App.Env),
		Actor:        r.actor,
		ConfigText:   configText,
		ConfigSHA256: hex.EncodeToString(hash[:]),
		CreatedAt:    r.now().UTC(),
	}
	log := r.logger.With(
		zap.String("tenant", deployment.Tenant),
		zap.String("run_id", deployment.RunID),
		zap.Bool("dry_run", r.dryRun),
	)

	result := &Result{RunID: deployment.RunID, DryRun: r.dryRun}

	err = r.store.Transaction(func(tx Store) error {
		latest, err := tx.LatestDeployment(deployment.Tenant)
		switch {
		case errors.Is(err, ErrNoDeployment):
		case err != nil:
			return err
		case latest.ConfigSHA256 == deployment.ConfigSHA256:
			result.Unchanged = true
			if !r.force {
				result.Version = latest.Version
				result.RunID = latest.RunID
				return nil
			}
		}

		if err := tx.CreateDeployment(deployment); err != nil {
			return err
		}
		result.Version = deployment.Version

		for i, n := range sorted {
			spec, err := json.Marshal(n.Spec)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", n.ID, err)
			}
			err = tx.CreateResource(deployment.RunID, Resource{
				NodeID:       n.ID,
				Kind:         n.Kind,
				Component:    n.Parent,
				ProviderName: providerName(n.Spec),
				Position:     i,
				Layer:        layerOf[n.ID],
				Spec:         spec,
			})
			if err != nil {
				return fmt.Errorf("failed to record %s: %w", n.ID, err)
			}
			result.Resources++
		}

		// Edges reference resources, so they go in once every node is recorded.
		for _, n := range sorted {
			for _, dep := range n.DependsOn {
				if err := tx.CreateDependency(deployment.RunID, n.ID, dep); err != nil {
					return fmt.Errorf("failed to record dependency %s -> %s: %w", n.ID, dep, err)
				}
				result.Dependencies++
			}
			granter, ok := n.Spec.(snowflake.Granter)
			if !ok {
				continue
			}
			for _, t := range granter.Triples() {
				err := tx.CreateGrant(deployment.RunID, Grant{
					NodeID:     n.ID,
					Role:       t.Role,
					Privileges: t.Privileges,
					Scope:      t.Scope,
				})
				if err != nil {
					return fmt.Errorf("failed to record grant %s: %w", t, err)
				}
				result.Grants++
			}
		}

		if err := tx.FinishDeployment(deployment.RunID, r.now().UTC()); err != nil {
			return err
		}

		if r.dryRun {
			return errDryRunRollback
		}
		return nil
	})

	if errors.Is(err, errDryRunRollback) {
		log.Info("dry run recorded and rolled back", zap.Int("resources", result.Resources))
		return result, nil
	}
	if err != nil {
		log.Error("failed to record deployment", zap.Error(err))
		return nil, err
	}

	if result.Unchanged && !r.force {
		log.Info("configuration unchanged", zap.Int("version", result.Version))
	} else {
		log.Info("recorded deployment",
			zap.Int("version", result.Version),
			zap.Int("resources", result.Resources),
			zap.Int("dependencies", result.Dependencies),
			zap.Int("grants", result.Grants),
		)
	}
	return result, nil
}

func providerName(spec any) string {
	switch s := spec.(type) {
	case snowflake.Database:
		return s.Name
	case snowflake.Role:
		return s.Name
	case snowflake.Warehouse:
		return s.Name
	case snowflake.User:
		return s.Name
	case snowflake.Schema:
		return snowflake.QualifiedName(s.Database, s.Name)
	default:
		return ""
	}
}
