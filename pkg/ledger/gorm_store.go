package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/dataport/pkg/model"
)

var _ Store = (*GormStore)(nil)

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Transaction wraps operations in a database transaction.
func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// CreateDeployment creates a deployment record with the next version.
func (s *GormStore) CreateDeployment(d *Deployment) error {
	var next int
	err := s.db.Model(&model.Deployment{}).
		Select("COALESCE(MAX(version), 0) + 1").
		Where("tenant = ?", d.Tenant).
		Scan(&next).Error
	if err != nil {
		return fmt.Errorf("failed to compute deployment version: %w", err)
	}

	row := model.Deployment{
		Tenant:       d.Tenant,
		Version:      next,
		RunID:        d.RunID,
		Env:          d.Env,
		Actor:        d.Actor,
		ConfigText:   d.ConfigText,
		ConfigSHA256: d.ConfigSHA256,
		CreatedAt:    d.CreatedAt,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create deployment: %w", err)
	}
	d.Version = next
	return nil
}

// LatestDeployment returns the highest recorded version of a tenant.
func (s *GormStore) LatestDeployment(tenant string) (*Deployment, error) {
	var row model.Deployment
	err := s.db.Where("tenant = ?", tenant).Order("version DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tenant %q: %w", tenant, ErrNoDeployment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest deployment: %w", err)
	}
	return &Deployment{
		Tenant:       row.Tenant,
		Version:      row.Version,
		RunID:        row.RunID,
		Env:          row.Env,
		Actor:        row.Actor,
		ConfigText:   row.ConfigText,
		ConfigSHA256: row.ConfigSHA256,
		CreatedAt:    row.CreatedAt,
		FinishedAt:   row.FinishedAt,
	}, nil
}

// CreateResource records a node.
func (s *GormStore) CreateResource(runID string, r Resource) error {
	row := model.DeploymentResource{
		RunID:        runID,
		NodeID:       r.NodeID,
		Kind:         r.Kind,
		Component:    r.Component,
		ProviderName: r.ProviderName,
		Position:     r.Position,
		Layer:        r.Layer,
		Spec:         string(r.Spec),
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// CreateDependency records an edge.
func (s *GormStore) CreateDependency(runID, nodeID, dependsOn string) error {
	row := model.DeploymentDependency{RunID: runID, NodeID: nodeID, DependsOn: dependsOn}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// CreateGrant records a grant triple.
func (s *GormStore) CreateGrant(runID string, g Grant) error {
	row := model.DeploymentGrant{
		RunID:      runID,
		Role:       g.Role,
		Privileges: g.Privileges,
		Scope:      g.Scope,
		NodeID:     g.NodeID,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// FinishDeployment marks a deployment complete.
func (s *GormStore) FinishDeployment(runID string, at time.Time) error {
	res := s.db.Model(&model.Deployment{}).Where("run_id = ?", runID).Update("finished_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to finish deployment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to finish deployment %s: not found", runID)
	}
	return nil
}
