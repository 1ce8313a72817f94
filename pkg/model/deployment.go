package model

import "time"

// Deployment is one recorded build of a tenant stack
type Deployment struct {
	Tenant       string     `gorm:"column:tenant;primaryKey"`
	Version      int        `gorm:"column:version;primaryKey"`
	RunID        string     `gorm:"column:run_id;uniqueIndex"`
	Env          string     `gorm:"column:env"`
	Actor        string     `gorm:"column:actor"`
	ConfigText   string     `gorm:"column:config_text"`
	ConfigSHA256 string     `gorm:"column:config_sha256"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at"`
}

func (Deployment) TableName() string {
	return "deployments"
}

// DeploymentResource is a graph node recorded with its creation position
type DeploymentResource struct {
	RunID        string `gorm:"column:run_id;primaryKey"`
	NodeID       string `gorm:"column:node_id;primaryKey"`
	Kind         string `gorm:"column:kind"`
	Component    string `gorm:"column:component"`
	ProviderName string `gorm:"column:provider_name"`
	Position     int    `gorm:"column:position"`
	Layer        int    `gorm:"column:layer"`
	Spec         string `gorm:"column:spec;type:jsonb"`
}

func (DeploymentResource) TableName() string {
	return "deployment_resources"
}

// DeploymentDependency records that NodeID waits for DependsOn, which is a
// node or a whole component
type DeploymentDependency struct {
	RunID     string `gorm:"column:run_id;primaryKey"`
	NodeID    string `gorm:"column:node_id;primaryKey"`
	DependsOn string `gorm:"column:depends_on;primaryKey"`
}

func (DeploymentDependency) TableName() string {
	return "deployment_dependencies"
}

// DeploymentGrant is a privilege grant triple
type DeploymentGrant struct {
	RunID      string `gorm:"column:run_id;primaryKey"`
	Role       string `gorm:"column:role;primaryKey"`
	Privileges string `gorm:"column:privileges;primaryKey"`
	Scope      string `gorm:"column:scope;primaryKey"`
	NodeID     string `gorm:"column:node_id"`
}

func (DeploymentGrant) TableName() string {
	return "deployment_grants"
}
