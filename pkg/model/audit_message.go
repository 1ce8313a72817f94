package model

import "time"

// AuditMessage is a persisted audit event. Tenant, Env, RunID and Version
// are set only for events about a tenant deployment.
type AuditMessage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Facility  int       `gorm:"column:facility"`
	Severity  int       `gorm:"column:severity"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Hostname  string    `gorm:"column:hostname"`
	Appname   string    `gorm:"column:appname"`
	Procid    string    `gorm:"column:procid"`
	Msgid     string    `gorm:"column:msgid"`
	Tenant    *string   `gorm:"column:tenant"`
	Env       *string   `gorm:"column:env"`
	RunID     *string   `gorm:"column:run_id;type:uuid"`
	Version   *int      `gorm:"column:version"`
	Sdata     string    `gorm:"column:sdata;type:jsonb"`
	Message   string    `gorm:"column:message"`
}

func (AuditMessage) TableName() string {
	return "audit_messages"
}
