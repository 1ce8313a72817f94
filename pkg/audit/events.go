package audit

import (
	"fmt"
	"strconv"
)

// DeploymentEvent represents recording a stack to the ledger
type DeploymentEvent struct {
	Actor        string
	Tenant       string
	Env          string
	RunID        string
	Version      int
	DryRun       bool
	Unchanged    bool
	Success      bool
	ErrorMessage string
}

// Subject returns the deployment the event is about.
func (e DeploymentEvent) Subject() Subject {
	return Subject{Tenant: e.Tenant, Env: e.Env, RunID: e.RunID, Version: e.Version}
}

func (e DeploymentEvent) MessageID() string {
	return "deployment"
}

func (e DeploymentEvent) operation() string {
	if e.DryRun {
		return "dry-run"
	}
	return "record"
}

func (e DeploymentEvent) Message() string {
	if !e.Success {
		msg := fmt.Sprintf("%s failed to %s deployment of tenant %s", e.Actor, e.operation(), e.Tenant)
		if e.ErrorMessage != "" {
			msg += ": " + e.ErrorMessage
		}
		return msg
	}
	switch {
	case e.Unchanged:
		return fmt.Sprintf("%s found tenant %s unchanged at version %d", e.Actor, e.Tenant, e.Version)
	case e.DryRun:
		return fmt.Sprintf("%s validated deployment of tenant %s (dry run)", e.Actor, e.Tenant)
	default:
		return fmt.Sprintf("%s recorded deployment of tenant %s (version %d)", e.Actor, e.Tenant, e.Version)
	}
}

func (e DeploymentEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e DeploymentEvent) Facility() int {
	return FacilityAuth
}

func (e DeploymentEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Actor,
		},
		SDIDSubject: {
			"tenant": e.Tenant,
		},
		SDIDAction: {
			"operation": e.operation(),
		},
	}
	if e.Env != "" {
		sd[SDIDSubject]["env"] = e.Env
	}
	if e.RunID != "" || e.Version > 0 {
		sd[SDIDLedger] = map[string]string{
			"run_id":  e.RunID,
			"version": strconv.Itoa(e.Version),
		}
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}

// MigrationEvent represents a ledger schema migration
type MigrationEvent struct {
	Actor        string
	Direction    string // "up" or "down"
	Version      uint
	Success      bool
	ErrorMessage string
}

func (e MigrationEvent) MessageID() string {
	return "migration"
}

func (e MigrationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s migrated ledger schema %s to version %d", e.Actor, e.Direction, e.Version)
	}
	msg := fmt.Sprintf("%s failed to migrate ledger schema %s", e.Actor, e.Direction)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MigrationEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityError
}

func (e MigrationEvent) Facility() int {
	return FacilityLocal0
}

func (e MigrationEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Actor,
		},
		SDIDAction: {
			"operation": "migrate-" + e.Direction,
			"result":    result,
		},
		SDIDLedger: {
			"version": strconv.FormatUint(uint64(e.Version), 10),
		},
	}
}
