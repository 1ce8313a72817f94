package audit

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(DeploymentEvent{
		Actor:   "ci",
		Tenant:  "acme",
		Env:     "dev",
		RunID:   "run-1",
		Version: 3,
		Success: true,
	})

	line := buf.String()
	// <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
	pattern := regexp.MustCompile(`^<(\d+)>1 \d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z \S+ dataport \d+ deployment \[.*\] .+\n$`)
	if !pattern.MatchString(line) {
		t.Fatalf("log line does not match RFC5424 shape: %q", line)
	}

	// FacilityAuth*8 + SeverityNotice
	if !strings.HasPrefix(line, "<37>1 ") {
		t.Errorf("PRI = %q, want <37>", line[:5])
	}
	if !strings.Contains(line, "ci recorded deployment of tenant acme (version 3)") {
		t.Errorf("message missing from %q", line)
	}
}

func TestStructuredDataIsSorted(t *testing.T) {
	sd := map[string]map[string]string{
		"b@1": {"z": "1", "a": "2"},
		"a@1": {"k": "v"},
	}
	got := formatStructuredData(sd)
	want := `[a@1 k="v"][b@1 a="2" z="1"]`
	if got != want {
		t.Errorf("formatStructuredData() = %q, want %q", got, want)
	}

	if formatStructuredData(nil) != "" {
		t.Error("formatStructuredData(nil) should be empty")
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name         string
		event        Event
		wantMsgID    string
		wantSeverity Severity
		wantFacility int
		wantMessage  string
	}{
		{
			name:         "recorded deployment",
			event:        DeploymentEvent{Actor: "ci", Tenant: "acme", Version: 2, Success: true},
			wantMsgID:    "deployment",
			wantSeverity: SeverityNotice,
			wantFacility: FacilityAuth,
			wantMessage:  "ci recorded deployment of tenant acme (version 2)",
		},
		{
			name:         "dry run",
			event:        DeploymentEvent{Actor: "ci", Tenant: "acme", DryRun: true, Success: true},
			wantMsgID:    "deployment",
			wantSeverity: SeverityNotice,
			wantFacility: FacilityAuth,
			wantMessage:  "ci validated deployment of tenant acme (dry run)",
		},
		{
			name:         "unchanged",
			event:        DeploymentEvent{Actor: "ci", Tenant: "acme", Version: 4, Unchanged: true, Success: true},
			wantMsgID:    "deployment",
			wantSeverity: SeverityNotice,
			wantFacility: FacilityAuth,
			wantMessage:  "ci found tenant acme unchanged at version 4",
		},
		{
			name:         "failed deployment",
			event:        DeploymentEvent{Actor: "ci", Tenant: "acme", ErrorMessage: "connection refused"},
			wantMsgID:    "deployment",
			wantSeverity: SeverityWarning,
			wantFacility: FacilityAuth,
			wantMessage:  "ci failed to record deployment of tenant acme: connection refused",
		},
		{
			name:         "migration",
			event:        MigrationEvent{Actor: "admin", Direction: "up", Version: 20260101000004, Success: true},
			wantMsgID:    "migration",
			wantSeverity: SeverityNotice,
			wantFacility: FacilityLocal0,
			wantMessage:  "admin migrated ledger schema up to version 20260101000004",
		},
		{
			name:         "failed migration",
			event:        MigrationEvent{Actor: "admin", Direction: "down", ErrorMessage: "dirty database"},
			wantMsgID:    "migration",
			wantSeverity: SeverityError,
			wantFacility: FacilityLocal0,
			wantMessage:  "admin failed to migrate ledger schema down: dirty database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.MessageID(); got != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", got, tt.wantMsgID)
			}
			if got := tt.event.Severity(); got != tt.wantSeverity {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSeverity)
			}
			if got := tt.event.Facility(); got != tt.wantFacility {
				t.Errorf("Facility() = %v, want %v", got, tt.wantFacility)
			}
			if got := tt.event.Message(); got != tt.wantMessage {
				t.Errorf("Message() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestDeploymentStructuredData(t *testing.T) {
	event := DeploymentEvent{
		Actor:   "ci",
		Tenant:  "acme",
		Env:     "prod",
		RunID:   "run-1",
		Version: 7,
		Success: true,
	}

	sd := event.StructuredData()

	if sd[SDIDAuth]["user"] != "ci" {
		t.Errorf("StructuredData auth.user = %v, want 'ci'", sd[SDIDAuth]["user"])
	}
	if sd[SDIDSubject]["tenant"] != "acme" {
		t.Errorf("StructuredData subject.tenant = %v, want 'acme'", sd[SDIDSubject]["tenant"])
	}
	if sd[SDIDSubject]["env"] != "prod" {
		t.Errorf("StructuredData subject.env = %v, want 'prod'", sd[SDIDSubject]["env"])
	}
	if sd[SDIDLedger]["version"] != "7" {
		t.Errorf("StructuredData ledger.version = %v, want '7'", sd[SDIDLedger]["version"])
	}
	if sd[SDIDAction]["operation"] != "record" {
		t.Errorf("StructuredData action.operation = %v, want 'record'", sd[SDIDAction]["operation"])
	}
	if sd[SDIDAction]["result"] != "success" {
		t.Errorf("StructuredData action.result = %v, want 'success'", sd[SDIDAction]["result"])
	}

	failed := DeploymentEvent{Actor: "ci", Tenant: "acme"}.StructuredData()
	if _, ok := failed[SDIDLedger]; ok {
		t.Error("failed deployment without a run should not carry ledger data")
	}
	if failed[SDIDAction]["result"] != "failure" {
		t.Errorf("StructuredData action.result = %v, want 'failure'", failed[SDIDAction]["result"])
	}
}

func TestAuditToggle(t *testing.T) {
	originalEnabled := auditEnabled
	defer func() {
		auditEnabled = originalEnabled
	}()

	SetEnabled(false)
	if IsEnabled() {
		t.Error("Expected audit to be disabled")
	}

	SetEnabled(true)
	if !IsEnabled() {
		t.Error("Expected audit to be enabled")
	}
}

func TestLogSkipsWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	originalWriter := DefaultLogger.writer
	originalEnabled := auditEnabled
	defer func() {
		DefaultLogger.SetWriter(originalWriter)
		auditEnabled = originalEnabled
	}()
	DefaultLogger.SetWriter(&buf)

	SetEnabled(false)
	Log(MigrationEvent{Actor: "admin", Direction: "up", Success: true})
	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{`with]bracket`, `"with\]bracket"`},
		{`all"special\chars]`, `"all\"special\\chars\]"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeSDValue(tt.input)
			if got != tt.want {
				t.Errorf("escapeSDValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStampCarriesSubject(t *testing.T) {
	l := NewLogger()
	m := l.Stamp(DeploymentEvent{Actor: "ci", Tenant: "acme", Env: "INT", RunID: "run-1", Version: 4, Success: true})
	want := Subject{Tenant: "acme", Env: "INT", RunID: "run-1", Version: 4}
	if m.Subject != want {
		t.Errorf("Subject = %+v, want %+v", m.Subject, want)
	}
	if m.Priority() != 37 {
		t.Errorf("Priority() = %d, want 37", m.Priority())
	}

	migration := l.Stamp(MigrationEvent{Actor: "admin", Direction: "down", Success: true})
	if migration.Subject != (Subject{}) {
		t.Errorf("migration Subject = %+v, want empty", migration.Subject)
	}
}

func TestLogPersistsToStore(t *testing.T) {
	s, mock := setupTestStore(t)
	var buf bytes.Buffer
	originalWriter := DefaultLogger.writer
	originalEnabled := auditEnabled
	defer func() {
		DefaultLogger.SetWriter(originalWriter)
		auditEnabled = originalEnabled
		SetStore(nil)
	}()
	DefaultLogger.SetWriter(&buf)
	SetEnabled(true)
	SetStore(s)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	Log(DeploymentEvent{Actor: "ci", Tenant: "acme", Version: 1, Success: true})
	if !strings.Contains(buf.String(), "ci recorded deployment of tenant acme (version 1)") {
		t.Errorf("event not logged: %q", buf.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
