package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/dataport/pkg/model"
)

// Store persists audit messages to the audit_messages table, with the
// deployment subject in typed columns.
type Store struct {
	db *gorm.DB
}

// NewStore persists through an open connection, usually the ledger's.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OpenStore opens a dedicated audit database. It returns nil when url is
// empty.
func OpenStore(url string) (*Store, error) {
	if url == "" {
		return nil, nil
	}
	sqlDB, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save persists a stamped message.
func (s *Store) Save(m Message) error {
	if s == nil || s.db == nil {
		return nil
	}
	sdata, err := json.Marshal(m.SD)
	if err != nil {
		return err
	}
	row := model.AuditMessage{
		Facility:  m.Facility,
		Severity:  int(m.Severity),
		Timestamp: m.Timestamp,
		Hostname:  m.Hostname,
		Appname:   m.Appname,
		Procid:    strconv.Itoa(m.Procid),
		Msgid:     m.Msgid,
		Tenant:    optional(m.Subject.Tenant),
		Env:       optional(m.Subject.Env),
		RunID:     optional(m.Subject.RunID),
		Sdata:     string(sdata),
		Message:   m.Text,
	}
	if m.Subject.Version > 0 {
		v := m.Subject.Version
		row.Version = &v
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save audit message %s: %w", m.Msgid, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
