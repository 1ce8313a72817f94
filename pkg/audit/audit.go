package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Structured data IDs (RFC5424) under the documentation Private Enterprise
// Number 32473 (RFC 5612).
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDLedger  = "ledger@32473"
)

// Syslog facilities used by dataport events.
const (
	FacilityAuth   = 4  // LOG_AUTH
	FacilityLocal0 = 16 // LOG_LOCAL0
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// AppName is the RFC5424 APP-NAME of every message
const AppName = "dataport"

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Subject names the tenant deployment an event is about.
type Subject struct {
	Tenant  string
	Env     string
	RunID   string
	Version int
}

// subjectEvent is implemented by events about one tenant deployment.
type subjectEvent interface {
	Subject() Subject
}

// Message is one audit event stamped with its origin. The same message is
// written to the log and persisted by the Store.
type Message struct {
	Facility  int
	Severity  Severity
	Timestamp time.Time
	Hostname  string
	Appname   string
	Procid    int
	Msgid     string
	Subject   Subject
	SD        map[string]map[string]string
	Text      string
}

// Priority is the RFC5424 PRI value.
func (m Message) Priority() int {
	return m.Facility*8 + int(m.Severity)
}

// String renders the message as one RFC5424 line without the trailing newline:
// <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (m Message) String() string {
	hostname := m.Hostname
	if hostname == "" {
		hostname = "-"
	}
	sd := formatStructuredData(m.SD)
	if sd == "" {
		sd = "-"
	}
	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s",
		m.Priority(),
		m.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		hostname, m.Appname, m.Procid, m.Msgid, sd, m.Text)
}

// Logger writes audit messages in RFC5424 syslog format
type Logger struct {
	writer   io.Writer
	hostname string
	pid      int
	now      func() time.Time
}

// NewLogger creates a logger writing to stderr
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stderr,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Stamp turns an event into a message from this process.
func (l *Logger) Stamp(event Event) Message {
	m := Message{
		Facility:  event.Facility(),
		Severity:  event.Severity(),
		Timestamp: l.now().UTC(),
		Hostname:  l.hostname,
		Appname:   AppName,
		Procid:    l.pid,
		Msgid:     event.MessageID(),
		SD:        event.StructuredData(),
		Text:      event.Message(),
	}
	if se, ok := event.(subjectEvent); ok {
		m.Subject = se.Subject()
	}
	return m
}

// Log stamps and writes an event, returning the written message.
func (l *Logger) Log(event Event) Message {
	m := l.Stamp(event)
	_, _ = io.WriteString(l.writer, m.String()+"\n")
	return m
}

// formatStructuredData renders SD elements as [sdid k="v" ...]. Elements and
// params are sorted so identical events format identically.
func formatStructuredData(sd map[string]map[string]string) string {
	sdids := make([]string, 0, len(sd))
	for sdid := range sd {
		sdids = append(sdids, sdid)
	}
	sort.Strings(sdids)

	var b strings.Builder
	for _, sdid := range sdids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		b.WriteString("[" + sdid)
		for _, key := range keys {
			b.WriteString(" " + key + "=" + escapeSDValue(params[key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

// escapeSDValue quotes a param value, escaping backslash, double quote and
// closing bracket (RFC5424 section 6.3.3).
func escapeSDValue(value string) string {
	return `"` + sdEscaper.Replace(value) + `"`
}

var sdEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

// DefaultLogger writes every audit event to stderr.
var DefaultLogger = NewLogger()

var (
	mu           sync.Mutex
	auditEnabled = true
	enabledOnce  sync.Once
	store        *Store
	storeOnce    sync.Once
)

// IsEnabled reports whether audit logging is enabled. DATAPORT_AUDIT_ENABLED
// is read once unless SetEnabled ran first.
func IsEnabled() bool {
	enabledOnce.Do(func() {
		if env := os.Getenv("DATAPORT_AUDIT_ENABLED"); env != "" {
			auditEnabled = env != "false" && env != "0" && env != "no"
		}
	})
	return auditEnabled
}

// SetEnabled overrides DATAPORT_AUDIT_ENABLED.
func SetEnabled(enabled bool) {
	enabledOnce.Do(func() {})
	auditEnabled = enabled
}

// SetStore makes Log persist messages to s, typically the ledger
// connection. AUDIT_DATABASE_URL is then ignored.
func SetStore(s *Store) {
	mu.Lock()
	defer mu.Unlock()
	storeOnce.Do(func() {})
	store = s
}

func currentStore() *Store {
	mu.Lock()
	defer mu.Unlock()
	storeOnce.Do(func() {
		s, err := OpenStore(os.Getenv("AUDIT_DATABASE_URL"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
			return
		}
		store = s
	})
	return store
}

// Log writes an event to the default logger and persists it when a store
// is configured. Persistence failures are reported on stderr only.
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	m := DefaultLogger.Log(event)
	if s := currentStore(); s != nil {
		if err := s.Save(m); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}
