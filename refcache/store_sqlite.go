package refcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is the modernc.org/sqlite side-car recording each catalog's
// last-refreshed timestamp (spec.md §6: "each file carries an
// associated last-refreshed timestamp") and a dispatched-request audit
// trail, grounded on peer/topology.go's schema-ensure style.
type Ledger struct {
	db     *sql.DB
	audit  chan auditRow
	stop   chan struct{}
}

type auditRow struct {
	at       time.Time
	sender   string
	action   string
	outcome  string
}

// OpenLedger opens (creating if needed) the SQLite ledger at path and
// ensures its schema.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("refcache: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("refcache: open db: %w", err)
	}
	if _, err := db.Exec(`pragma journal_mode=WAL; pragma synchronous=NORMAL;`); err != nil {
		return nil, fmt.Errorf("refcache: pragmas: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	l := &Ledger{db: db, audit: make(chan auditRow, 1000), stop: make(chan struct{})}
	go l.auditLoop()
	return l, nil
}

func ensureSchema(db *sql.DB) error {
	schema := `
	create table if not exists refresh_log (
		name text primary key,
		last_refreshed integer
	);
	create table if not exists request_audit (
		id integer primary key autoincrement,
		ts integer,
		sender text,
		action text,
		outcome text
	);
	create index if not exists idx_request_audit_ts on request_audit(ts);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("refcache: schema: %w", err)
	}
	return nil
}

// RecordRefresh upserts the last-refreshed timestamp for name.
func (l *Ledger) RecordRefresh(name string, at time.Time) {
	_, err := l.db.Exec(
		`insert into refresh_log(name, last_refreshed) values (?, ?)
		 on conflict(name) do update set last_refreshed = excluded.last_refreshed`,
		name, at.Unix(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refcache: record refresh %s: %v\n", name, err)
	}
}

// LastRefreshed returns the last recorded refresh instant for name.
func (l *Ledger) LastRefreshed(name string) (time.Time, bool) {
	var unix int64
	err := l.db.QueryRow(`select last_refreshed from refresh_log where name = ?`, name).Scan(&unix)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}

// RecordRequest enqueues a dispatched-request audit row, dropping it
// silently on backpressure so the hot path never blocks — the same
// non-blocking-enqueue shape as archive.go's Writer.Enqueue.
func (l *Ledger) RecordRequest(sender, action, outcome string) {
	select {
	case l.audit <- auditRow{at: time.Now().UTC(), sender: sender, action: action, outcome: outcome}:
	default:
	}
}

func (l *Ledger) auditLoop() {
	for {
		select {
		case <-l.stop:
			return
		case row := <-l.audit:
			_, err := l.db.Exec(
				`insert into request_audit(ts, sender, action, outcome) values (?, ?, ?, ?)`,
				row.at.Unix(), row.sender, row.action, row.outcome,
			)
			if err != nil {
				fmt.Fprintf(os.Stderr, "refcache: audit insert: %v\n", err)
			}
		}
	}
}

// Close stops the audit loop and closes the database.
func (l *Ledger) Close() error {
	close(l.stop)
	return l.db.Close()
}
