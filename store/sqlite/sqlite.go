/*
Package sqlite provides a SQLite-backed implementation of roster.TxStore.

PURPOSE:
  Persists offerings, sessions, enrollments, waitlist entries, attendance and
  access requests. In production, the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

UNIQUENESS:
  Every table's primary key is the record's key tuple, so a second create at
  the same address fails with a constraint error that is mapped to
  roster.DuplicateKeyError. This is the store half of the uniqueness rule.

  enrollments:      (offering_id, participant)
  waitlist_entries: (offering_id, participant)
  attendance:       (session_id, participant)
  access_requests:  (user_key)

COUNTER CHECKS:
  CHECK constraints on offerings mirror the ledger invariants. They never
  fire in practice; the engine checks first.

DRIVERS:
  DriverCGO ("sqlite3"):  github.com/mattn/go-sqlite3, the default
  DriverPure ("sqlite"):  modernc.org/sqlite, no cgo required

CONCURRENCY:
  The pool is capped at one connection and WithTx is serialized with a
  mutex, so transactions never interleave. ":memory:" databases stay
  coherent because every statement shares the single connection.

USAGE:
  store, err := sqlite.New("./data/formations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := roster.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - roster/store.go: Interface definitions
  - roster/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/formation-engine/roster"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// Store implements roster.TxStore using SQLite.
type Store struct {
	queries
	db *sql.DB
	mu sync.Mutex
}

// New opens a store with the cgo driver.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	return Open(DriverCGO, dbPath)
}

// Open opens a store with the named driver.
func Open(driver, dbPath string) (*Store, error) {
	dsn, err := buildDSN(driver, dbPath)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func buildDSN(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGO:
		return dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPure:
		dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		if dbPath != ":memory:" {
			dsn += "&_pragma=journal_mode(WAL)"
		}
		return dsn, nil
	}
	return "", fmt.Errorf("unknown sqlite driver %q", driver)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS offerings (
		id TEXT PRIMARY KEY,
		organizer TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		mode TEXT NOT NULL,
		max_students INTEGER NOT NULL CHECK (max_students BETWEEN 0 AND 100),
		waitlist_capacity INTEGER NOT NULL CHECK (waitlist_capacity BETWEEN 0 AND 50),
		current_students INTEGER NOT NULL CHECK (current_students BETWEEN 0 AND max_students),
		current_waitlisted INTEGER NOT NULL CHECK (current_waitlisted BETWEEN 0 AND waitlist_capacity),
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		offering_id TEXT NOT NULL REFERENCES offerings(id),
		organizer TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_offering
		ON sessions(offering_id, start_time);

	CREATE TABLE IF NOT EXISTS enrollments (
		offering_id TEXT NOT NULL REFERENCES offerings(id),
		participant TEXT NOT NULL,
		status TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (offering_id, participant)
	);

	CREATE TABLE IF NOT EXISTS waitlist_entries (
		offering_id TEXT NOT NULL REFERENCES offerings(id),
		participant TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (offering_id, participant)
	);

	-- Queue order for listing and the expiry sweep
	CREATE INDEX IF NOT EXISTS idx_waitlist_queue
		ON waitlist_entries(offering_id, position, created_at);

	CREATE TABLE IF NOT EXISTS attendance (
		session_id TEXT NOT NULL REFERENCES sessions(id),
		participant TEXT NOT NULL,
		status TEXT NOT NULL,
		check_in_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (session_id, participant)
	);

	CREATE TABLE IF NOT EXISTS access_requests (
		user_key TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_access_requests_status
		ON access_requests(status, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (roster.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store roster.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset deletes all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"attendance", "sessions", "enrollments", "waitlist_entries", "offerings", "access_requests"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// QUERIES - Shared by the pool and by open transactions
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

type scanner interface {
	Scan(dest ...any) error
}

func (qs *queries) insert(ctx context.Context, addr roster.Address, query string, args ...any) error {
	if _, err := qs.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return &roster.DuplicateKeyError{Address: addr}
		}
		return fmt.Errorf("failed to insert %s: %w", addr.Kind, err)
	}
	return nil
}

func (qs *queries) update(ctx context.Context, addr roster.Address, query string, args ...any) error {
	res, err := qs.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", addr.Kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", addr.Kind, err)
	}
	if n == 0 {
		return &roster.NotFoundError{Address: addr}
	}
	return nil
}

func notFound(addr roster.Address, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &roster.NotFoundError{Address: addr}
	}
	return fmt.Errorf("failed to get %s: %w", addr.Kind, err)
}

// =============================================================================
// OFFERINGS
// =============================================================================

const offeringColumns = `id, organizer, title, description, mode, max_students, waitlist_capacity,
	current_students, current_waitlisted, status, created_at, updated_at`

func (qs *queries) CreateOffering(ctx context.Context, o roster.Offering) error {
	return qs.insert(ctx, o.Address(), `
		INSERT INTO offerings (`+offeringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Organizer, o.Title, o.Description, o.Mode,
		o.MaxStudents, o.WaitlistCapacity, o.CurrentStudents, o.CurrentWaitlisted,
		o.Status, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
}

func (qs *queries) UpdateOffering(ctx context.Context, o roster.Offering) error {
	return qs.update(ctx, o.Address(), `
		UPDATE offerings
		SET title = ?, description = ?, mode = ?, max_students = ?, waitlist_capacity = ?,
		    current_students = ?, current_waitlisted = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		o.Title, o.Description, o.Mode, o.MaxStudents, o.WaitlistCapacity,
		o.CurrentStudents, o.CurrentWaitlisted, o.Status, formatTime(o.UpdatedAt),
		o.ID,
	)
}

func (qs *queries) GetOffering(ctx context.Context, id roster.OfferingID) (roster.Offering, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+offeringColumns+` FROM offerings WHERE id = ?`, id)
	o, err := scanOffering(row)
	if err != nil {
		return roster.Offering{}, notFound(roster.OfferingAddress(id), err)
	}
	return o, nil
}

func (qs *queries) ListOfferings(ctx context.Context) ([]roster.Offering, error) {
	rows, err := qs.q.QueryContext(ctx, `SELECT `+offeringColumns+` FROM offerings ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	return collect(rows, scanOffering)
}

func scanOffering(row scanner) (roster.Offering, error) {
	var (
		o                roster.Offering
		created, updated string
	)
	err := row.Scan(
		&o.ID, &o.Organizer, &o.Title, &o.Description, &o.Mode,
		&o.MaxStudents, &o.WaitlistCapacity, &o.CurrentStudents, &o.CurrentWaitlisted,
		&o.Status, &created, &updated,
	)
	if err != nil {
		return o, err
	}
	var tp timeParser
	o.CreatedAt, o.UpdatedAt = tp.parse(created), tp.parse(updated)
	return o, tp.err
}

// =============================================================================
// SESSIONS
// =============================================================================

const sessionColumns = `id, offering_id, organizer, title, description, start_time, end_time, created_at, updated_at`

func (qs *queries) CreateSession(ctx context.Context, s roster.Session) error {
	return qs.insert(ctx, s.Address(), `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OfferingID, s.Organizer, s.Title, s.Description,
		formatTime(s.StartTime), formatTime(s.EndTime), formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
}

func (qs *queries) GetSession(ctx context.Context, id roster.SessionID) (roster.Session, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		return roster.Session{}, notFound(roster.SessionAddress(id), err)
	}
	return s, nil
}

func (qs *queries) ListSessions(ctx context.Context, offering roster.OfferingID) ([]roster.Session, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE offering_id = ? ORDER BY start_time, id`, offering)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return collect(rows, scanSession)
}

func scanSession(row scanner) (roster.Session, error) {
	var (
		s                            roster.Session
		start, end, created, updated string
	)
	if err := row.Scan(&s.ID, &s.OfferingID, &s.Organizer, &s.Title, &s.Description, &start, &end, &created, &updated); err != nil {
		return s, err
	}
	var tp timeParser
	s.StartTime, s.EndTime = tp.parse(start), tp.parse(end)
	s.CreatedAt, s.UpdatedAt = tp.parse(created), tp.parse(updated)
	return s, tp.err
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

const enrollmentColumns = `offering_id, participant, status, position, created_at, updated_at`

func (qs *queries) CreateEnrollment(ctx context.Context, e roster.Enrollment) error {
	return qs.insert(ctx, e.Address(), `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OfferingID, e.Participant, e.Status, e.Position, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
}

func (qs *queries) UpdateEnrollment(ctx context.Context, e roster.Enrollment) error {
	return qs.update(ctx, e.Address(), `
		UPDATE enrollments SET status = ?, position = ?, updated_at = ?
		WHERE offering_id = ? AND participant = ?`,
		e.Status, e.Position, formatTime(e.UpdatedAt), e.OfferingID, e.Participant,
	)
}

func (qs *queries) GetEnrollment(ctx context.Context, offering roster.OfferingID, participant roster.Identity) (roster.Enrollment, error) {
	row := qs.q.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE offering_id = ? AND participant = ?`,
		offering, participant)
	e, err := scanEnrollment(row)
	if err != nil {
		return roster.Enrollment{}, notFound(roster.EnrollmentAddress(offering, participant), err)
	}
	return e, nil
}

func (qs *queries) ListEnrollments(ctx context.Context, offering roster.OfferingID) ([]roster.Enrollment, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE offering_id = ? ORDER BY position, participant`, offering)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return collect(rows, scanEnrollment)
}

func scanEnrollment(row scanner) (roster.Enrollment, error) {
	var (
		e                roster.Enrollment
		created, updated string
	)
	if err := row.Scan(&e.OfferingID, &e.Participant, &e.Status, &e.Position, &created, &updated); err != nil {
		return e, err
	}
	var tp timeParser
	e.CreatedAt, e.UpdatedAt = tp.parse(created), tp.parse(updated)
	return e, tp.err
}

// =============================================================================
// WAITLIST
// =============================================================================

const waitlistColumns = `offering_id, participant, position, status, timestamp, created_at, updated_at`

func (qs *queries) CreateWaitlistEntry(ctx context.Context, w roster.WaitlistEntry) error {
	return qs.insert(ctx, w.Address(), `
		INSERT INTO waitlist_entries (`+waitlistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.OfferingID, w.Participant, w.Position, w.Status,
		formatTime(w.Timestamp), formatTime(w.CreatedAt), formatTime(w.UpdatedAt),
	)
}

func (qs *queries) UpdateWaitlistEntry(ctx context.Context, w roster.WaitlistEntry) error {
	return qs.update(ctx, w.Address(), `
		UPDATE waitlist_entries SET position = ?, status = ?, timestamp = ?, updated_at = ?
		WHERE offering_id = ? AND participant = ?`,
		w.Position, w.Status, formatTime(w.Timestamp), formatTime(w.UpdatedAt), w.OfferingID, w.Participant,
	)
}

func (qs *queries) GetWaitlistEntry(ctx context.Context, offering roster.OfferingID, participant roster.Identity) (roster.WaitlistEntry, error) {
	row := qs.q.QueryRowContext(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist_entries WHERE offering_id = ? AND participant = ?`,
		offering, participant)
	w, err := scanWaitlistEntry(row)
	if err != nil {
		return roster.WaitlistEntry{}, notFound(roster.WaitlistAddress(offering, participant), err)
	}
	return w, nil
}

func (qs *queries) ListWaitlist(ctx context.Context, offering roster.OfferingID) ([]roster.WaitlistEntry, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT `+waitlistColumns+` FROM waitlist_entries WHERE offering_id = ?
		 ORDER BY position, created_at, participant`, offering)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	return collect(rows, scanWaitlistEntry)
}

func scanWaitlistEntry(row scanner) (roster.WaitlistEntry, error) {
	var (
		w                    roster.WaitlistEntry
		ts, created, updated string
	)
	if err := row.Scan(&w.OfferingID, &w.Participant, &w.Position, &w.Status, &ts, &created, &updated); err != nil {
		return w, err
	}
	var tp timeParser
	w.Timestamp = tp.parse(ts)
	w.CreatedAt, w.UpdatedAt = tp.parse(created), tp.parse(updated)
	return w, tp.err
}

// =============================================================================
// ATTENDANCE
// =============================================================================

const attendanceColumns = `session_id, participant, status, check_in_time, created_at, updated_at`

func (qs *queries) CreateAttendance(ctx context.Context, a roster.Attendance) error {
	return qs.insert(ctx, a.Address(), `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.Participant, a.Status,
		formatTime(a.CheckInTime), formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
}

func (qs *queries) GetAttendance(ctx context.Context, session roster.SessionID, participant roster.Identity) (roster.Attendance, error) {
	row := qs.q.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE session_id = ? AND participant = ?`,
		session, participant)
	a, err := scanAttendance(row)
	if err != nil {
		return roster.Attendance{}, notFound(roster.AttendanceAddress(session, participant), err)
	}
	return a, nil
}

func (qs *queries) ListAttendance(ctx context.Context, session roster.SessionID) ([]roster.Attendance, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE session_id = ? ORDER BY check_in_time, participant`, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return collect(rows, scanAttendance)
}

func scanAttendance(row scanner) (roster.Attendance, error) {
	var (
		a                         roster.Attendance
		checkIn, created, updated string
	)
	if err := row.Scan(&a.SessionID, &a.Participant, &a.Status, &checkIn, &created, &updated); err != nil {
		return a, err
	}
	var tp timeParser
	a.CheckInTime = tp.parse(checkIn)
	a.CreatedAt, a.UpdatedAt = tp.parse(created), tp.parse(updated)
	return a, tp.err
}

// =============================================================================
// ACCESS REQUESTS
// =============================================================================

const requestColumns = `user_key, role, name, email, message, status, created_at, updated_at`

func (qs *queries) CreateAccessRequest(ctx context.Context, r roster.AccessRequest) error {
	return qs.insert(ctx, r.Address(), `
		INSERT INTO access_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.User, r.Role, r.Name, r.Email, r.Message, r.Status, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
}

func (qs *queries) UpdateAccessRequest(ctx context.Context, r roster.AccessRequest) error {
	return qs.update(ctx, r.Address(), `
		UPDATE access_requests SET status = ?, updated_at = ? WHERE user_key = ?`,
		r.Status, formatTime(r.UpdatedAt), r.User,
	)
}

func (qs *queries) GetAccessRequest(ctx context.Context, user roster.Identity) (roster.AccessRequest, error) {
	row := qs.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM access_requests WHERE user_key = ?`, user)
	r, err := scanAccessRequest(row)
	if err != nil {
		return roster.AccessRequest{}, notFound(roster.AccessRequestAddress(user), err)
	}
	return r, nil
}

func (qs *queries) ListAccessRequests(ctx context.Context, status roster.RequestStatus) ([]roster.AccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM access_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, user_key`

	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	return collect(rows, scanAccessRequest)
}

func scanAccessRequest(row scanner) (roster.AccessRequest, error) {
	var (
		r                roster.AccessRequest
		created, updated string
	)
	if err := row.Scan(&r.User, &r.Role, &r.Name, &r.Email, &r.Message, &r.Status, &created, &updated); err != nil {
		return r, err
	}
	var tp timeParser
	r.CreatedAt, r.UpdatedAt = tp.parse(created), tp.parse(updated)
	return r, tp.err
}

// Helper functions

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timeParser decodes stored timestamps and keeps the first failure, so a
// scan helper can parse every column and report once.
type timeParser struct {
	err error
}

func (p *timeParser) parse(s string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		p.err = fmt.Errorf("invalid stored time %q: %w", s, err)
		return time.Time{}
	}
	return t.UTC()
}

// isUniqueConstraintError recognizes primary key and unique violations from
// either driver.
func isUniqueConstraintError(err error) bool {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pureErr *msqlite.Error
	if errors.As(err, &pureErr) {
		switch pureErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ roster.TxStore = (*Store)(nil)
	_ roster.Store   = (*queries)(nil)
)
