// Package store provides in-process Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/formation-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every record in maps keyed by the record's address string.
// Records are stored by value, so callers never share state with the store.
type Memory struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	offerings   map[string]roster.Offering
	sessions    map[string]roster.Session
	enrollments map[string]roster.Enrollment
	waitlist    map[string]roster.WaitlistEntry
	attendance  map[string]roster.Attendance
	requests    map[string]roster.AccessRequest
}

func newState() *state {
	return &state{
		offerings:   make(map[string]roster.Offering),
		sessions:    make(map[string]roster.Session),
		enrollments: make(map[string]roster.Enrollment),
		waitlist:    make(map[string]roster.WaitlistEntry),
		attendance:  make(map[string]roster.Attendance),
		requests:    make(map[string]roster.AccessRequest),
	}
}

func NewMemory() *Memory {
	return &Memory{st: newState()}
}

func (m *Memory) read(fn func(st *state) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.st)
}

func (m *Memory) write(fn func(st *state) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.st)
}

// =============================================================================
// GENERIC HELPERS - Create-if-absent, update-if-present, get
// =============================================================================

func create[T interface{ Address() roster.Address }](table map[string]T, rec T) error {
	addr := rec.Address()
	k := addr.String()
	if _, ok := table[k]; ok {
		return &roster.DuplicateKeyError{Address: addr}
	}
	table[k] = rec
	return nil
}

func update[T interface{ Address() roster.Address }](table map[string]T, rec T) error {
	addr := rec.Address()
	k := addr.String()
	if _, ok := table[k]; !ok {
		return &roster.NotFoundError{Address: addr}
	}
	table[k] = rec
	return nil
}

func get[T any](table map[string]T, addr roster.Address) (T, error) {
	rec, ok := table[addr.String()]
	if !ok {
		var zero T
		return zero, &roster.NotFoundError{Address: addr}
	}
	return rec, nil
}

func collect[T any](table map[string]T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, rec := range table {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// =============================================================================
// STATE OPERATIONS - Caller holds the lock
// =============================================================================

func (st *state) createOffering(o roster.Offering) error { return create(st.offerings, o) }
func (st *state) updateOffering(o roster.Offering) error { return update(st.offerings, o) }

func (st *state) getOffering(id roster.OfferingID) (roster.Offering, error) {
	return get(st.offerings, roster.OfferingAddress(id))
}

func (st *state) listOfferings() []roster.Offering {
	out := collect(st.offerings, func(roster.Offering) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (st *state) createSession(s roster.Session) error { return create(st.sessions, s) }

func (st *state) getSession(id roster.SessionID) (roster.Session, error) {
	return get(st.sessions, roster.SessionAddress(id))
}

func (st *state) listSessions(id roster.OfferingID) []roster.Session {
	out := collect(st.sessions, func(s roster.Session) bool { return s.OfferingID == id })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (st *state) createEnrollment(e roster.Enrollment) error { return create(st.enrollments, e) }
func (st *state) updateEnrollment(e roster.Enrollment) error { return update(st.enrollments, e) }

func (st *state) getEnrollment(id roster.OfferingID, p roster.Identity) (roster.Enrollment, error) {
	return get(st.enrollments, roster.EnrollmentAddress(id, p))
}

func (st *state) listEnrollments(id roster.OfferingID) []roster.Enrollment {
	out := collect(st.enrollments, func(e roster.Enrollment) bool { return e.OfferingID == id })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Participant < out[j].Participant
	})
	return out
}

func (st *state) createWaitlistEntry(w roster.WaitlistEntry) error { return create(st.waitlist, w) }
func (st *state) updateWaitlistEntry(w roster.WaitlistEntry) error { return update(st.waitlist, w) }

func (st *state) getWaitlistEntry(id roster.OfferingID, p roster.Identity) (roster.WaitlistEntry, error) {
	return get(st.waitlist, roster.WaitlistAddress(id, p))
}

func (st *state) listWaitlist(id roster.OfferingID) []roster.WaitlistEntry {
	out := collect(st.waitlist, func(w roster.WaitlistEntry) bool { return w.OfferingID == id })
	roster.SortByPosition(out)
	return out
}

func (st *state) createAttendance(a roster.Attendance) error { return create(st.attendance, a) }

func (st *state) getAttendance(id roster.SessionID, p roster.Identity) (roster.Attendance, error) {
	return get(st.attendance, roster.AttendanceAddress(id, p))
}

func (st *state) listAttendance(id roster.SessionID) []roster.Attendance {
	out := collect(st.attendance, func(a roster.Attendance) bool { return a.SessionID == id })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckInTime.Equal(out[j].CheckInTime) {
			return out[i].CheckInTime.Before(out[j].CheckInTime)
		}
		return out[i].Participant < out[j].Participant
	})
	return out
}

func (st *state) createAccessRequest(r roster.AccessRequest) error { return create(st.requests, r) }
func (st *state) updateAccessRequest(r roster.AccessRequest) error { return update(st.requests, r) }

func (st *state) getAccessRequest(user roster.Identity) (roster.AccessRequest, error) {
	return get(st.requests, roster.AccessRequestAddress(user))
}

func (st *state) listAccessRequests(status roster.RequestStatus) []roster.AccessRequest {
	out := collect(st.requests, func(r roster.AccessRequest) bool {
		return status == "" || r.Status == status
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].User < out[j].User
	})
	return out
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.offerings {
		c.offerings[k] = v
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range st.waitlist {
		c.waitlist[k] = v
	}
	for k, v := range st.attendance {
		c.attendance[k] = v
	}
	for k, v := range st.requests {
		c.requests[k] = v
	}
	return c
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (m *Memory) CreateOffering(_ context.Context, o roster.Offering) error {
	return m.write(func(st *state) error { return st.createOffering(o) })
}

func (m *Memory) UpdateOffering(_ context.Context, o roster.Offering) error {
	return m.write(func(st *state) error { return st.updateOffering(o) })
}

func (m *Memory) GetOffering(_ context.Context, id roster.OfferingID) (o roster.Offering, err error) {
	err = m.read(func(st *state) error { o, err = st.getOffering(id); return err })
	return o, err
}

func (m *Memory) ListOfferings(_ context.Context) (out []roster.Offering, err error) {
	err = m.read(func(st *state) error { out = st.listOfferings(); return nil })
	return out, err
}

func (m *Memory) CreateSession(_ context.Context, s roster.Session) error {
	return m.write(func(st *state) error { return st.createSession(s) })
}

func (m *Memory) GetSession(_ context.Context, id roster.SessionID) (s roster.Session, err error) {
	err = m.read(func(st *state) error { s, err = st.getSession(id); return err })
	return s, err
}

func (m *Memory) ListSessions(_ context.Context, id roster.OfferingID) (out []roster.Session, err error) {
	err = m.read(func(st *state) error { out = st.listSessions(id); return nil })
	return out, err
}

func (m *Memory) CreateEnrollment(_ context.Context, e roster.Enrollment) error {
	return m.write(func(st *state) error { return st.createEnrollment(e) })
}

func (m *Memory) UpdateEnrollment(_ context.Context, e roster.Enrollment) error {
	return m.write(func(st *state) error { return st.updateEnrollment(e) })
}

func (m *Memory) GetEnrollment(_ context.Context, id roster.OfferingID, p roster.Identity) (e roster.Enrollment, err error) {
	err = m.read(func(st *state) error { e, err = st.getEnrollment(id, p); return err })
	return e, err
}

func (m *Memory) ListEnrollments(_ context.Context, id roster.OfferingID) (out []roster.Enrollment, err error) {
	err = m.read(func(st *state) error { out = st.listEnrollments(id); return nil })
	return out, err
}

func (m *Memory) CreateWaitlistEntry(_ context.Context, w roster.WaitlistEntry) error {
	return m.write(func(st *state) error { return st.createWaitlistEntry(w) })
}

func (m *Memory) UpdateWaitlistEntry(_ context.Context, w roster.WaitlistEntry) error {
	return m.write(func(st *state) error { return st.updateWaitlistEntry(w) })
}

func (m *Memory) GetWaitlistEntry(_ context.Context, id roster.OfferingID, p roster.Identity) (w roster.WaitlistEntry, err error) {
	err = m.read(func(st *state) error { w, err = st.getWaitlistEntry(id, p); return err })
	return w, err
}

func (m *Memory) ListWaitlist(_ context.Context, id roster.OfferingID) (out []roster.WaitlistEntry, err error) {
	err = m.read(func(st *state) error { out = st.listWaitlist(id); return nil })
	return out, err
}

func (m *Memory) CreateAttendance(_ context.Context, a roster.Attendance) error {
	return m.write(func(st *state) error { return st.createAttendance(a) })
}

func (m *Memory) GetAttendance(_ context.Context, id roster.SessionID, p roster.Identity) (a roster.Attendance, err error) {
	err = m.read(func(st *state) error { a, err = st.getAttendance(id, p); return err })
	return a, err
}

func (m *Memory) ListAttendance(_ context.Context, id roster.SessionID) (out []roster.Attendance, err error) {
	err = m.read(func(st *state) error { out = st.listAttendance(id); return nil })
	return out, err
}

func (m *Memory) CreateAccessRequest(_ context.Context, r roster.AccessRequest) error {
	return m.write(func(st *state) error { return st.createAccessRequest(r) })
}

func (m *Memory) UpdateAccessRequest(_ context.Context, r roster.AccessRequest) error {
	return m.write(func(st *state) error { return st.updateAccessRequest(r) })
}

func (m *Memory) GetAccessRequest(_ context.Context, user roster.Identity) (r roster.AccessRequest, err error) {
	err = m.read(func(st *state) error { r, err = st.getAccessRequest(user); return err })
	return r, err
}

func (m *Memory) ListAccessRequests(_ context.Context, status roster.RequestStatus) (out []roster.AccessRequest, err error) {
	err = m.read(func(st *state) error { out = st.listAccessRequests(status); return nil })
	return out, err
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// Transactions are fully serialized by the store lock.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(roster.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.st.clone()

	if err := fn(&txView{st: tm.st}); err != nil {
		tm.st = snapshot
		return err
	}
	return nil
}

// txView operates on state directly; the enclosing WithTx holds the lock.
type txView struct {
	st *state
}

func (tv *txView) CreateOffering(_ context.Context, o roster.Offering) error {
	return tv.st.createOffering(o)
}

func (tv *txView) UpdateOffering(_ context.Context, o roster.Offering) error {
	return tv.st.updateOffering(o)
}

func (tv *txView) GetOffering(_ context.Context, id roster.OfferingID) (roster.Offering, error) {
	return tv.st.getOffering(id)
}

func (tv *txView) ListOfferings(_ context.Context) ([]roster.Offering, error) {
	return tv.st.listOfferings(), nil
}

func (tv *txView) CreateSession(_ context.Context, s roster.Session) error {
	return tv.st.createSession(s)
}

func (tv *txView) GetSession(_ context.Context, id roster.SessionID) (roster.Session, error) {
	return tv.st.getSession(id)
}

func (tv *txView) ListSessions(_ context.Context, id roster.OfferingID) ([]roster.Session, error) {
	return tv.st.listSessions(id), nil
}

func (tv *txView) CreateEnrollment(_ context.Context, e roster.Enrollment) error {
	return tv.st.createEnrollment(e)
}

func (tv *txView) UpdateEnrollment(_ context.Context, e roster.Enrollment) error {
	return tv.st.updateEnrollment(e)
}

func (tv *txView) GetEnrollment(_ context.Context, id roster.OfferingID, p roster.Identity) (roster.Enrollment, error) {
	return tv.st.getEnrollment(id, p)
}

func (tv *txView) ListEnrollments(_ context.Context, id roster.OfferingID) ([]roster.Enrollment, error) {
	return tv.st.listEnrollments(id), nil
}

func (tv *txView) CreateWaitlistEntry(_ context.Context, w roster.WaitlistEntry) error {
	return tv.st.createWaitlistEntry(w)
}

func (tv *txView) UpdateWaitlistEntry(_ context.Context, w roster.WaitlistEntry) error {
	return tv.st.updateWaitlistEntry(w)
}

func (tv *txView) GetWaitlistEntry(_ context.Context, id roster.OfferingID, p roster.Identity) (roster.WaitlistEntry, error) {
	return tv.st.getWaitlistEntry(id, p)
}

func (tv *txView) ListWaitlist(_ context.Context, id roster.OfferingID) ([]roster.WaitlistEntry, error) {
	return tv.st.listWaitlist(id), nil
}

func (tv *txView) CreateAttendance(_ context.Context, a roster.Attendance) error {
	return tv.st.createAttendance(a)
}

func (tv *txView) GetAttendance(_ context.Context, id roster.SessionID, p roster.Identity) (roster.Attendance, error) {
	return tv.st.getAttendance(id, p)
}

func (tv *txView) ListAttendance(_ context.Context, id roster.SessionID) ([]roster.Attendance, error) {
	return tv.st.listAttendance(id), nil
}

func (tv *txView) CreateAccessRequest(_ context.Context, r roster.AccessRequest) error {
	return tv.st.createAccessRequest(r)
}

func (tv *txView) UpdateAccessRequest(_ context.Context, r roster.AccessRequest) error {
	return tv.st.updateAccessRequest(r)
}

func (tv *txView) GetAccessRequest(_ context.Context, user roster.Identity) (roster.AccessRequest, error) {
	return tv.st.getAccessRequest(user)
}

func (tv *txView) ListAccessRequests(_ context.Context, status roster.RequestStatus) ([]roster.AccessRequest, error) {
	return tv.st.listAccessRequests(status), nil
}

var (
	_ roster.TxStore = (*TxMemory)(nil)
	_ roster.Store   = (*txView)(nil)
)
