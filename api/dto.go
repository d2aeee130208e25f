/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the roster records from the external API contract so fields can be
  renamed or formatted without touching the engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Offering:      OfferingDTO, CreateOfferingRequest, SetStatusRequest
  Session:       SessionDTO, CreateSessionRequest
  Enrollment:    EnrollmentDTO
  Waitlist:      WaitlistEntryDTO
  Attendance:    AttendanceDTO, RecordAttendanceRequest
  Access:        AccessRequestDTO, CreateAccessRequest

VALIDATION:
  Validation is done by the roster service, not in DTOs. DTOs are pure
  data carriers; timestamps are RFC3339 strings in UTC.

SEE ALSO:
  - handlers.go: Uses these types
  - roster/types.go: Record definitions
*/
package api

import (
	"time"

	"github.com/warp/formation-engine/roster"
)

// =============================================================================
// OFFERINGS
// =============================================================================

// OfferingDTO represents an offering in API responses.
type OfferingDTO struct {
	ID                string  `json:"id"`
	Organizer         string  `json:"organizer"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Mode              string  `json:"mode"`
	MaxStudents       uint8   `json:"max_students"`
	WaitlistCapacity  uint8   `json:"waitlist_capacity"`
	CurrentStudents   uint8   `json:"current_students"`
	CurrentWaitlisted uint8   `json:"current_waitlisted"`
	Utilization       float64 `json:"utilization"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// CreateOfferingRequest is the request to create an offering. Capacities are
// ints so out-of-range values reach validation instead of failing to decode.
type CreateOfferingRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Mode             string `json:"mode"`
	MaxStudents      int    `json:"max_students"`
	WaitlistCapacity int    `json:"waitlist_capacity"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// SESSIONS
// =============================================================================

type SessionDTO struct {
	ID              string `json:"id"`
	OfferingID      string `json:"offering_id"`
	Organizer       string `json:"organizer"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	CreatedAt       string `json:"created_at"`
}

// CreateSessionRequest carries RFC3339 start and end times.
type CreateSessionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// =============================================================================
// ENROLLMENTS & WAITLIST
// =============================================================================

type EnrollmentDTO struct {
	OfferingID  string `json:"offering_id"`
	Participant string `json:"participant"`
	Status      string `json:"status"`
	Position    uint8  `json:"position"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type WaitlistEntryDTO struct {
	OfferingID  string `json:"offering_id"`
	Participant string `json:"participant"`
	Position    uint8  `json:"position"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	// ExpiresAt is set while a promotion offer is outstanding.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceDTO struct {
	SessionID   string `json:"session_id"`
	Participant string `json:"participant"`
	Status      string `json:"status"`
	CheckInTime string `json:"check_in_time"`
}

type RecordAttendanceRequest struct {
	OfferingID string `json:"offering_id"`
	Status     string `json:"status"`
}

// =============================================================================
// ACCESS REQUESTS
// =============================================================================

type AccessRequestDTO struct {
	User      string `json:"user"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateAccessRequest struct {
	Role    string `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type CountersDTO struct {
	Counters map[string]uint64 `json:"counters"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toOfferingDTO(o roster.Offering) OfferingDTO {
	utilization, _ := o.Utilization().Float64()
	return OfferingDTO{
		ID:                string(o.ID),
		Organizer:         string(o.Organizer),
		Title:             o.Title,
		Description:       o.Description,
		Mode:              string(o.Mode),
		MaxStudents:       o.MaxStudents,
		WaitlistCapacity:  o.WaitlistCapacity,
		CurrentStudents:   o.CurrentStudents,
		CurrentWaitlisted: o.CurrentWaitlisted,
		Utilization:       utilization,
		Status:            string(o.Status),
		CreatedAt:         formatTime(o.CreatedAt),
		UpdatedAt:         formatTime(o.UpdatedAt),
	}
}

func toSessionDTO(s roster.Session) SessionDTO {
	return SessionDTO{
		ID:              string(s.ID),
		OfferingID:      string(s.OfferingID),
		Organizer:       string(s.Organizer),
		Title:           s.Title,
		Description:     s.Description,
		StartTime:       formatTime(s.StartTime),
		EndTime:         formatTime(s.EndTime),
		DurationMinutes: int(s.Duration() / time.Minute),
		CreatedAt:       formatTime(s.CreatedAt),
	}
}

func toEnrollmentDTO(e roster.Enrollment) EnrollmentDTO {
	return EnrollmentDTO{
		OfferingID:  string(e.OfferingID),
		Participant: string(e.Participant),
		Status:      string(e.Status),
		Position:    e.Position,
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	}
}

func toWaitlistEntryDTO(w roster.WaitlistEntry, offerTimeout time.Duration) WaitlistEntryDTO {
	dto := WaitlistEntryDTO{
		OfferingID:  string(w.OfferingID),
		Participant: string(w.Participant),
		Position:    w.Position,
		Status:      string(w.Status),
		Timestamp:   formatTime(w.Timestamp),
	}
	if w.AwaitingAnswer() {
		dto.ExpiresAt = formatTime(w.Timestamp.Add(offerTimeout))
	}
	return dto
}

func toAttendanceDTO(a roster.Attendance) AttendanceDTO {
	return AttendanceDTO{
		SessionID:   string(a.SessionID),
		Participant: string(a.Participant),
		Status:      string(a.Status),
		CheckInTime: formatTime(a.CheckInTime),
	}
}

func toAccessRequestDTO(r roster.AccessRequest) AccessRequestDTO {
	return AccessRequestDTO{
		User:      string(r.User),
		Role:      string(r.Role),
		Name:      r.Name,
		Email:     r.Email,
		Message:   r.Message,
		Status:    string(r.Status),
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}

func mapSlice[T, D any](items []T, fn func(T) D) []D {
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
