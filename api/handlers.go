/*
handlers.go - HTTP API handlers for the formation enrollment engine

PURPOSE:
  Exposes the roster service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates every decision to roster.Service.

ENDPOINTS:
  Offerings:
    GET    /api/offerings                         List offerings
    POST   /api/offerings                         Create offering
    GET    /api/offerings/{id}                    Get offering
    POST   /api/offerings/{id}/status             Change status (organizer)
    GET    /api/offerings/{id}/sessions           List sessions
    POST   /api/offerings/{id}/sessions           Create session (organizer)

  Enrollment:
    GET    /api/offerings/{id}/enrollments                List enrollments
    POST   /api/offerings/{id}/enrollments                Enroll caller
    DELETE /api/offerings/{id}/enrollments/{participant}  Withdraw

  Waitlist:
    GET    /api/offerings/{id}/waitlist                          Queue
    POST   /api/offerings/{id}/waitlist                          Join
    POST   /api/offerings/{id}/waitlist/reorganize               Organizer
    POST   /api/offerings/{id}/waitlist/compact                  Organizer
    POST   /api/offerings/{id}/waitlist/{participant}/offer      Organizer
    POST   /api/offerings/{id}/waitlist/{participant}/finalize   Participant
    POST   /api/offerings/{id}/waitlist/{participant}/decline    Participant
    DELETE /api/offerings/{id}/waitlist/{participant}            Drop

  Sessions & attendance:
    GET    /api/sessions/{id}
    GET    /api/sessions/{id}/attendance
    POST   /api/sessions/{id}/attendance          Check caller in

  Access requests:
    GET    /api/access-requests?status=pending
    POST   /api/access-requests
    POST   /api/access-requests/{user}/approve    Admin
    POST   /api/access-requests/{user}/reject     Admin

  Admin (caller must be the configured admin):
    GET    /api/admin/counters                    Program-wide counters
    POST   /api/admin/expire-offers               Run one expiry sweep

CALLER IDENTITY:
  The caller is read from the X-Actor-ID header. Authentication happens
  upstream; the engine trusts the value it is given.

ERROR HANDLING:
  Errors are returned as JSON {"error", "code", "details"} with:
  - 400: Field bounds, invalid enums, session duration
  - 401: Missing X-Actor-ID
  - 403: Caller is not the organizer / participant / admin
  - 404: Record not found
  - 409: Capacity, state-machine conflicts, duplicate records
  - 500: Counter invariant violations, store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - roster/service.go: Operation semantics
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/formation-engine/roster"
)

// ActorHeader carries the caller identity.
const ActorHeader = "X-Actor-ID"

const codeMissingActor = "MISSING_ACTOR"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *roster.Service
	Logger  zerolog.Logger

	// Scheduler backs the manual expiry trigger. Optional.
	Scheduler *OfferExpiryScheduler
}

// NewHandler creates a new handler around the given service.
func NewHandler(svc *roster.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  logger.With().Str("component", "api").Logger(),
	}
}

// caller returns the identity in ActorHeader, writing a 401 when absent.
func caller(w http.ResponseWriter, r *http.Request) (roster.Identity, bool) {
	id := r.Header.Get(ActorHeader)
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Missing " + ActorHeader + " header",
			Code:  codeMissingActor,
		})
		return "", false
	}
	return roster.Identity(id), true
}

// RequireAdmin rejects callers other than the configured admin.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := caller(w, r)
		if !ok {
			return
		}
		if !h.Service.IsAdmin(actor) {
			h.writeServiceError(w, "Admin access required", roster.ErrUnauthorizedAccess)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func offeringParam(r *http.Request) roster.OfferingID {
	return roster.OfferingID(chi.URLParam(r, "id"))
}

func participantParam(r *http.Request) roster.Identity {
	return roster.Identity(chi.URLParam(r, "participant"))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// =============================================================================
// OFFERING HANDLERS
// =============================================================================

// ListOfferings returns all offerings.
func (h *Handler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.Service.ListOfferings(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list offerings", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(offerings, toOfferingDTO))
}

// GetOffering returns a single offering.
func (h *Handler) GetOffering(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.GetOffering(r.Context(), offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Offering not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferingDTO(o))
}

// CreateOffering creates an offering organized by the caller.
func (h *Handler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	organizer, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateOfferingRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := h.Service.CreateOffering(r.Context(), organizer, roster.NewOfferingInput{
		Title:            req.Title,
		Description:      req.Description,
		Mode:             roster.DeliveryMode(req.Mode),
		MaxStudents:      req.MaxStudents,
		WaitlistCapacity: req.WaitlistCapacity,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create offering", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOfferingDTO(o))
}

// SetOfferingStatus moves an offering between active, full, cancelled and
// completed.
func (h *Handler) SetOfferingStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := h.Service.SetOfferingStatus(r.Context(), actor, offeringParam(r), roster.OfferingStatus(req.Status))
	if err != nil {
		h.writeServiceError(w, "Failed to change offering status", err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferingDTO(o))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Service.ListSessions(r.Context(), offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(sessions, toSessionDTO))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.GetSession(r.Context(), roster.SessionID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, "Session not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s))
}

// CreateSession schedules a session for an offering.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if !decode(w, r, &req) {
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time format (use RFC3339)", err)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time format (use RFC3339)", err)
		return
	}

	s, err := h.Service.CreateSession(r.Context(), actor, roster.NewSessionInput{
		OfferingID:  offeringParam(r),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s))
}

// =============================================================================
// ENROLLMENT HANDLERS
// =============================================================================

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.Service.ListEnrollments(r.Context(), offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to list enrollments", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(enrollments, toEnrollmentDTO))
}

// EnrollDirect takes a free seat for the caller.
func (h *Handler) EnrollDirect(w http.ResponseWriter, r *http.Request) {
	participant, ok := caller(w, r)
	if !ok {
		return
	}
	e, err := h.Service.EnrollDirect(r.Context(), participant, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to enroll", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEnrollmentDTO(e))
}

// WithdrawEnrollment releases the participant's seat.
func (h *Handler) WithdrawEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	e, err := h.Service.WithdrawEnrollment(r.Context(), actor, offeringParam(r), participantParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to withdraw enrollment", err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentDTO(e))
}

// =============================================================================
// WAITLIST HANDLERS
// =============================================================================

func (h *Handler) ListWaitlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.ListWaitlist(r.Context(), offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to list waitlist", err)
		return
	}
	writeJSON(w, http.StatusOK, h.waitlistDTOs(entries))
}

// JoinWaitlist queues the caller on a full offering.
func (h *Handler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	participant, ok := caller(w, r)
	if !ok {
		return
	}
	entry, err := h.Service.JoinWaitlist(r.Context(), participant, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to join waitlist", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.waitlistDTO(entry))
}

func (h *Handler) OfferPromotion(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	entry, err := h.Service.OfferPromotion(r.Context(), actor, offeringParam(r), participantParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to offer promotion", err)
		return
	}
	writeJSON(w, http.StatusOK, h.waitlistDTO(entry))
}

// FinalizePromotion accepts an outstanding offer. The path participant must
// be the caller.
func (h *Handler) FinalizePromotion(w http.ResponseWriter, r *http.Request) {
	participant, ok := h.selfOnly(w, r)
	if !ok {
		return
	}
	e, err := h.Service.FinalizePromotion(r.Context(), participant, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to finalize promotion", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEnrollmentDTO(e))
}

func (h *Handler) DeclinePromotion(w http.ResponseWriter, r *http.Request) {
	participant, ok := h.selfOnly(w, r)
	if !ok {
		return
	}
	entry, err := h.Service.DeclinePromotion(r.Context(), participant, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to decline promotion", err)
		return
	}
	writeJSON(w, http.StatusOK, h.waitlistDTO(entry))
}

func (h *Handler) DropFromWaitlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	entry, err := h.Service.DropFromWaitlist(r.Context(), actor, offeringParam(r), participantParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to drop from waitlist", err)
		return
	}
	writeJSON(w, http.StatusOK, h.waitlistDTO(entry))
}

func (h *Handler) ReorganizeWaitlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	o, err := h.Service.ReorganizeWaitlist(r.Context(), actor, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to reorganize waitlist", err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferingDTO(o))
}

// CompactWaitlist renumbers the live queue and returns it.
func (h *Handler) CompactWaitlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	entries, err := h.Service.CompactWaitlist(r.Context(), actor, offeringParam(r))
	if err != nil {
		h.writeServiceError(w, "Failed to compact waitlist", err)
		return
	}
	writeJSON(w, http.StatusOK, h.waitlistDTOs(entries))
}

func (h *Handler) selfOnly(w http.ResponseWriter, r *http.Request) (roster.Identity, bool) {
	actor, ok := caller(w, r)
	if !ok {
		return "", false
	}
	if actor != participantParam(r) {
		h.writeServiceError(w, "Only the participant may answer an offer", roster.ErrUnauthorizedAccess)
		return "", false
	}
	return actor, true
}

func (h *Handler) waitlistDTO(entry roster.WaitlistEntry) WaitlistEntryDTO {
	return toWaitlistEntryDTO(entry, h.Service.OfferTimeout)
}

func (h *Handler) waitlistDTOs(entries []roster.WaitlistEntry) []WaitlistEntryDTO {
	return mapSlice(entries, h.waitlistDTO)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListAttendance(r.Context(), roster.SessionID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, "Failed to list attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(records, toAttendanceDTO))
}

// RecordAttendance checks the caller into a session, vouched for by their
// enrollment in the offering named in the body.
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	participant, ok := caller(w, r)
	if !ok {
		return
	}
	var req RecordAttendanceRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := h.Service.RecordAttendance(r.Context(), participant, roster.RecordAttendanceInput{
		SessionID:   roster.SessionID(chi.URLParam(r, "id")),
		OfferingID:  roster.OfferingID(req.OfferingID),
		Participant: participant,
		Status:      roster.AttendanceStatus(req.Status),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(a))
}

// =============================================================================
// ACCESS REQUEST HANDLERS
// =============================================================================

// ListAccessRequests returns requests, optionally filtered by ?status=.
func (h *Handler) ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	status := roster.RequestStatus(r.URL.Query().Get("status"))
	requests, err := h.Service.ListAccessRequests(r.Context(), status)
	if err != nil {
		h.writeServiceError(w, "Failed to list access requests", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(requests, toAccessRequestDTO))
}

func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateAccessRequest
	if !decode(w, r, &req) {
		return
	}

	ar, err := h.Service.RequestAccess(r.Context(), user, roster.AccessRequestInput{
		Role:    roster.Role(req.Role),
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to file access request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccessRequestDTO(ar))
}

func (h *Handler) ApproveAccessRequest(w http.ResponseWriter, r *http.Request) {
	h.reviewAccessRequest(w, r, true)
}

func (h *Handler) RejectAccessRequest(w http.ResponseWriter, r *http.Request) {
	h.reviewAccessRequest(w, r, false)
}

func (h *Handler) reviewAccessRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	ar, err := h.Service.ReviewAccessRequest(r.Context(), actor, roster.Identity(chi.URLParam(r, "user")), approve)
	if err != nil {
		h.writeServiceError(w, "Failed to review access request", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccessRequestDTO(ar))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// GetCounters returns the program-wide sequence counters.
func (h *Handler) GetCounters(w http.ResponseWriter, r *http.Request) {
	counters, err := h.Service.Counters(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to read counters", err)
		return
	}
	out := CountersDTO{Counters: make(map[string]uint64, len(counters))}
	for kind, v := range counters {
		out.Counters[string(kind)] = v
	}
	writeJSON(w, http.StatusOK, out)
}

// TriggerExpirySweep runs one offer expiry sweep synchronously.
func (h *Handler) TriggerExpirySweep(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "Expiry scheduler not configured", nil)
		return
	}
	result := h.Scheduler.RunNow(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a roster error to its HTTP status and code.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error().Err(err).Msg(message)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    string(roster.CodeOf(err)),
		Details: err.Error(),
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch roster.CodeOf(err) {
	case roster.CodeNotFound:
		return http.StatusNotFound
	case roster.CodeUnauthorizedAccess:
		return http.StatusForbidden
	case roster.CodeDuplicateKey,
		roster.CodeFormationFull,
		roster.CodeWaitlistFull,
		roster.CodeInvalidWaitlistStatus,
		roster.CodeInvalidOfferingStatus,
		roster.CodeInvalidRequestStatus,
		roster.CodeNotEnrolled,
		roster.CodeOfferNotExpired:
		return http.StatusConflict
	case roster.CodeFieldTooLong,
		roster.CodeCapacityExceeded,
		roster.CodeWaitlistTooLarge,
		roster.CodeInvalidCapacity,
		roster.CodeInvalidMode,
		roster.CodeInvalidAttendance,
		roster.CodeInvalidRole,
		roster.CodeInvalidIdentity,
		roster.CodeInvalidSessionTime:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
