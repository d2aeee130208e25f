package roster

import "context"

// =============================================================================
// READS - Served straight from the store, outside any transaction
// =============================================================================

func (s *Service) GetOffering(ctx context.Context, id OfferingID) (Offering, error) {
	return s.Store.GetOffering(ctx, id)
}

func (s *Service) ListOfferings(ctx context.Context) ([]Offering, error) {
	return s.Store.ListOfferings(ctx)
}

func (s *Service) GetSession(ctx context.Context, id SessionID) (Session, error) {
	return s.Store.GetSession(ctx, id)
}

// ListSessions returns the sessions of an offering. A missing offering is
// reported as NotFound rather than an empty list.
func (s *Service) ListSessions(ctx context.Context, id OfferingID) ([]Session, error) {
	if _, err := s.Store.GetOffering(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.ListSessions(ctx, id)
}

func (s *Service) GetEnrollment(ctx context.Context, id OfferingID, participant Identity) (Enrollment, error) {
	return s.Store.GetEnrollment(ctx, id, participant)
}

func (s *Service) ListEnrollments(ctx context.Context, id OfferingID) ([]Enrollment, error) {
	if _, err := s.Store.GetOffering(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.ListEnrollments(ctx, id)
}

func (s *Service) GetWaitlistEntry(ctx context.Context, id OfferingID, participant Identity) (WaitlistEntry, error) {
	return s.Store.GetWaitlistEntry(ctx, id, participant)
}

// ListWaitlist returns every entry of the offering, terminal ones included,
// in queue order.
func (s *Service) ListWaitlist(ctx context.Context, id OfferingID) ([]WaitlistEntry, error) {
	if _, err := s.Store.GetOffering(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.Store.ListWaitlist(ctx, id)
	if err != nil {
		return nil, err
	}
	SortByPosition(entries)
	return entries, nil
}

func (s *Service) GetAttendance(ctx context.Context, session SessionID, participant Identity) (Attendance, error) {
	return s.Store.GetAttendance(ctx, session, participant)
}

func (s *Service) ListAttendance(ctx context.Context, session SessionID) ([]Attendance, error) {
	if _, err := s.Store.GetSession(ctx, session); err != nil {
		return nil, err
	}
	return s.Store.ListAttendance(ctx, session)
}

func (s *Service) GetAccessRequest(ctx context.Context, user Identity) (AccessRequest, error) {
	return s.Store.GetAccessRequest(ctx, user)
}

func (s *Service) ListAccessRequests(ctx context.Context, status RequestStatus) ([]AccessRequest, error) {
	return s.Store.ListAccessRequests(ctx, status)
}

// Counters returns the current value of every program-wide counter. Without a
// sequencer the map is empty.
func (s *Service) Counters(ctx context.Context) (map[CounterKind]uint64, error) {
	out := make(map[CounterKind]uint64, len(CounterKinds))
	if s.Sequencer == nil {
		return out, nil
	}
	for _, kind := range CounterKinds {
		v, err := s.Sequencer.Current(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = v
	}
	return out, nil
}
