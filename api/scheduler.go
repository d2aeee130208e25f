/*
scheduler.go - Automated promotion offer expiry

PURPOSE:
  Periodically closes promotion offers that were left unanswered past the
  offer timeout. The engine never expires an offer by itself: IsExpired is a
  pure time comparison and ExpireOffer is an explicit operation. This
  scheduler is the caller that turns the comparison into transitions.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Walks every active offering and its waitlist
  - Calls ExpireOffer for each entry whose offer has lapsed
  - Records sweep outcomes in Prometheus (monitoring.SweepCompleted)

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 minute)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewOfferExpiryScheduler(svc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerExpirySweep endpoint (manual sweep)
  - roster/service.go: ExpireOffer
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/formation-engine/monitoring"
	"github.com/warp/formation-engine/roster"
)

// OfferExpiryScheduler expires lapsed promotion offers on a ticker.
type OfferExpiryScheduler struct {
	Service       *roster.Service
	Logger        zerolog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// SweepResult summarizes one pass over all offerings.
type SweepResult struct {
	Checked int `json:"checked"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NewOfferExpiryScheduler creates a new scheduler.
func NewOfferExpiryScheduler(svc *roster.Service, logger zerolog.Logger) *OfferExpiryScheduler {
	return &OfferExpiryScheduler{
		Service:       svc,
		Logger:        logger.With().Str("component", "scheduler").Logger(),
		CheckInterval: time.Minute,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (s *OfferExpiryScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info().Msg("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run(ctx, s.ticker.C)

	s.Logger.Info().Dur("interval", s.CheckInterval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight sweep to finish.
func (s *OfferExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		s.cancel()
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info().Msg("stopped")
	}
}

func (s *OfferExpiryScheduler) run(ctx context.Context, tick <-chan time.Time) {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-tick:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *OfferExpiryScheduler) RunNow(ctx context.Context) SweepResult {
	return s.sweep(ctx)
}

func (s *OfferExpiryScheduler) now() time.Time {
	if s.Service.Now != nil {
		return s.Service.Now()
	}
	return time.Now().UTC()
}

func (s *OfferExpiryScheduler) sweep(ctx context.Context) SweepResult {
	var result SweepResult
	defer func() { monitoring.SweepCompleted(result.Expired, result.Failed) }()

	offerings, err := s.Service.ListOfferings(ctx)
	if err != nil {
		s.Logger.Error().Err(err).Msg("listing offerings")
		result.Failed++
		return result
	}

	now := s.now()
	timeout := s.Service.OfferTimeout

	for _, o := range offerings {
		if o.Status == roster.OfferingCancelled || o.Status == roster.OfferingCompleted {
			continue
		}
		entries, err := s.Service.ListWaitlist(ctx, o.ID)
		if err != nil {
			s.Logger.Error().Err(err).Str("offering_id", string(o.ID)).Msg("listing waitlist")
			result.Failed++
			continue
		}

		for _, entry := range entries {
			if !entry.AwaitingAnswer() {
				continue
			}
			result.Checked++
			if !entry.IsExpired(now, timeout) {
				continue
			}

			_, err := s.Service.ExpireOffer(ctx, o.ID, entry.Participant)
			switch {
			case err == nil:
				result.Expired++
			case roster.IsClientError(err):
				// Answered or already enrolled between the list and the expire.
				result.Skipped++
			default:
				s.Logger.Error().Err(err).
					Str("offering_id", string(o.ID)).
					Str("participant", string(entry.Participant)).
					Msg("expiring offer")
				result.Failed++
			}
		}
	}

	if result.Expired > 0 || result.Failed > 0 {
		s.Logger.Info().
			Int("expired", result.Expired).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("sweep completed")
	}
	return result
}
