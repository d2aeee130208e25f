// Package monitoring exports roster metrics to Prometheus.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/formation-engine/roster"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_operations_total",
			Help: "Roster operations by outcome",
		},
		[]string{"operation", "status", "code"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roster_operation_duration_seconds",
			Help:    "Duration of roster operations including the store transaction",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation"},
	)

	offeringSeats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roster_offering_seats",
			Help: "Current seat and waitlist counters per offering",
		},
		[]string{"offering_id", "counter"},
	)

	offeringUtilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roster_offering_utilization_ratio",
			Help: "Fraction of seats taken per offering",
		},
		[]string{"offering_id"},
	)

	recordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_records_created_total",
			Help: "Records created by kind",
		},
		[]string{"kind"},
	)

	reservedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_reserved_bytes_total",
			Help: "Serialized record footprint reserved at creation, by kind",
		},
		[]string{"kind"},
	)

	expirySweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_offer_expiry_sweeps_total",
			Help: "Offer expiry sweeps and the offers they expired",
		},
		[]string{"result"},
	)
)

// Observer records service outcomes. It satisfies roster.Observer.
type Observer struct{}

func NewObserver() *Observer {
	return &Observer{}
}

func (o *Observer) OperationCompleted(op string, err error, elapsed time.Duration) {
	status := "ok"
	switch {
	case err == nil:
	case roster.IsClientError(err):
		status = "rejected"
	default:
		status = "error"
	}
	operationsTotal.WithLabelValues(op, status, string(roster.CodeOf(err))).Inc()
	operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (o *Observer) OfferingChanged(off roster.Offering) {
	id := string(off.ID)
	offeringSeats.WithLabelValues(id, "students").Set(float64(off.CurrentStudents))
	offeringSeats.WithLabelValues(id, "waitlisted").Set(float64(off.CurrentWaitlisted))
	ratio, _ := off.Utilization().Float64()
	offeringUtilization.WithLabelValues(id).Set(ratio)
}

func (o *Observer) RecordCreated(kind roster.RecordKind) {
	recordsCreated.WithLabelValues(string(kind)).Inc()
	reservedBytes.WithLabelValues(string(kind)).Add(float64(roster.Footprint(kind)))
}

// SweepCompleted counts one expiry sweep and the offers it closed.
func SweepCompleted(expired, failed int) {
	expirySweeps.WithLabelValues("sweep").Inc()
	expirySweeps.WithLabelValues("expired").Add(float64(expired))
	expirySweeps.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

var _ roster.Observer = (*Observer)(nil)
