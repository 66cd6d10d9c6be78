package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "slot_loads_total",
			Help:      "Slot queries by outcome.",
		},
		[]string{"outcome"},
	)

	slotLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slotbook",
			Name:      "slot_load_duration_seconds",
			Help:      "Time spent loading slots.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "submissions_total",
			Help:      "Booking submissions by result.",
		},
		[]string{"result"},
	)

	submissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slotbook",
			Name:      "submission_duration_seconds",
			Help:      "Time spent submitting a booking.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotLoads, slotLoadDuration, submissions, submissionDuration)
	})
}

// IncSlotLoad increments the slot-load counter for an outcome label.
func IncSlotLoad(outcome string) {
	slotLoads.WithLabelValues(outcome).Inc()
}

// ObserveSlotLoad records the duration of a slot query.
func ObserveSlotLoad(d time.Duration) {
	slotLoadDuration.Observe(d.Seconds())
}

// IncSubmission increments the submission counter for a result label.
func IncSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

// ObserveSubmission records the duration of a booking submission.
func ObserveSubmission(d time.Duration) {
	submissionDuration.Observe(d.Seconds())
}
