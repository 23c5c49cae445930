package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	slotsAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "compressd",
			Subsystem: "pool",
			Name:      "slots_available",
			Help:      "Worker slots currently available for checkout",
		},
	)

	slotsInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "compressd",
			Subsystem: "pool",
			Name:      "slots_in_use",
			Help:      "Worker slots currently checked out",
		},
	)

	acquireWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "compressd",
			Subsystem: "pool",
			Name:      "acquire_wait_seconds",
			Help:      "Time spent waiting for a worker slot",
			Buckets:   prometheus.DefBuckets,
		},
	)

	exhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "compressd",
			Subsystem: "pool",
			Name:      "exhausted_total",
			Help:      "Total acquire attempts that timed out",
		},
	)

	rebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "compressd",
			Subsystem: "pool",
			Name:      "rebuilds_total",
			Help:      "Total successful pool reconfigurations",
		},
	)
)

func init() {
	prometheus.MustRegister(slotsAvailable, slotsInUse, acquireWaitSeconds, exhaustedTotal, rebuildsTotal)
}

// setSlotGauges is called under the pool lock after every slot mutation.
func setSlotGauges(available, inUse int) {
	slotsAvailable.Set(float64(available))
	slotsInUse.Set(float64(inUse))
}
