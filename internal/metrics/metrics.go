package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransfersStartedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeftp",
		Name:      "transfers_started_total",
		Help:      "Total transfers handed to a background worker by direction and mode (fresh or resume).",
	}, []string{"direction", "mode"})

	TransfersFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeftp",
		Name:      "transfers_finished_total",
		Help:      "Total transfers that reached a terminal status by direction and status.",
	}, []string{"direction", "status"})

	TransferredBytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumeftp",
		Name:      "transferred_bytes_total",
		Help:      "Total bytes copied by the transfer loop by direction.",
	}, []string{"direction"})

	ActiveTransfers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resumeftp",
		Name:      "active_transfers",
		Help:      "Number of currently running background transfers by direction.",
	}, []string{"direction"})

	DirectoriesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "resumeftp",
		Name:      "directories_created_total",
		Help:      "Total remote directories created before uploads.",
	})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		TransfersStartedTotal,
		TransfersFinishedTotal,
		TransferredBytesTotal,
		ActiveTransfers,
		DirectoriesCreatedTotal,
	}
}

// Register adds every transfer collector to reg. Collectors already present
// in reg are not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the collectors of reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
