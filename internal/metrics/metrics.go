// Registers:
//
//	#fundingboard_fetch_success_total
//	#fundingboard_fetch_errors_total
//	#go_* and process_* system metrics
//
// Exposes them over the Prometheus HTTP handler on the configured address.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundingboard/logger"
)

var (
	once         sync.Once
	fetchSuccess prometheus.Counter
	fetchErrors  prometheus.Counter
)

// Init registers the fetch counters and serves the /metrics endpoint on the
// provided address. An empty address disables the listener but still
// registers the counters.
func Init(address string) {
	once.Do(func() {
		fetchSuccess = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fundingboard_fetch_success_total",
				Help: "Number of successful funding snapshot fetches",
			},
		)

		fetchErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fundingboard_fetch_errors_total",
				Help: "Number of failed funding snapshot fetches",
			},
		)

		_ = prometheus.Register(fetchSuccess)
		_ = prometheus.Register(fetchErrors)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		if address == "" {
			return
		}

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(address, mux); err != nil {
				logger.GetLogger().WithComponent("metrics").WithError(err).Warn("prometheus listener stopped")
			}
		}()
	})
}

// IncrementSuccess increases the successful fetch counter.
func IncrementSuccess() {
	if fetchSuccess != nil {
		fetchSuccess.Inc()
	}
}

// IncrementError increases the failed fetch counter.
func IncrementError() {
	if fetchErrors != nil {
		fetchErrors.Inc()
	}
}
