package download

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for reconcile outcomes.
const (
	resultFetched   = "fetched"
	resultSkipped   = "skipped"
	resultRefetched = "refetched"
	resultFailed    = "failed"
)

// Metric label values for artifact classes.
const (
	classAsset   = "asset"
	classIndex   = "index"
	classLibrary = "library"
	classNative  = "native"
	classJar     = "jar"
)

var (
	artifactsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcher_artifacts_total",
			Help: "Total number of artifacts reconciled against their expected hash.",
		},
		[]string{"class", "result"},
	)

	downloadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launcher_downloaded_bytes_total",
			Help: "Total number of bytes written by artifact downloads.",
		},
	)
)

func init() {
	prometheus.MustRegister(artifactsTotal)
	prometheus.MustRegister(downloadedBytes)

	for _, class := range []string{classAsset, classIndex, classLibrary, classNative, classJar} {
		for _, result := range []string{resultFetched, resultSkipped, resultRefetched, resultFailed} {
			artifactsTotal.WithLabelValues(class, result)
		}
	}
}
