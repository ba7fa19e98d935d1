package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessionhub"

// BuildInfo identifies the running instance on the build_info gauge.
type BuildInfo struct {
	Version  string
	Commit   string
	Instance string
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors and a
// build_info gauge, so scrapes from several instances can be told apart.
func NewRegistry(info BuildInfo) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}))

	build := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build and instance of the running session manager. Always 1.",
		ConstLabels: prometheus.Labels{
			"version":  info.Version,
			"commit":   info.Commit,
			"instance": info.Instance,
		},
	})
	build.Set(1)
	reg.MustRegister(build)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
