// Package metrics counts pipeline outcomes and exposes them in
// Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements the bot.Metrics interface on Prometheus counters.
type Recorder struct {
	registry *prometheus.Registry

	downloadsStarted   prometheus.Counter
	downloadsCompleted prometheus.Counter
	downloadsFailed    prometheus.Counter
	libraryAdded       prometheus.Counter
	libraryFailed      prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry, so the exposed
// endpoint carries only lexibot metrics.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		downloadsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexibot_downloads_started_total",
			Help: "Number of file downloads started.",
		}),
		downloadsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexibot_downloads_completed_total",
			Help: "Number of file downloads completed successfully.",
		}),
		downloadsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexibot_downloads_failed_total",
			Help: "Number of file downloads that failed.",
		}),
		libraryAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexibot_library_adds_total",
			Help: "Number of tracks added to the Lexicon library.",
		}),
		libraryFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexibot_library_failures_total",
			Help: "Number of Lexicon ingestion calls that failed.",
		}),
	}
}

func (r *Recorder) DownloadStarted()   { r.downloadsStarted.Inc() }
func (r *Recorder) DownloadCompleted() { r.downloadsCompleted.Inc() }
func (r *Recorder) DownloadFailed()    { r.downloadsFailed.Inc() }
func (r *Recorder) LibraryAdded()      { r.libraryAdded.Inc() }
func (r *Recorder) LibraryFailed()     { r.libraryFailed.Inc() }

// Handler returns an HTTP handler serving the metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
