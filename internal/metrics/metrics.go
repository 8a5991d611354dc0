// Package metrics exposes Prometheus collectors for the backend client and the selection store.
//
// Collectors live on a private [Registry] so the default global registry stays untouched.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedx",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the backend.",
		},
		[]string{"operation", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wedx",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"operation"},
	)

	toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedx",
			Subsystem: "selection",
			Name:      "toggles_total",
			Help:      "Total number of item toggles.",
		},
		[]string{"category"},
	)

	groupSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedx",
			Subsystem: "selection",
			Name:      "group_saves_total",
			Help:      "Total number of pinned selection writes per group.",
		},
		[]string{"group", "success"},
	)

	coalescedSaves = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wedx",
			Subsystem: "selection",
			Name:      "coalesced_saves_total",
			Help:      "Save requests folded into an in-flight save.",
		},
	)

	albums = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedx",
			Subsystem: "albums",
			Name:      "created_total",
			Help:      "Total number of album creation attempts.",
		},
		[]string{"type", "success"},
	)
)

func init() {
	Registry.MustRegister(backendRequests, backendDuration, toggles, groupSaves, coalescedSaves, albums)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordBackendRequest records one backend call. A zero status means the request never got a response.
func RecordBackendRequest(operation string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(operation, label).Inc()
	backendDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Recorder receives selection store events. [Prometheus] is the production implementation.
type Recorder interface {
	Toggle(category string)
	GroupSave(group string, err error)
	Coalesced()
	Album(groupType string, err error)
}

// Prometheus implements [Recorder] on the package collectors.
type Prometheus struct{}

func (Prometheus) Toggle(category string) { toggles.WithLabelValues(category).Inc() }

func (Prometheus) GroupSave(group string, err error) {
	groupSaves.WithLabelValues(group, strconv.FormatBool(err == nil)).Inc()
}

func (Prometheus) Coalesced() { coalescedSaves.Inc() }

func (Prometheus) Album(groupType string, err error) {
	albums.WithLabelValues(groupType, strconv.FormatBool(err == nil)).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Toggle(string)           {}
func (Nop) GroupSave(string, error) {}
func (Nop) Coalesced()              {}
func (Nop) Album(string, error)     {}
