package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	lessonCompletionsTotal *prometheus.CounterVec
	avatarRejectedTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for API observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learntrack_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learntrack_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learntrack_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		lessonCompletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learntrack_lesson_completions_total",
			Help: "Lesson completion events applied to user stats.",
		}, []string{"outcome"})

		avatarRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learntrack_avatar_rejected_total",
			Help: "Avatar uploads rejected before storage.",
		}, []string{"reason"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, lessonCompletionsTotal, avatarRejectedTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// LessonCompletions exposes the completion-event counter. Outcome is either
// "applied" or "replayed".
func LessonCompletions() *prometheus.CounterVec {
	RegisterMetrics()
	return lessonCompletionsTotal
}

// AvatarRejected exposes the avatar rejection counter.
func AvatarRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return avatarRejectedTotal
}
