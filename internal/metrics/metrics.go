package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss, store, error).",
		},
		[]string{"result"},
	)

	OTPEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_otp_events_total",
			Help: "One-time code lifecycle events.",
		},
		[]string{"event"},
	)

	RefreshEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_refresh_events_total",
			Help: "Refresh token rotation outcomes.",
		},
		[]string{"result"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_login_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)
)

func CacheHit()   { CacheRequests.WithLabelValues("hit").Inc() }
func CacheMiss()  { CacheRequests.WithLabelValues("miss").Inc() }
func CacheStore() { CacheRequests.WithLabelValues("store").Inc() }
func CacheError() { CacheRequests.WithLabelValues("error").Inc() }

func OTPEvent(event string)      { OTPEvents.WithLabelValues(event).Inc() }
func RefreshEvent(result string) { RefreshEvents.WithLabelValues(result).Inc() }
func LoginAttempt(result string) { Logins.WithLabelValues(result).Inc() }
