package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_mutations_total",
			Help: "Ticket lifecycle operations by outcome",
		},
		[]string{"operation", "status"},
	)

	ticketsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_expired_total",
			Help: "Tickets moved from AVAILABLE to EXPIRED by the sweeper",
		},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_expiration_sweep_duration_seconds",
			Help:    "Duration of expiration sweeps",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	favoriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorite_toggles_total",
			Help: "Favorite toggles by resulting state",
		},
		[]string{"result"},
	)

	dealEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deal_events_total",
			Help: "Deal events consumed by outcome",
		},
		[]string{"event_type", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// TrackTicketMutation 記錄 create / update / delete / change_status 的結果
func TrackTicketMutation(operation string, err error) {
	ticketMutations.WithLabelValues(operation, outcome(err)).Inc()
}

func TrackSweep(expired int, duration time.Duration) {
	ticketsExpired.Add(float64(expired))
	sweepDuration.Observe(duration.Seconds())
}

func TrackFavoriteToggle(favorited bool) {
	result := "removed"
	if favorited {
		result = "added"
	}
	favoriteToggles.WithLabelValues(result).Inc()
}

func TrackDealEvent(eventType string, err error) {
	dealEvents.WithLabelValues(eventType, outcome(err)).Inc()
}

// GinMiddleware 記錄每個 route 的延遲
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
