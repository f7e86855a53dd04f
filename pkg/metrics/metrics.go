package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wanderly_bookings_created_total",
		Help: "Bookings created.",
	})

	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderly_bookings_rejected_total",
		Help: "Booking attempts rejected, by reason.",
	}, []string{"reason"})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wanderly_bookings_cancelled_total",
		Help: "Bookings cancelled.",
	})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderly_payment_verifications_total",
		Help: "Payment signature verifications by outcome.",
	}, []string{"outcome"})

	AvailabilityLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wanderly_availability_lookups_total",
		Help: "Availability computations served.",
	})

	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderly_notifications_published_total",
		Help: "Booking events handed to the broker, by result.",
	}, []string{"result"})
)
