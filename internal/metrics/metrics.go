// Package metrics exposes Prometheus counters for the business operations
// and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ImportItems  *prometheus.CounterVec
	Allocations  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	MailFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ImportItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentordesk",
			Name:      "import_items_total",
			Help:      "Imported accounts by role and outcome.",
		}, []string{"role", "status"}),
		Allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentordesk",
			Name:      "allocation_transitions_total",
			Help:      "Allocate and deallocate transitions by outcome.",
		}, []string{"op", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentordesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		MailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentordesk",
			Name:      "mail_failures_total",
			Help:      "Account mails that could not be delivered.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ImportItems,
		m.Allocations,
		m.HTTPRequests,
		m.MailFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts every request by its route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.HTTPRequests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}
