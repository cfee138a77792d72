package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "upi"

const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

type Metrics struct {
	LinksBuilt      *prometheus.CounterVec
	QREncoded       *prometheus.CounterVec
	ReceiptsIssued  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinksBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_built_total",
			Help:      "Payment links built, by channel and result.",
		}, []string{"channel", "result"}),
		QREncoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_encoded_total",
			Help:      "QR images encoded, by channel and result.",
		}, []string{"channel", "result"}),
		ReceiptsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_issued_total",
			Help:      "Mock receipts issued, by payment method.",
		}, []string{"method"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) LinkBuilt(channel, result string) {
	m.LinksBuilt.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) QR(channel, result string) {
	m.QREncoded.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) ReceiptIssued(method string) {
	m.ReceiptsIssued.WithLabelValues(method).Inc()
}

// Middleware observes request latency labelled by the chi route pattern, so
// query strings and path values do not blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
