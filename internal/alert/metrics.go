package alert

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/database"
)

type Metrics struct {
	ChecksTotal       prometheus.Counter
	NotificationsSent prometheus.Counter
	FetchErrors       *prometheus.CounterVec
	TrackedItems      prometheus.Gauge
	CycleDuration     prometheus.Histogram
	Mutex             sync.Mutex
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		ChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "price_tracker",
			Subsystem: "engine",
			Name:      "checks_total",
			Help:      "The total number of price checks performed",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "price_tracker",
			Subsystem: "engine",
			Name:      "notifications_sent",
			Help:      "The total number of price alerts raised",
		}),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "price_tracker",
				Subsystem: "engine",
				Name:      "fetch_errors",
				Help:      "Failed price fetches per product host",
			},
			[]string{"host"},
		),
		TrackedItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "price_tracker",
			Subsystem: "engine",
			Name:      "tracked_items",
			Help:      "The number of items seen by the last polling cycle",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "price_tracker",
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full polling cycle",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	reg.MustRegister(metrics.ChecksTotal)
	reg.MustRegister(metrics.NotificationsSent)
	reg.MustRegister(metrics.FetchErrors)
	reg.MustRegister(metrics.TrackedItems)
	reg.MustRegister(metrics.CycleDuration)

	return metrics
}

// LoadFromDB restores the counters saved by SaveToDB.
func (m *Metrics) LoadFromDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	checks, _ := database.GetMetric("checks_total")
	notifications, _ := database.GetMetric("notifications_sent")

	m.ChecksTotal.Add(checks)
	m.NotificationsSent.Add(notifications)

	fetchErrors, err := database.GetMetricsWithLabels("fetch_errors")
	if err != nil {
		log.Errorf("Failed to load fetch_errors metric: %v", err)
	}
	for host, value := range fetchErrors["host"] {
		m.FetchErrors.WithLabelValues(host).Add(value)
	}

	log.Info("Metrics loaded from database.")
}

// SaveToDB persists the counters so they survive restarts.
func (m *Metrics) SaveToDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	if err := database.SaveMetric("checks_total", GetMetricValue(m.ChecksTotal)); err != nil {
		log.Errorf("Failed to save checks_total: %v", err)
	}
	if err := database.SaveMetric("notifications_sent", GetMetricValue(m.NotificationsSent)); err != nil {
		log.Errorf("Failed to save notifications_sent: %v", err)
	}

	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		m.FetchErrors.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read fetch_errors metric: %v", err)
			continue
		}
		var host string
		for _, label := range metricProto.Label {
			if label.GetName() == "host" {
				host = label.GetValue()
			}
		}
		if err := database.SaveMetricWithLabels("fetch_errors", "host", host, metricProto.Counter.GetValue()); err != nil {
			log.Errorf("Failed to save fetch_errors for %s: %v", host, err)
		}
	}

	log.Debug("Metrics saved to database.")
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
