package services

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Checker probes one backend. A nil error means healthy.
type Checker func(ctx context.Context) error

type HealthService struct {
	logger   *logrus.Logger
	checkers map[string]Checker
	timeout  time.Duration

	healthCheckStatus *prometheus.GaugeVec
	lastHealthCheck   *prometheus.GaugeVec
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Degraded  []string          `json:"degraded,omitempty"`
}

// NewHealthService builds a health service over the configured backends. Every backend
// is optional for the storefront, so a failing one degrades the status rather than
// failing it.
func NewHealthService(checkers map[string]Checker, registerer prometheus.Registerer, logger *logrus.Logger) *HealthService {
	hs := &HealthService{
		logger:   logger,
		checkers: checkers,
		timeout:  5 * time.Second,
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})

	hs.lastHealthCheck = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_timestamp",
		Help: "Timestamp of last health check",
	}, []string{"service"})

	for _, collector := range []prometheus.Collector{hs.healthCheckStatus, hs.lastHealthCheck} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register health metric")
			}
		}
	}

	return hs
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(s.checkers)),
	}

	for name, check := range s.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			status.Services[name] = "unhealthy"
			status.Degraded = append(status.Degraded, name)
			s.logger.WithError(err).Warnf("Service %s is unhealthy", name)
			s.UpdateHealthMetrics(name, false)
			continue
		}
		status.Services[name] = "healthy"
		s.UpdateHealthMetrics(name, true)
	}

	sort.Strings(status.Degraded)
	if len(status.Degraded) > 0 {
		status.Status = "degraded"
	}
	return status
}

// UpdateHealthMetrics updates health check metrics
func (s *HealthService) UpdateHealthMetrics(serviceName string, healthy bool) {
	if healthy {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(1)
	} else {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(0)
	}
	s.lastHealthCheck.WithLabelValues(serviceName).Set(float64(time.Now().Unix()))
}
