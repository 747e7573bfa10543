package mocks

import (
	"net/http"
	"roadbook/infras/metrics"
	"time"
)

type metricsImpl struct {
}

// BookingCreated implements metrics.Metrics.
func (m *metricsImpl) BookingCreated(_, _ int) {

}

// BookingRejected implements metrics.Metrics.
func (m *metricsImpl) BookingRejected(_ string) {

}

// BookingCancelled implements metrics.Metrics.
func (m *metricsImpl) BookingCancelled(_ string, _ int) {

}

// TransactionObserved implements metrics.Metrics.
func (m *metricsImpl) TransactionObserved(_, _ string, _ time.Duration) {

}

// Handler implements metrics.Metrics.
func (m *metricsImpl) Handler() http.Handler {
	return http.NotFoundHandler()
}

func NewMetrics() metrics.Metrics {
	return &metricsImpl{}
}
