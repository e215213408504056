// Package obs provides Prometheus metrics for the service.
package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// ScansTotal counts low-stock scans actually executed, by scope
	// ("all" or "company").
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcontrol_low_stock_scans_total",
			Help: "Low-stock scans executed.",
		},
		[]string{"scope"},
	)

	// ScansSkipped counts scans skipped by the re-entrancy guard.
	ScansSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcontrol_low_stock_scans_skipped_total",
			Help: "Low-stock scans skipped because one was already running.",
		},
		[]string{"scope"},
	)

	// AlertsCreated counts low-stock alerts created, by severity.
	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcontrol_low_stock_alerts_total",
			Help: "Low-stock alerts created.",
		},
		[]string{"severity"},
	)

	// MovementsRecorded counts stock movements appended, by kind.
	MovementsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcontrol_stock_movements_total",
			Help: "Stock movements recorded.",
		},
		[]string{"kind"},
	)
)

// Register registers all metrics with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ScansTotal, ScansSkipped, AlertsCreated, MovementsRecorded)
	})
}
