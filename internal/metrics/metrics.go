// Package metrics holds the Prometheus collectors of the inventory service.
// They register with the default registry on import; /metrics exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory"

// SalesRecordedTotal counts sale records written.
var SalesRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_recorded_total",
		Help:      "Total number of sales recorded.",
	},
)

// UnitsSoldTotal counts units taken out of stock by sales.
var UnitsSoldTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_sold_total",
		Help:      "Total number of product units sold.",
	},
)

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "conflict", "invalid" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ProductsLowStock is the number of products found below the threshold by the
// most recent low-stock query.
var ProductsLowStock = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "products_low_stock",
		Help:      "Products below the low-stock threshold at the last check.",
	},
)
