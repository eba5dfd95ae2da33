// Package metrics defines the stock ledger's Prometheus collectors:
//   - medstock_transactions_total: Counter with type label
//   - medstock_transaction_quantity_total: Counter with type label
//   - medstock_month_closes_total: Counter with result label
//   - medstock_forwarded_rows_total: Counter of carry-forward entries written
//   - medstock_login_attempts_total: Counter with result label
//   - medstock_rate_limiter_buckets: Gauge of tracked login clients
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the domain collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transactions     *prometheus.CounterVec
	quantity         *prometheus.CounterVec
	monthCloses      *prometheus.CounterVec
	forwardedRows    prometheus.Counter
	loginAttempts    *prometheus.CounterVec
	rateLimitBuckets prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medstock_transactions_total",
				Help: "Stock transactions recorded, by transaction type code.",
			},
			[]string{"type"},
		),
		quantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medstock_transaction_quantity_total",
				Help: "Units moved by recorded stock transactions, by transaction type code.",
			},
			[]string{"type"},
		),
		monthCloses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medstock_month_closes_total",
				Help: "Month close attempts, by result.",
			},
			[]string{"result"},
		),
		forwardedRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "medstock_forwarded_rows_total",
				Help: "Carry-forward entries written by month close.",
			},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medstock_login_attempts_total",
				Help: "Login attempts, by result.",
			},
			[]string{"result"},
		),
		rateLimitBuckets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "medstock_rate_limiter_buckets",
				Help: "Clients currently tracked by the login rate limiter.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.transactions, m.quantity, m.monthCloses, m.forwardedRows, m.loginAttempts, m.rateLimitBuckets,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TransactionRecorded counts one ledger write of qty units.
func (m *Metrics) TransactionRecorded(typeCode string, qty int64) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(typeCode).Inc()
	m.quantity.WithLabelValues(typeCode).Add(float64(qty))
}

// MonthClosed counts a close attempt; result is e.g. "success", "already_closed", "error".
func (m *Metrics) MonthClosed(result string, forwarded int) {
	if m == nil {
		return
	}
	m.monthCloses.WithLabelValues(result).Inc()
	if forwarded > 0 {
		m.forwardedRows.Add(float64(forwarded))
	}
}

// LoginAttempt counts a login by result ("success", "invalid", "rate_limited").
func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

// SetRateLimitBuckets reports the number of tracked limiter clients.
func (m *Metrics) SetRateLimitBuckets(n int) {
	if m == nil {
		return
	}
	m.rateLimitBuckets.Set(float64(n))
}
