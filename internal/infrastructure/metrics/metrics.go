package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for client lifecycle events
type Metrics struct {
	ClientsCreated prometheus.Counter
	ClientsUpdated prometheus.Counter
	ClientsDeleted prometheus.Counter
}

// New creates the client metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ClientsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clientdesk_clients_created_total",
			Help: "Total number of clients created",
		}),
		ClientsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clientdesk_clients_updated_total",
			Help: "Total number of clients updated",
		}),
		ClientsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clientdesk_clients_deleted_total",
			Help: "Total number of clients deleted",
		}),
	}
	reg.MustRegister(m.ClientsCreated, m.ClientsUpdated, m.ClientsDeleted)
	return m
}

func (m *Metrics) IncrementClientsCreated() {
	m.ClientsCreated.Inc()
}

func (m *Metrics) IncrementClientsUpdated() {
	m.ClientsUpdated.Inc()
}

func (m *Metrics) IncrementClientsDeleted() {
	m.ClientsDeleted.Inc()
}
