package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeFirstAccess    = "first_access"
	OutcomeUnknownRF      = "unknown_rf"
	OutcomeWrongPassword  = "wrong_password"
	OutcomeBootstrap      = "bootstrap"
	OutcomePasswordNeeded = "password_needed"
)

// Document kinds.
const (
	DocumentCover   = "cover"
	DocumentDossier = "dossier"
	DocumentExport  = "export"
)

// Metrics holds the service counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	logins             *prometheus.CounterVec
	documentsGenerated *prometheus.CounterVec
	reportsCreated     prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aee_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		documentsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aee_documents_generated_total",
			Help: "Generated documents by kind.",
		}, []string{"kind"}),
		reportsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aee_reports_created_total",
			Help: "Lesson reports filed.",
		}),
	}
	reg.MustRegister(m.logins, m.documentsGenerated, m.reportsCreated)
	return m
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DocumentGenerated(kind string) {
	if m == nil {
		return
	}
	m.documentsGenerated.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReportCreated() {
	if m == nil {
		return
	}
	m.reportsCreated.Inc()
}
