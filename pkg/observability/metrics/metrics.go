package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	artefactsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opencourt_artefacts_ingested_total",
		Help: "Artefacts accepted by the ingestion endpoint, by list type.",
	}, []string{"list_type"})

	noMatchArtefacts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opencourt_artefacts_no_match_total",
		Help: "Artefacts stored with an unresolvable location reference.",
	})

	validationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opencourt_ingestion_rejected_total",
		Help: "Ingestion requests rejected at header validation, by field.",
	}, []string{"field"})

	eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opencourt_event_publish_failures_total",
		Help: "Artefact events that could not be written to the feed topic.",
	})

	artefactsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opencourt_artefacts_rendered_total",
		Help: "Artefacts rendered by the worker, by outcome.",
	}, []string{"outcome"})

	artefactsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opencourt_artefacts_archived_total",
		Help: "Artefacts archived by the expiry sweep or by an operator.",
	})

	authorizationDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opencourt_authorization_denials_total",
		Help: "Classified artefact reads refused by the authorization gate.",
	})
)

func IncArtefactsIngested(listType string) {
	artefactsIngested.WithLabelValues(listType).Inc()
}

func IncNoMatchArtefacts() {
	noMatchArtefacts.Inc()
}

func IncValidationRejection(field string) {
	validationRejections.WithLabelValues(field).Inc()
}

func IncEventPublishFailures() {
	eventPublishFailures.Inc()
}

// IncArtefactsRendered records a render attempt; outcome is one of
// "rendered", "unsupported" or "failed".
func IncArtefactsRendered(outcome string) {
	artefactsRendered.WithLabelValues(outcome).Inc()
}

func IncArtefactsArchived() {
	artefactsArchived.Inc()
}

func IncAuthorizationDenials() {
	authorizationDenials.Inc()
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
