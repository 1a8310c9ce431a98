package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Gateway records upload, submission and milestone activity.
type Gateway struct {
	uploadDuration *prometheus.HistogramVec
	uploads        *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	advances       *prometheus.CounterVec
}

// NewGateway registers the gateway metrics on the provided registerer.
func NewGateway(reg prometheus.Registerer) *Gateway {
	if reg == nil {
		return &Gateway{}
	}
	uploadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_upload_duration_seconds",
		Help:    "Duration of image host uploads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"purpose"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Image host uploads by purpose and outcome.",
	}, []string{"purpose", "outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "design_submissions_total",
		Help: "Design request submissions by design type and outcome.",
	}, []string{"design_type", "outcome"})
	advances := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "milestone_advances_total",
		Help: "Milestone advancements by target status and outcome.",
	}, []string{"status", "outcome"})
	reg.MustRegister(uploadDuration, uploads, submissions, advances)
	return &Gateway{
		uploadDuration: uploadDuration,
		uploads:        uploads,
		submissions:    submissions,
		advances:       advances,
	}
}

// ObserveUpload records one image upload.
func (g *Gateway) ObserveUpload(purpose string, duration time.Duration, err error) {
	if g == nil || g.uploads == nil {
		return
	}
	purpose = normalizeLabel(purpose)
	g.uploadDuration.WithLabelValues(purpose).Observe(duration.Seconds())
	g.uploads.WithLabelValues(purpose, outcome(err)).Inc()
}

// IncSubmission counts a finished design request submission.
func (g *Gateway) IncSubmission(designType string, err error) {
	if g == nil || g.submissions == nil {
		return
	}
	g.submissions.WithLabelValues(normalizeLabel(designType), outcome(err)).Inc()
}

// IncAdvance counts a milestone advancement attempt.
func (g *Gateway) IncAdvance(status string, err error) {
	if g == nil || g.advances == nil {
		return
	}
	g.advances.WithLabelValues(normalizeLabel(status), outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
