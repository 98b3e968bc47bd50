package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/topwords/internal/model"
)

const namespace = "topwords"

// Recorder holds the collectors of a single run.
type Recorder struct {
	registry *prometheus.Registry

	wordFrequency *prometheus.GaugeVec
	tokensTotal   prometheus.Gauge
	distinctWords prometheus.Gauge
	stageDuration *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		wordFrequency: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "word_frequency",
				Help:      "The frequency of each ranked word in the source text",
			},
			[]string{"word"},
		),
		tokensTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Number of tokens in the source text",
		}),
		distinctWords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distinct_words",
			Help:      "Number of distinct words in the source text",
		}),
		stageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each processing stage",
			},
			[]string{"stage"},
		),
	}
}

// Observe records the results of run. It fails for a word that is not a
// valid label value; the gauges set before the failure are kept.
func (r *Recorder) Observe(run *model.Run) error {
	for _, p := range run.Ranked {
		g, err := r.wordFrequency.GetMetricWithLabelValues(p.Word)
		if err != nil {
			return fmt.Errorf("failed to record word %q: %w", p.Word, err)
		}
		g.Set(float64(p.Count))
	}
	r.tokensTotal.Set(float64(run.TotalTokens))
	r.distinctWords.Set(float64(run.DistinctWords))
	for stage, d := range run.Durations {
		g, err := r.stageDuration.GetMetricWithLabelValues(stage)
		if err != nil {
			return fmt.Errorf("failed to record stage %q: %w", stage, err)
		}
		g.Set(d.Seconds())
	}
	return nil
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Gatherer exposes the registry, e.g. for a promhttp handler.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
