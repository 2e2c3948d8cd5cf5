package profiling

import (
	"sentinel/domain/military"
	"sentinel/internal/errors"
)

// MetricProfile describes the raw distribution of one normalized metric
// across a table, naming the countries that sit outside the IQR fences.
type MetricProfile struct {
	Metric     military.Metric `json:"metric"`
	Label      string          `json:"label"`
	Degenerate bool            `json:"degenerate"`
	Distribution
	Outliers []string `json:"outliers"`
}

// Profiler profiles the metric columns of a table
type Profiler struct {
	analyzer *DistributionAnalyzer
}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{analyzer: NewDistributionAnalyzer()}
}

// ProfileTable analyzes every metric in radar axis order. An empty table
// yields profiles with zero counts.
func (p *Profiler) ProfileTable(t *military.Table) ([]MetricProfile, error) {
	if t == nil {
		return nil, errors.InvalidInput("table cannot be nil")
	}

	rows := t.Rows()
	profiles := make([]MetricProfile, 0, len(military.Metrics))
	for _, m := range military.Metrics {
		profile := MetricProfile{
			Metric:     m,
			Label:      m.Label(),
			Degenerate: t.IsDegenerate(m),
			Outliers:   []string{},
		}
		if len(rows) == 0 {
			profiles = append(profiles, profile)
			continue
		}

		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = r.Value(m)
		}

		dist, err := p.analyzer.AnalyzeDistribution(values)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to profile %s", m.Column())
		}
		profile.Distribution = dist

		for _, i := range detectOutliers(values, dist.Q25, dist.Q75) {
			profile.Outliers = append(profile.Outliers, rows[i].Country)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
