package profiling

import (
	"math"
	"sort"

	"sentinel/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalityAlpha is the significance level of the Jarque-Bera test
const normalityAlpha = 0.05

// Distribution summarizes the shape of one numeric column
type Distribution struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	// Kurtosis is excess kurtosis, 0 for a normal distribution
	Kurtosis   float64 `json:"kurtosis"`
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes summary statistics and shape markers for data.
// Shape markers stay zero when there are too few values or no spread.
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (Distribution, error) {
	d := Distribution{Count: len(data)}
	if len(data) == 0 {
		return d, errors.InvalidInput("no values to analyze")
	}

	var err error
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, errors.Wrap(err, "mean")
	}
	if d.StdDev, err = stats.StandardDeviation(data); err != nil {
		return d, errors.Wrap(err, "standard deviation")
	}
	if d.Min, err = stats.Min(data); err != nil {
		return d, errors.Wrap(err, "min")
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, errors.Wrap(err, "max")
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, errors.Wrap(err, "median")
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	d.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	d.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	if d.StdDev == 0 {
		return d, nil
	}
	if len(data) >= 3 {
		d.Skewness = stat.Skew(data, nil)
	}
	if len(data) >= 4 {
		d.Kurtosis = stat.ExKurtosis(data, nil)
	}
	d.IsNormal, d.NormalityP = jarqueBera(len(data), d.Skewness, d.Kurtosis)
	return d, nil
}

// jarqueBera tests normality from skewness and excess kurtosis against a
// chi-squared distribution with two degrees of freedom
func jarqueBera(n int, skewness, kurtosis float64) (bool, float64) {
	if n < 4 {
		return false, 0
	}
	jb := float64(n) / 6 * (skewness*skewness + kurtosis*kurtosis/4)
	p := 1 - distuv.ChiSquared{K: 2}.CDF(jb)
	if math.IsNaN(p) {
		return false, 0
	}
	return p > normalityAlpha, p
}

// detectOutliers returns the indices of values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) []int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	var outliers []int
	for i, x := range data {
		if x < lowerBound || x > upperBound {
			outliers = append(outliers, i)
		}
	}
	return outliers
}
