package military

import (
	"fmt"

	"sentinel/internal/errors"
)

// MapPoint feeds the geographic bubble map.
type MapPoint struct {
	Country        string  `json:"Country"`
	TotalPersonnel int64   `json:"Total_Personnel"`
	BudgetBillions float64 `json:"Budget_Billions"`
	Rank           int     `json:"Rank"`
	PowerIndex     float64 `json:"PowerIndex"`
}

// BarPoint feeds the budget bar chart.
type BarPoint struct {
	Country        string  `json:"Country"`
	BudgetBillions float64 `json:"Budget_Billions"`
}

// ScatterPoint feeds the budget vs PowerIndex scatter, sized by aircraft.
type ScatterPoint struct {
	Country        string  `json:"Country"`
	BudgetBillions float64 `json:"Budget_Billions"`
	PowerIndex     float64 `json:"PowerIndex"`
	AircraftTotal  int64   `json:"Aircraft_Total"`
}

// RadarTrace is one country's polygon on the comparison radar.
type RadarTrace struct {
	Country    string    `json:"country"`
	Categories []string  `json:"categories"`
	Metrics    []string  `json:"metrics"`
	Values     []float64 `json:"values"`
}

func MapPoints(t *Table) []MapPoint {
	out := make([]MapPoint, 0, t.Len())
	for _, r := range t.rows {
		out = append(out, MapPoint{
			Country:        r.Country,
			TotalPersonnel: r.TotalPersonnel,
			BudgetBillions: r.BudgetBillions,
			Rank:           r.Rank,
			PowerIndex:     r.PowerIndex,
		})
	}
	return out
}

func BarSeries(t *Table) []BarPoint {
	out := make([]BarPoint, 0, t.Len())
	for _, r := range t.rows {
		out = append(out, BarPoint{Country: r.Country, BudgetBillions: r.BudgetBillions})
	}
	return out
}

func ScatterPoints(t *Table) []ScatterPoint {
	out := make([]ScatterPoint, 0, t.Len())
	for _, r := range t.rows {
		out = append(out, ScatterPoint{
			Country:        r.Country,
			BudgetBillions: r.BudgetBillions,
			PowerIndex:     r.PowerIndex,
			AircraftTotal:  r.AircraftTotal,
		})
	}
	return out
}

// RadarFor builds the radar trace of one country from its normalized metrics.
func RadarFor(t *Table, country string) (RadarTrace, error) {
	row, ok := t.Lookup(country)
	if !ok {
		return RadarTrace{}, errors.NotFound(fmt.Sprintf("country %q", country))
	}

	trace := RadarTrace{
		Country:    country,
		Categories: make([]string, 0, len(Metrics)),
		Metrics:    make([]string, 0, len(Metrics)),
		Values:     make([]float64, 0, len(Metrics)),
	}
	for _, m := range Metrics {
		v, err := row.Norm(m)
		if err != nil {
			return RadarTrace{}, err
		}
		trace.Categories = append(trace.Categories, m.Label())
		trace.Metrics = append(trace.Metrics, m.NormColumn())
		trace.Values = append(trace.Values, v)
	}
	return trace, nil
}

// Radar compares two countries. Callers pass the full loaded table so the
// polygons share the dataset-wide scale.
func Radar(t *Table, a, b string) ([]RadarTrace, error) {
	first, err := RadarFor(t, a)
	if err != nil {
		return nil, err
	}
	second, err := RadarFor(t, b)
	if err != nil {
		return nil, err
	}
	return []RadarTrace{first, second}, nil
}
