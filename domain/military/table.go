package military

import (
	"fmt"
	"math"
	"sort"

	"sentinel/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// Table is an ordered, immutable set of country rows. Tables are built once by
// Build and only ever read afterwards; Filter returns new tables.
type Table struct {
	rows       []Row
	index      map[string]int
	degenerate []Metric
	maxRank    int
	version    Version
	loadID     string
}

// BuildOptions controls table construction.
type BuildOptions struct {
	Version Version
	LoadID  string
	// Strict fails the build when a normalized metric has zero spread instead
	// of marking it undefined.
	Strict bool
}

// Build validates the records and derives Budget_Billions, Total_Personnel
// and the norm_* columns. Normalization is scaled against all records.
func Build(records []Record, opts BuildOptions) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.DataLoadError("dataset has no data rows", nil)
	}

	rows := make([]Row, len(records))
	index := make(map[string]int, len(records))
	maxRank := 0

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		if prev, dup := index[rec.Country]; dup {
			return nil, errors.DataLoadError(
				fmt.Sprintf("duplicate country %q in rows %d and %d", rec.Country, prev+1, i+1), nil)
		}
		index[rec.Country] = i
		if rec.Rank > maxRank {
			maxRank = rec.Rank
		}

		rows[i] = Row{
			Record:         rec,
			BudgetBillions: rec.BudgetUSD / 1e9,
			TotalPersonnel: rec.PersonnelActive + rec.PersonnelReserve,
		}
	}

	var degenerate []Metric
	column := make([]float64, len(records))
	for _, m := range Metrics {
		for i, rec := range records {
			column[i] = rec.Value(m)
		}

		lo, hi := floats.Min(column), floats.Max(column)
		if hi == lo {
			if opts.Strict {
				return nil, errors.DegenerateMetric(m.Column())
			}
			degenerate = append(degenerate, m)
			continue
		}

		span := hi - lo
		floats.AddConst(-lo, column)
		for i := range rows {
			rows[i].norm[m] = column[i] / span
			rows[i].defined[m] = true
		}
	}

	return &Table{
		rows:       rows,
		index:      index,
		degenerate: degenerate,
		maxRank:    maxRank,
		version:    opts.Version,
		loadID:     opts.LoadID,
	}, nil
}

func validateRecord(rec Record) error {
	if rec.Country == "" {
		return errors.DataLoadError("empty Country", nil)
	}
	if rec.Rank < 1 {
		return errors.DataLoadError(rec.Country+": Rank must be a positive integer", nil)
	}
	for col, v := range map[string]float64{ColBudgetUSD: rec.BudgetUSD, ColPowerIndex: rec.PowerIndex} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.DataLoadError(rec.Country+": "+col+" must be a finite number", nil)
		}
	}
	nonNegative := []struct {
		col string
		v   float64
	}{
		{ColBudgetUSD, rec.BudgetUSD},
		{ColPersonnelActive, float64(rec.PersonnelActive)},
		{ColPersonnelReserve, float64(rec.PersonnelReserve)},
		{ColAircraftTotal, float64(rec.AircraftTotal)},
		{ColTanks, float64(rec.Tanks)},
		{ColNavyTotal, float64(rec.NavyTotal)},
	}
	for _, c := range nonNegative {
		if c.v < 0 {
			return errors.DataLoadError(rec.Country+": "+c.col+" must be non-negative", nil)
		}
	}
	return nil
}

// derive returns a table over a subset of t's rows. Normalization, version and
// load ID are inherited so scaling stays global.
func (t *Table) derive(rows []Row) *Table {
	index := make(map[string]int, len(rows))
	maxRank := 0
	for i, r := range rows {
		index[r.Country] = i
		if r.Rank > maxRank {
			maxRank = r.Rank
		}
	}
	return &Table{
		rows:       rows,
		index:      index,
		degenerate: t.degenerate,
		maxRank:    maxRank,
		version:    t.version,
		loadID:     t.loadID,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the row for country.
func (t *Table) Lookup(country string) (Row, bool) {
	i, ok := t.index[country]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// MaxRank returns the largest Rank present, or 0 for an empty table.
func (t *Table) MaxRank() int {
	return t.maxRank
}

// Degenerate lists the metrics whose normalized column is undefined.
func (t *Table) Degenerate() []Metric {
	out := make([]Metric, len(t.degenerate))
	copy(out, t.degenerate)
	return out
}

// IsDegenerate reports whether m has zero spread over the loaded dataset.
func (t *Table) IsDegenerate(m Metric) bool {
	for _, d := range t.degenerate {
		if d == m {
			return true
		}
	}
	return false
}

func (t *Table) Version() Version {
	return t.version
}

func (t *Table) LoadID() string {
	return t.loadID
}

// Countries returns the sorted country names.
func (t *Table) Countries() []string {
	names := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		names = append(names, r.Country)
	}
	sort.Strings(names)
	return names
}
