// Package military holds the country military-power table: the fixed row
// schema, the columns derived at load time, and the read-only operations the
// dashboard runs against a loaded table.
package military

import (
	"encoding/json"
	"strconv"
	"time"

	"sentinel/internal/errors"
)

// Column names of the source file. They are the parsing contract.
const (
	ColCountry          = "Country"
	ColRank             = "Rank"
	ColBudgetUSD        = "Budget_USD"
	ColPersonnelActive  = "Personnel_Active"
	ColPersonnelReserve = "Personnel_Reserve"
	ColAircraftTotal    = "Aircraft_Total"
	ColTanks            = "Tanks"
	ColNavyTotal        = "Navy_Total"
	ColPowerIndex       = "PowerIndex"

	ColBudgetBillions = "Budget_Billions"
	ColTotalPersonnel = "Total_Personnel"
)

// RequiredColumns lists every raw column a source must carry, in canonical order.
var RequiredColumns = []string{
	ColCountry,
	ColRank,
	ColBudgetUSD,
	ColPersonnelActive,
	ColPersonnelReserve,
	ColAircraftTotal,
	ColTanks,
	ColNavyTotal,
	ColPowerIndex,
}

// Metric identifies one of the columns rescaled to [0,1] for radar comparison.
type Metric int

const (
	MetricBudgetUSD Metric = iota
	MetricAircraftTotal
	MetricTanks
	MetricNavyTotal
	MetricPersonnelActive

	metricCount
)

// Metrics is the normalization set in radar axis order.
var Metrics = []Metric{
	MetricBudgetUSD,
	MetricAircraftTotal,
	MetricTanks,
	MetricNavyTotal,
	MetricPersonnelActive,
}

var metricColumns = [metricCount]string{
	ColBudgetUSD,
	ColAircraftTotal,
	ColTanks,
	ColNavyTotal,
	ColPersonnelActive,
}

var metricLabels = [metricCount]string{
	"Budget",
	"Air Power",
	"Tank Force",
	"Naval Fleet",
	"Active Personnel",
}

// Column returns the raw source column the metric is computed from.
func (m Metric) Column() string {
	if m < 0 || m >= metricCount {
		return ""
	}
	return metricColumns[m]
}

// NormColumn returns the derived column name, e.g. norm_Budget_USD.
func (m Metric) NormColumn() string {
	return "norm_" + m.Column()
}

// Label is the radar axis caption.
func (m Metric) Label() string {
	if m < 0 || m >= metricCount {
		return ""
	}
	return metricLabels[m]
}

func (m Metric) String() string {
	return m.Column()
}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Column())
}

// Record is one raw source row before any derivation.
type Record struct {
	Country          string  `json:"Country"`
	Rank             int     `json:"Rank"`
	BudgetUSD        float64 `json:"Budget_USD"`
	PersonnelActive  int64   `json:"Personnel_Active"`
	PersonnelReserve int64   `json:"Personnel_Reserve"`
	AircraftTotal    int64   `json:"Aircraft_Total"`
	Tanks            int64   `json:"Tanks"`
	NavyTotal        int64   `json:"Navy_Total"`
	PowerIndex       float64 `json:"PowerIndex"`
}

// Value returns the raw value of m.
func (r Record) Value(m Metric) float64 {
	switch m {
	case MetricBudgetUSD:
		return r.BudgetUSD
	case MetricAircraftTotal:
		return float64(r.AircraftTotal)
	case MetricTanks:
		return float64(r.Tanks)
	case MetricNavyTotal:
		return float64(r.NavyTotal)
	case MetricPersonnelActive:
		return float64(r.PersonnelActive)
	}
	return 0
}

// Row is a record plus its derived columns. Rows are values; copying one never
// exposes the table's storage.
type Row struct {
	Record
	BudgetBillions float64
	TotalPersonnel int64

	norm    [metricCount]float64
	defined [metricCount]bool
}

// Norm returns the row's min-max scaled value for m. It fails with a
// DEGENERATE_METRIC error when every row of the loaded dataset shares the
// same value for m.
func (r Row) Norm(m Metric) (float64, error) {
	if m < 0 || m >= metricCount {
		return 0, errors.InvalidInput("unknown metric")
	}
	if !r.defined[m] {
		return 0, errors.DegenerateMetric(m.Column())
	}
	return r.norm[m], nil
}

type rowJSON struct {
	Record
	BudgetBillions      float64  `json:"Budget_Billions"`
	TotalPersonnel      int64    `json:"Total_Personnel"`
	NormBudgetUSD       *float64 `json:"norm_Budget_USD"`
	NormAircraftTotal   *float64 `json:"norm_Aircraft_Total"`
	NormTanks           *float64 `json:"norm_Tanks"`
	NormNavyTotal       *float64 `json:"norm_Navy_Total"`
	NormPersonnelActive *float64 `json:"norm_Personnel_Active"`
}

// MarshalJSON emits every column under its source name; undefined normalized
// values are emitted as null.
func (r Row) MarshalJSON() ([]byte, error) {
	out := rowJSON{
		Record:         r.Record,
		BudgetBillions: r.BudgetBillions,
		TotalPersonnel: r.TotalPersonnel,
	}
	ptr := func(m Metric) *float64 {
		if !r.defined[m] {
			return nil
		}
		v := r.norm[m]
		return &v
	}
	out.NormBudgetUSD = ptr(MetricBudgetUSD)
	out.NormAircraftTotal = ptr(MetricAircraftTotal)
	out.NormTanks = ptr(MetricTanks)
	out.NormNavyTotal = ptr(MetricNavyTotal)
	out.NormPersonnelActive = ptr(MetricPersonnelActive)
	return json.Marshal(out)
}

// Version identifies the backing resource a table was parsed from.
type Version struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Hash    string    `json:"hash,omitempty"`
}

// Key is the cache key: path, size and modification time.
func (v Version) Key() string {
	return v.Path + "|" + v.ModTime.UTC().Format(time.RFC3339Nano) + "|" + strconv.FormatInt(v.Size, 10)
}
