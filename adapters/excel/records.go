package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sentinel/domain/military"
	"sentinel/internal/errors"
)

// CheckSchema fails with SCHEMA_ERROR naming every required column the header lacks.
func CheckSchema(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range military.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.SchemaError(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// DecodeRecords converts string rows into typed records. Column order is
// irrelevant; extra columns are ignored.
func DecodeRecords(data *ExcelData) ([]military.Record, error) {
	if err := CheckSchema(data.Headers); err != nil {
		return nil, err
	}

	records := make([]military.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		rec, err := decodeRow(row)
		if err != nil {
			// +2: header is line 1 and rows are 1-indexed
			return nil, errors.Wrapf(err, "line %d", i+2)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row RawRowData) (military.Record, error) {
	var (
		rec military.Record
		err error
	)
	rec.Country = row[military.ColCountry]

	rank, err := parseInt(row, military.ColRank)
	if err != nil {
		return rec, err
	}
	rec.Rank = int(rank)

	if rec.BudgetUSD, err = parseFloat(row, military.ColBudgetUSD); err != nil {
		return rec, err
	}
	if rec.PowerIndex, err = parseFloat(row, military.ColPowerIndex); err != nil {
		return rec, err
	}

	ints := []struct {
		col string
		dst *int64
	}{
		{military.ColPersonnelActive, &rec.PersonnelActive},
		{military.ColPersonnelReserve, &rec.PersonnelReserve},
		{military.ColAircraftTotal, &rec.AircraftTotal},
		{military.ColTanks, &rec.Tanks},
		{military.ColNavyTotal, &rec.NavyTotal},
	}
	for _, c := range ints {
		if *c.dst, err = parseInt(row, c.col); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// cleanNumber strips a leading currency sign and thousands separators.
func cleanNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	return strings.ReplaceAll(s, ",", "")
}

func parseFloat(row RawRowData, col string) (float64, error) {
	raw := row[col]
	s := cleanNumber(raw)
	if s == "" {
		return 0, errors.DataLoadError(fmt.Sprintf("column %s: empty value", col), nil)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.DataLoadError(fmt.Sprintf("column %s: non-numeric value %q", col, raw), err)
	}
	return v, nil
}

// parseInt accepts integral floats such as "1200.0", as spreadsheets often
// store whole numbers that way.
func parseInt(row RawRowData, col string) (int64, error) {
	raw := row[col]
	s := cleanNumber(raw)
	if s == "" {
		return 0, errors.DataLoadError(fmt.Sprintf("column %s: empty value", col), nil)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.DataLoadError(fmt.Sprintf("column %s: non-numeric value %q", col, raw), err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, errors.DataLoadError(fmt.Sprintf("column %s: expected an integer, got %q", col, raw), nil)
	}
	return int64(f), nil
}
