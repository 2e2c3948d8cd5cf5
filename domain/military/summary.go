package military

import (
	"sentinel/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summary is the headline metric row of the dashboard.
type Summary struct {
	Count                  int     `json:"count"`
	TopCountry             string  `json:"top_country"`
	TotalBudgetBillions    float64 `json:"total_budget_billions"`
	AvgPowerIndex          float64 `json:"avg_power_index"`
	TotalPersonnelMillions float64 `json:"total_personnel_millions"`
}

// Summarize aggregates t. An empty table yields a zero Summary.
func Summarize(t *Table) (Summary, error) {
	summary := Summary{Count: t.Len()}
	if t.Len() == 0 {
		return summary, nil
	}

	budgets := make(stats.Float64Data, 0, t.Len())
	powerIndex := make(stats.Float64Data, 0, t.Len())
	personnel := make(stats.Float64Data, 0, t.Len())

	top := t.rows[0]
	for _, r := range t.rows {
		if r.Rank < top.Rank {
			top = r
		}
		budgets = append(budgets, r.BudgetBillions)
		powerIndex = append(powerIndex, r.PowerIndex)
		personnel = append(personnel, float64(r.TotalPersonnel))
	}
	summary.TopCountry = top.Country

	totalBudget, err := budgets.Sum()
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to sum budgets")
	}
	avgPI, err := powerIndex.Mean()
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to average PowerIndex")
	}
	totalPersonnel, err := personnel.Sum()
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to sum personnel")
	}

	summary.TotalBudgetBillions = totalBudget
	summary.AvgPowerIndex = avgPI
	summary.TotalPersonnelMillions = totalPersonnel / 1e6
	return summary, nil
}
