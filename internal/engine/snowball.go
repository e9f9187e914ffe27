package engine

import (
	"sort"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// SnowballOrder returns the payoff order under the snowball method: debts
// with nothing left to pay are dropped, the rest are sorted ascending by
// remaining balance. The sort is stable, so debts with equal remainders keep
// their original relative order. The input slice is not modified.
func SnowballOrder(debts []domain.Debt) []domain.Debt {
	ordered := make([]domain.Debt, 0, len(debts))
	for _, d := range debts {
		if d.Remaining() > 0 {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Remaining() < ordered[j].Remaining()
	})
	return ordered
}
