package algo

import (
	"cmp"
	"slices"
)

// RankAscending returns the positions of values ordered from smallest to largest.
// Equal values keep their input order.
func RankAscending(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(values[a], values[b])
	})
	return order
}
