package ownership

import (
	"sort"
)

// YearStep is the spacing of the reduced year domain offered by the slider.
const YearStep = 5

// EligibleYears returns the years the year selector offers: every year in
// the dataset that is a multiple of YearStep, plus the first and last year.
// The result is ascending and empty for an empty dataset.
func EligibleYears(ds Dataset) []int {
	years := distinctYears(ds)
	if len(years) == 0 {
		return []int{}
	}

	first, last := years[0], years[len(years)-1]
	eligible := make([]int, 0, len(years))
	for _, y := range years {
		if y == first || y == last || y%YearStep == 0 {
			eligible = append(eligible, y)
		}
	}
	return eligible
}

// FilterByYear returns a copy of the rows observed in year, in dataset
// order. An absent year yields an empty, non-nil dataset.
func FilterByYear(ds Dataset, year int) Dataset {
	out := make(Dataset, 0)
	for _, row := range ds {
		if row.Year == year {
			out = append(out, row)
		}
	}
	return out
}

// ContainsYear reports whether years holds y.
func ContainsYear(years []int, y int) bool {
	i := sort.SearchInts(years, y)
	return i < len(years) && years[i] == y
}

func distinctYears(ds Dataset) []int {
	seen := make(map[int]struct{}, 64)
	years := make([]int, 0, 64)
	for _, row := range ds {
		if _, ok := seen[row.Year]; ok {
			continue
		}
		seen[row.Year] = struct{}{}
		years = append(years, row.Year)
	}
	sort.Ints(years)
	return years
}
