package models

// Location is a geographic point in floating-point degrees. Values are not
// range-checked; out-of-range coordinates are passed through to the API,
// which may reject them.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DateRange is an inclusive calendar date range, both ends ISO-8601
// (YYYY-MM-DD) strings.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DailySeries holds parallel per-day sequences as returned by the forecast
// API, date ascending. All four slices have identical length. MeanC is
// derived: MeanC[i] = (MaxC[i] + MinC[i]) / 2, unrounded.
type DailySeries struct {
	Dates []string  `json:"dates"`
	MaxC  []float64 `json:"maxC"`
	MinC  []float64 `json:"minC"`
	MeanC []float64 `json:"meanC"`
}

// Empty reports whether the series contains no data points.
func (s DailySeries) Empty() bool {
	return len(s.MeanC) == 0
}

// Summary is a read-only aggregate snapshot over a mean-temperature series,
// computed once per invocation.
type Summary struct {
	HighestC     float64   `json:"highestC"`
	LowestC      float64   `json:"lowestC"`
	AverageC     float64   `json:"averageC"`
	Fahrenheit   []float64 `json:"fahrenheit"` // index-aligned with the mean series
	DaysAbove20C int       `json:"daysAbove20C"`
	Count        int       `json:"count"`
}
