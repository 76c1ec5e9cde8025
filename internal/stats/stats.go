// Package stats reduces a daily mean-temperature series to aggregate
// scalars and a derived Fahrenheit sequence.
package stats

import (
	"github.com/kjstillabower/openmeteo-stats/internal/models"
)

// hotDayThresholdC is the strict lower bound for a day to count as hot.
// A mean of exactly 20.0 does not count.
const hotDayThresholdC = 20.0

// Summarize computes a Summary over meanC. Defined only for non-empty input;
// callers must check emptiness first and short-circuit with a "no data"
// outcome. Summation is plain floating point, not compensated.
func Summarize(meanC []float64) models.Summary {
	highest := meanC[0]
	lowest := meanC[0]
	sum := 0.0
	daysAbove := 0
	fahrenheit := make([]float64, len(meanC))

	for i, v := range meanC {
		if v > highest {
			highest = v
		}
		if v < lowest {
			lowest = v
		}
		sum += v
		if v > hotDayThresholdC {
			daysAbove++
		}
		fahrenheit[i] = CelsiusToFahrenheit(v)
	}

	return models.Summary{
		HighestC:     highest,
		LowestC:      lowest,
		AverageC:     sum / float64(len(meanC)),
		Fahrenheit:   fahrenheit,
		DaysAbove20C: daysAbove,
		Count:        len(meanC),
	}
}

// CelsiusToFahrenheit applies the affine map F = C*9/5 + 32.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
