package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kjstillabower/openmeteo-stats/internal/models"
)

// writeReport renders the human-readable report to stdout. Series values are
// rounded to two decimals for display only; the highest/lowest/average
// scalars are printed unrounded.
func (a *App) writeReport(series models.DailySeries, summary models.Summary) {
	fmt.Fprintf(a.Stdout, "Dates: %s to %s -- %d days\n",
		series.Dates[0], series.Dates[len(series.Dates)-1], summary.Count)
	fmt.Fprintf(a.Stdout, "Daily max (C): %s\n", formatSeries(series.MaxC))
	fmt.Fprintf(a.Stdout, "Daily min (C): %s\n", formatSeries(series.MinC))
	fmt.Fprintf(a.Stdout, "Highest Temperature (C): %s\n", formatScalar(summary.HighestC))
	fmt.Fprintf(a.Stdout, "Lowest Temperature (C): %s\n", formatScalar(summary.LowestC))
	fmt.Fprintf(a.Stdout, "Average Temperature (C): %s\n", formatScalar(summary.AverageC))
	fmt.Fprintf(a.Stdout, "Temperatures in Fahrenheit: %s\n", formatSeries(summary.Fahrenheit))
	fmt.Fprintf(a.Stdout, "Number of days with Temperature above 20C: %d\n", summary.DaysAbove20C)
}

// formatSeries renders values to two decimal places in a bracketed list.
func formatSeries(values []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// formatScalar renders an unrounded value in its shortest exact form.
func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
