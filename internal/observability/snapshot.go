package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// LogSnapshot gathers the metrics registry and logs counter values at debug
// level. A single-shot CLI has nothing to scrape, so this is the exit-time
// equivalent of a /metrics exposition. Call once before the logger is synced.
func LogSnapshot(logger *zap.Logger) error {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fields = append(fields,
					zap.Uint64("count", h.GetSampleCount()),
					zap.Float64("sum", h.GetSampleSum()),
				)
			default:
				continue
			}
			logger.Debug("metric", fields...)
		}
	}
	return nil
}
