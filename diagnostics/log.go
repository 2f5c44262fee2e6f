package diagnostics

import "golang.org/x/exp/slog"

// DebugLogTags writes one structured log line per currently tagged
// allocation in t.
func (t *Tracker) DebugLogTags(logger *slog.Logger) {
	t.Each(func(key Key, userData any) bool {
		logger.Debug("tagged allocation",
			slog.Uint64("start", key.Start),
			slog.Int("order", int(key.Order)),
			slog.Any("userData", userData),
		)
		return true
	})
}
