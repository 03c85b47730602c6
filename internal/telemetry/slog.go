package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI implements API on the default slog logger.
type SlogAPI struct{}

// attrs turns report params into slog attributes. The first error is logged
// under "err", everything else positionally as "params.N".
func attrs(head []any, params []any) []any {
	out := head
	hasErr := false
	for i, p := range params {
		if err, ok := p.(error); ok && !hasErr {
			out = append(out, slog.String("err", err.Error()))
			hasErr = true
			continue
		}
		out = append(out, slog.Any(fmt.Sprintf("params.%d", i), p))
	}
	return out
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken", attrs([]any{slog.String("id", id)}, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", attrs([]any{slog.String("id", id)}, params)...)
}

func (SlogAPI) ReportDebug(msg string, params ...any) {
	slog.Debug(msg, attrs(nil, params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
}
