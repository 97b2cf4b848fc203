package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "tracker-api/api"
	requestEventName = "http.request"
)

// Observe wraps every routed request in a span and emits one structured log
// entry with its outcome.
func Observe(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			route := c.Path()

			ctx, span := otel.Tracer(tracerName).Start(req.Context(), req.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			elapsed := durationToMillis(time.Since(start))

			span.SetAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
				attribute.Float64("tracker.request.total_ms", elapsed),
			)
			if err != nil {
				span.RecordError(err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.End()

			if logger != nil {
				fields := log.Fields{
					"method":   req.Method,
					"route":    route,
					"status":   status,
					"total_ms": elapsed,
				}
				if sc := span.SpanContext(); sc.HasTraceID() {
					fields["trace_id"] = sc.TraceID().String()
				}
				if err != nil {
					fields["error"] = err.Error()
				}
				logger.WithFields(fields).Log(severityForStatus(status), requestEventName)
			}
			return nil
		}
	}
}

func severityForStatus(status int) log.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return log.ErrorLevel
	case status >= http.StatusBadRequest:
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
