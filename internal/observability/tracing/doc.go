// Package tracing provides OpenTelemetry tracing integration.
//
// The package owns the service tracer, the SDK provider installed at startup and
// the HTTP middleware that opens a server span per request. Query tier runs open
// child spans through GetTracer so a degraded read is visible in the trace.
//
// Example usage:
//
//	import "portal-content/internal/observability/tracing"
//
//	func main() {
//	    tp := tracing.NewProvider(version)
//	    defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
//	}
//
//	func processRequest(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "process-request")
//	    defer span.End()
//	    // ... process request ...
//	}
package tracing
