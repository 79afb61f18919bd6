// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for
// the linkedin-token strategy.
//
// It exposes metric instruments for authentication attempts, provider API
// calls, and rate-limit rejections, plus tracing helpers for the profile
// exchange. When disabled (the default when no Instrumentation is configured
// on the strategy) no-op providers are used and the hot path carries zero
// observability overhead.
//
// # Quick start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-auth-service",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	strategy, err := linkedintoken.New(&linkedintoken.Config{
//		ClientID:        clientID,
//		ClientSecret:    clientSecret,
//		Instrumentation: inst,
//	}, verify)
//
// Callers that run their own OpenTelemetry pipeline can supply their
// MeterProvider and TracerProvider through Config; otherwise no-op providers
// are installed.
package instrumentation
