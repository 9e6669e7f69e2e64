// Package telemetry exports transition and connection metrics to Prometheus
// and traces transitions with OpenTelemetry.
//
// Both Metrics and Tracing implement transition.Observer; combine them with
// Observers:
//
//	reg := prometheus.NewRegistry()
//	obs := telemetry.Observers{
//	    telemetry.NewMetrics(telemetry.WithRegistry(reg)),
//	    telemetry.NewTracing(),
//	}
//	rt := transition.NewRuntime(transition.Config{Routes: routes, Observer: obs})
//	http.Handle("/metrics", telemetry.Handler(reg))
package telemetry
