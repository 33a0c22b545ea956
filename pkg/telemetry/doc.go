// Package telemetry provides the event stream and metrics for installer runs.
//
// Events are fanned out asynchronously through a Publisher; subscribers see
// every run.* and step.* event in order. Metrics are Prometheus collectors
// bound to a private registry, so counts and step durations can be gathered
// for the run summary without exposing an HTTP endpoint.
//
//	events := telemetry.NewPublisher(64)
//	defer events.Close()
//	events.Subscribe(func(ev telemetry.Event) {
//	    log.Debug().Str("type", ev.Type).Msg(ev.Message)
//	})
//
//	metrics := telemetry.NewMetrics()
//	metrics.ObserveStep("acquire", "completed", elapsed)
package telemetry
