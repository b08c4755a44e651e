// Package telemetry provides Prometheus metrics for the routing solver and
// OpenTelemetry tracing setup for drivers.
package telemetry
