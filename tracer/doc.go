// Package tracer provides distributed tracing for the relvec client using
// OpenTelemetry.
//
// The statement layer creates one span per executed statement, carrying the
// operation name and target collection as attributes; embedding providers
// create spans around remote inference calls. Trace export is optional: when
// disabled, spans are still created (so a surrounding application's tracer
// picks them up) but nothing is shipped by this package.
package tracer
