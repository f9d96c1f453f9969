// Package metrics provides Prometheus instrumentation for sync runs.
//
// All collectors are registered on an instance registry passed by the caller,
// never on the global default registry, so a registry can be discarded together
// with the process component that owns it.
package metrics
