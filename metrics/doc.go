// Package metrics exposes Prometheus collectors for the guest dispatcher.
//
//	hostcall_calls_total{call, outcome}   counter
//	hostcall_arena_high_water_bytes       gauge
//	hostcall_staged_bytes                 histogram
//
// Outcomes are ok, host_error, discarded, exhausted, transport_error and
// error. A discarded outcome means the host claimed more bytes than were
// staged and the response was dropped.
package metrics
