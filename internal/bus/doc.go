// Package bus provides the synchronous publish/subscribe dispatcher that
// wires the kiln control loop together.
//
// Every component of the firing pipeline (sensors, controllers, heaters,
// zones, segments, the isolator, telemetry and the display) communicates
// exclusively through the bus. There is no queue and no worker pool: Publish
// is an in-process call graph that invokes every registered handler
// synchronously, in registration order, on the calling goroutine.
//
// # Dispatch Semantics
//
// Dispatch is depth-first and re-entrant. A handler may itself publish, and
// that nested publish completes fully before control returns to the outer
// dispatch. Several handlers rely on this same-tick causality (for example
// a segment publishing a new setpoint before controllers recompute), so the
// depth-first contract is deliberate and must not be replaced with
// asynchronous delivery.
//
// A handler error aborts the remainder of the dispatch and is returned to
// the publisher. There is no per-handler isolation: a failing handler fails
// the whole tick, and the tick loop decides what to do with it.
//
// Unsubscribing while a dispatch is in flight takes effect for later
// publishes only; the in-flight dispatch iterates a snapshot of the
// registration list taken when Publish was called.
//
// # Event Taxonomy
//
// Events are strongly typed payload structs (events.go). Whether an event is
// global or addressed to a single zone is part of the payload's shape:
// per-zone events carry a Zone field compared by identity, global events
// carry none. This replaces runtime selector assertions with a structural
// contract.
//
// # Thread Safety
//
// Subscribe, Unsubscribe and Publish are safe for concurrent use. Handler
// state is not protected by the bus: the design relies on the single
// periodic tick goroutine being the only publisher during a firing.
package bus
