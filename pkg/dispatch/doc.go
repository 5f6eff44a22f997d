// Package dispatch owns the per-channel retry state the evaluation
// engine deliberately does not hold.
//
// The engine is pure: a $retry directive only sets RetryMs on the
// result. The Dispatcher turns that into a cancellable wall-clock timer
// per channel. A new triggering event for a channel synchronously
// cancels any pending retry before evaluation begins, so two competing
// decisions for the same channel cannot exist.
//
// The engine supports unbounded retry chains; the dispatcher is the
// component that bounds them, by leg count and by total elapsed time.
package dispatch
