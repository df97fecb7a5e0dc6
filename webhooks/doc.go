// Package webhooks receives Planka's outbound webhooks, authenticates
// them, and hands them to the asynchronous processor that classifies
// events and publishes invalidation envelopes onto the broadcast channel.
//
// The ingestion path is deliberately thin: one HMAC computation, one
// enqueue, then an immediate acknowledgement. Classification, registry
// lookups, and dispatch all happen after the sender has been answered.
package webhooks
