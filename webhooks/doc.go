// Package webhooks verifies and dispatches inbound verification events.
//
// Signatures are computed over the raw request bytes, so the handler reads the
// body once, verifies it, and only then decodes it.
package webhooks
